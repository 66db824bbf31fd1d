package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		store, err := openStore(context.Background(), cfg, logger, true)
		if err != nil {
			logger.Error("migration failed", slog.Any("error", err))
			return err
		}
		closeStore(store, logger)
		return nil
	},
}
