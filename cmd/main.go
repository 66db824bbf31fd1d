package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Dosada05/blackjack-arena/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Version: "indev",
	Use:     "blackjack-arena",
	Short:   "Blackjack tournament server",
	Long: `Blackjack tournament server

Runs tournaments, accepts results, ranks players and keeps lifetime stats.`,
	SilenceUsage: true,
}

var configPath string

// setup загружает конфигурацию и настраивает логгер по умолчанию.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file (defaults to $CONFIG_FILE)")
	rootCmd.AddCommand(serveCmd, migrateCmd, recalculateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
