package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/blackjack-arena/services"
	"github.com/spf13/cobra"
)

var recalculateTournamentID int64

var recalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Recompute ranks of one tournament",
	Long: `Recompute ranks of one tournament

Reassigns ranks to all submitted entries and completes the tournament
if every entry has submitted.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		if recalculateTournamentID <= 0 {
			return errors.New("--tournament must be a positive id")
		}
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx := context.Background()
		store, err := openStore(ctx, cfg, logger, false)
		if err != nil {
			return err
		}
		defer closeStore(store, logger)

		ts := services.NewTournamentService(store, nil, nil, services.TournamentServiceOptions{
			Retry: services.RetryOptions{MaxAttempts: cfg.SubmitMaxAttempts},
		}, logger)

		standings, err := ts.RecalculateRanks(ctx, recalculateTournamentID)
		if err != nil {
			return fmt.Errorf("recalculate tournament %d: %w", recalculateTournamentID, err)
		}
		for _, e := range standings {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d\n", derefInt(e.Rank), e.PlayerID, derefInt(e.FinalBalance))
		}
		logger.Info("ranks recalculated", slog.Int64("tournament_id", recalculateTournamentID), slog.Int("ranked", len(standings)))
		return nil
	},
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func init() {
	recalculateCmd.Flags().Int64VarP(&recalculateTournamentID, "tournament", "t", 0, "tournament id")
}
