package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/Dosada05/blackjack-arena/repositories"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultLeaderboardLimit = 50

type StatsServiceOptions struct {
	// Upper bound and default for GlobalLeaderboard. Zero means DefaultLeaderboardLimit.
	LeaderboardLimit int
}

func (o *StatsServiceOptions) FillDefaults() {
	if o.LeaderboardLimit <= 0 {
		o.LeaderboardLimit = DefaultLeaderboardLimit
	}
}

// StatsService считает статистику игроков и общий рейтинг. Только чтение.
type StatsService struct {
	store  repositories.Store
	o      StatsServiceOptions
	group  singleflight.Group
	logger *slog.Logger
}

func NewStatsService(store repositories.Store, o StatsServiceOptions, logger *slog.Logger) *StatsService {
	o.FillDefaults()
	return &StatsService{store: store, o: o, logger: logger}
}

// winRate is the percentage of won hands rounded to one decimal, 0 without hands.
func winRate(wins, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(total)*1000) / 10
}

// PlayerStats aggregates the player's completed sessions and every recorded hand.
// Unknown players get zeroed stats.
func (s *StatsService) PlayerStats(ctx context.Context, playerID string) (*models.PlayerStats, error) {
	var (
		totals repositories.SessionTotals
		counts repositories.HandCounts
		name   = playerID
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.store.Sessions().CompletedTotals(gCtx, playerID)
		if err != nil {
			return fmt.Errorf("completed session totals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		counts, err = s.store.Sessions().HandCounts(gCtx, playerID)
		if err != nil {
			return fmt.Errorf("hand counts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		p, err := s.store.Players().GetByID(gCtx, playerID)
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("player: %w", err)
		}
		if p.DisplayName != "" {
			name = p.DisplayName
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.PlayerStats{
		PlayerID:       playerID,
		DisplayName:    name,
		TotalHands:     counts.Total,
		Wins:           counts.Wins,
		Losses:         counts.Losses,
		Pushes:         counts.Pushes,
		Blackjacks:     counts.Blackjacks,
		WinRate:        winRate(counts.Wins, counts.Total),
		TotalProfit:    totals.TotalProfit,
		SessionsPlayed: totals.Sessions,
	}, nil
}

// ClampLeaderboardLimit maps a requested limit into 1..LeaderboardLimit.
// Non-positive requests get the maximum.
func (s *StatsService) ClampLeaderboardLimit(limit int) int {
	if limit <= 0 || limit > s.o.LeaderboardLimit {
		return s.o.LeaderboardLimit
	}
	return limit
}

// GlobalLeaderboard ranks players with at least one completed session by
// total profit. Concurrent calls with the same limit share one computation.
func (s *StatsService) GlobalLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardRow, error) {
	limit = s.ClampLeaderboardLimit(limit)

	v, err, shared := s.group.Do("leaderboard:"+strconv.Itoa(limit), func() (any, error) {
		return s.computeLeaderboard(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "global leaderboard shared with concurrent caller", slog.Int("limit", limit))
	}

	rows := v.([]models.LeaderboardRow)
	out := make([]models.LeaderboardRow, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *StatsService) computeLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardRow, error) {
	totals, err := s.store.Sessions().TopCompletedTotals(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top session totals: %w", err)
	}
	if len(totals) == 0 {
		return []models.LeaderboardRow{}, nil
	}

	ids := make([]string, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.PlayerID)
	}

	var (
		counts map[string]repositories.HandCounts
		names  map[string]string
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.store.Sessions().HandCountsByPlayer(gCtx, ids)
		if err != nil {
			return fmt.Errorf("hand counts by player: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		names, err = s.store.Players().DisplayNames(gCtx, ids)
		if err != nil {
			return fmt.Errorf("display names: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]models.LeaderboardRow, 0, len(totals))
	for _, t := range totals {
		c := counts[t.PlayerID]
		rows = append(rows, models.LeaderboardRow{
			PlayerID:       t.PlayerID,
			DisplayName:    displayNameOr(names, t.PlayerID),
			TotalProfit:    t.TotalProfit,
			TotalHands:     t.TotalHands,
			SessionsPlayed: t.Sessions,
			WinRate:        winRate(c.Wins, c.Total),
		})
	}
	return rows, nil
}
