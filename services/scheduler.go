package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const activationRunTimeout = 20 * time.Second

// StartActivationScheduler runs ActivateDue right away and then every interval.
// The caller owns the returned scheduler and must Shutdown it.
func (s *TournamentService) StartActivationScheduler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), activationRunTimeout)
			defer cancel()

			n, err := s.ActivateDue(ctx)
			if err != nil {
				s.logger.Error("scheduler: activation run failed", slog.Any("error", err))
				return
			}
			if n > 0 {
				s.logger.Info("scheduler: tournaments activated", slog.Int("count", n))
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("register activation job: %w", err)
	}

	sched.Start()
	s.logger.Info("tournament activation scheduler started", slog.Duration("interval", interval))
	return sched, nil
}
