package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Dosada05/blackjack-arena/repositories"
)

// RetryOptions bounds how often an atomic unit that lost a race is rerun.
type RetryOptions struct {
	// Zero means default.
	MaxAttempts int
	// Must be positive. Zero means default.
	Min time.Duration
	// Must be positive. Zero means default.
	Max time.Duration
	// Must be >= 1.0. Zero means default.
	Jitter float64
}

func (o *RetryOptions) Validate() error {
	if o.MaxAttempts < 0 {
		return fmt.Errorf("negative max attempts")
	}
	if o.Min < 0 {
		return fmt.Errorf("negative min")
	}
	if o.Max < 0 {
		return fmt.Errorf("negative max")
	}
	if o.Jitter < 1.0 && o.Jitter != 0.0 {
		return fmt.Errorf("jitter < 1.0")
	}
	return nil
}

func (o *RetryOptions) FillDefaults() {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 5
	}
	if o.Min == 0 {
		o.Min = 5 * time.Millisecond
	}
	if o.Max == 0 {
		o.Max = 200 * time.Millisecond
	}
	if o.Jitter == 0.0 {
		o.Jitter = 1.5
	}
}

// atomicWithRetry runs fn inside store.Atomic and reruns the whole unit while
// the store reports ErrConcurrencyConflict. When attempts run out the error
// becomes ErrTransient.
func atomicWithRetry(
	ctx context.Context,
	store repositories.Store,
	opts RetryOptions,
	logger *slog.Logger,
	op string,
	fn func(tx repositories.Store) error,
) error {
	opts.FillDefaults()
	wait := opts.Min

	for attempt := 1; ; attempt++ {
		err := store.Atomic(ctx, fn)
		if err == nil || !errors.Is(err, repositories.ErrConcurrencyConflict) {
			return err
		}
		if attempt >= opts.MaxAttempts {
			logger.WarnContext(ctx, "atomic unit kept conflicting, giving up",
				slog.String("op", op), slog.Int("attempts", attempt), slog.Any("error", err))
			return fmt.Errorf("%s: %w", op, ErrTransient)
		}
		logger.DebugContext(ctx, "atomic unit conflicted, retrying",
			slog.String("op", op), slog.Int("attempt", attempt), slog.Any("error", err))

		jitter := 1.0 + rand.Float64()*(opts.Jitter-1.0)
		sleep := min(opts.Max, time.Duration(float64(wait)*jitter))
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}
		wait = min(opts.Max, wait*2)
	}
}
