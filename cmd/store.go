package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/blackjack-arena/config"
	"github.com/Dosada05/blackjack-arena/db"
	"github.com/Dosada05/blackjack-arena/repositories"
)

const dbConnectTimeout = 5 * time.Second

// openStore opens the configured storage backend. Postgres schema is applied
// when migrate is set; bolt creates its buckets on open.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (repositories.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverBolt:
		store, err := repositories.NewBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		logger.Info("bolt store opened", slog.String("path", cfg.BoltPath))
		return store, nil

	default:
		conn, err := db.Connect(cfg.DatabaseURL, dbConnectTimeout, db.PoolOptions{}, logger)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := db.Migrate(ctx, conn); err != nil {
				_ = conn.Close()
				return nil, err
			}
			logger.Info("database schema is up to date")
		}
		return repositories.NewPostgresStore(conn), nil
	}
}

func closeStore(store repositories.Store, logger *slog.Logger) {
	if err := store.Close(); err != nil {
		logger.Error("failed to close store", slog.Any("error", err))
	} else {
		logger.Info("store closed")
	}
}
