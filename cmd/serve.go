package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/blackjack-arena/config"
	"github.com/Dosada05/blackjack-arena/handlers"
	"github.com/Dosada05/blackjack-arena/live"
	"github.com/Dosada05/blackjack-arena/middleware"
	"github.com/Dosada05/blackjack-arena/routes"
	"github.com/Dosada05/blackjack-arena/services"
	"github.com/Dosada05/blackjack-arena/storage"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		if err := cfg.RequireJWT(); err != nil {
			return err
		}
		return serve(cfg, logger)
	},
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage", cfg.StorageDriver))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStore(ctx, cfg, logger, true)
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		return err
	}
	defer closeStore(store, logger)

	// Архив итоговых таблиц в Cloudflare R2 (необязательно)
	var archiver services.StandingsArchiver
	r2cfg := storage.CloudflareR2Config{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicBaseURL:   cfg.R2.PublicBaseURL,
		Endpoint:        cfg.R2.Endpoint,
	}
	if r2cfg.Enabled() {
		objects, err := storage.NewCloudflareR2Store(ctx, r2cfg)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			return err
		}
		archiver = services.NewBucketArchiver(objects)
		logger.Info("standings archive enabled", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Info("standings archive disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run(ctx)
	logger.Info("WebSocket Hub started")

	svcOpts := services.TournamentServiceOptions{
		Retry: services.RetryOptions{MaxAttempts: cfg.SubmitMaxAttempts},
	}
	tournamentService := services.NewTournamentService(store, hub, archiver, svcOpts, logger)
	sessionService := services.NewSessionService(store, svcOpts, logger)
	statsService := services.NewStatsService(store, services.StatsServiceOptions{LeaderboardLimit: cfg.LeaderboardLimit}, logger)
	playerService := services.NewPlayerService(store)

	scheduler, err := tournamentService.StartActivationScheduler(cfg.ActivationInterval)
	if err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		return err
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("scheduler shutdown failed", slog.Any("error", err))
		}
	}()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Deps{
		Tournaments:    handlers.NewTournamentHandler(tournamentService),
		Stats:          handlers.NewStatsHandler(statsService),
		Sessions:       handlers.NewSessionHandler(sessionService),
		WebSocket:      handlers.NewWebSocketHandler(hub, tournamentService, cfg.CORSAllowedOrigins),
		Authenticate:   middleware.Authenticate([]byte(cfg.JWTSecretKey), playerService, logger),
		RateLimit:      limiter.Middleware,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			return err
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	return nil
}
