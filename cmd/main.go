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

	"github.com/foosleague/ladder-system/config"
	"github.com/foosleague/ladder-system/db"
	"github.com/foosleague/ladder-system/fixtures"
	"github.com/foosleague/ladder-system/handlers"
	"github.com/foosleague/ladder-system/repositories"
	"github.com/foosleague/ladder-system/routes"
	"github.com/foosleague/ladder-system/services"
	"github.com/foosleague/ladder-system/storage"
)

const (
	statsRebuildInterval = 30 * time.Second
	statsRebuildBatch    = 20
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.AvatarStorageConfigured() {
		uploader, err = storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("avatar storage not configured, uploads disabled")
	}

	wsHub := fixtures.NewHub()
	go wsHub.Run()

	txRunner := repositories.NewTxRunner(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	statsCacheRepo := repositories.NewPostgresStatsCacheRepository(dbConn)

	authService := services.NewAuthService(playerRepo)
	statsService := services.NewStatsService(playerRepo, matchRepo, tournamentRepo, statsCacheRepo, logger)
	playerService := services.NewPlayerService(playerRepo, uploader, logger)
	matchService := services.NewMatchService(
		txRunner, matchRepo, playerRepo, tournamentRepo, statsService, wsHub, logger)
	tournamentService := services.NewTournamentService(
		txRunner, tournamentRepo, matchRepo, playerRepo, statsService, wsHub, logger)
	logger.Info("services initialized")

	// Stale stat caches are rebuilt in the background so profile reads
	// rarely pay the full recompute.
	go func() {
		ticker := time.NewTicker(statsRebuildInterval)
		defer ticker.Stop()
		for range ticker.C {
			rebuilt, err := statsService.RebuildStale(context.Background(), statsRebuildBatch)
			if err != nil {
				logger.Error("stats rebuild pass failed", slog.Any("error", err))
				continue
			}
			if rebuilt > 0 {
				logger.Info("rebuilt stale stat caches", slog.Int("count", rebuilt))
			}
		}
	}()

	router := routes.Setup(routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Player:     handlers.NewPlayerHandler(playerService, statsService),
		Match:      handlers.NewMatchHandler(matchService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService),
	}, cfg.JWTSecretKey)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
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
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
