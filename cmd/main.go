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

	"github.com/go-chi/chi/v5"
	"github.com/leagueforge/league-engine/cache"
	"github.com/leagueforge/league-engine/config"
	"github.com/leagueforge/league-engine/db"
	"github.com/leagueforge/league-engine/handlers"
	"github.com/leagueforge/league-engine/live"
	"github.com/leagueforge/league-engine/repositories"
	api "github.com/leagueforge/league-engine/routes"
	"github.com/leagueforge/league-engine/services"
	"github.com/leagueforge/league-engine/storage"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Архив исходных файлов (Cloudflare R2), опционален
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		r2Uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
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
		uploader = storage.NewRetryingUploader(r2Uploader, cfg.UploadRetries, cfg.UploadRetryBackoff, logger)
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("source-file archive disabled: R2 not configured")
	}

	// WebSocket hub для live-обновлений таблиц
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	// Инициализация репозиториев
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	playerStatsRepo := repositories.NewPostgresPlayerStatsRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	standingsService := services.NewStandingsService(seasonRepo, resultRepo, standingRepo, logger)
	statsService := services.NewStatsService(resultRepo, playerStatsRepo, logger)
	seasonService := services.NewSeasonService(dbConn, seasonRepo, standingsService, logger)
	importService := services.NewImportService(
		dbConn,
		seasonRepo,
		tournamentRepo,
		resultRepo,
		statsService,
		standingsService,
		uploader,
		wsHub,
		logger,
	)
	logger.Info("services initialized")

	standingsCache := cache.NewStandingsCache(standingsService, cfg.StandingsCacheTTL)

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(cfg.AdminLogin, cfg.AdminPasswordHash, cfg.JWTSecretKey)
	seasonHandler := handlers.NewSeasonHandler(seasonService)
	importHandler := handlers.NewImportHandler(importService, standingsCache)
	standingsHandler := handlers.NewStandingsHandler(standingsService, standingsCache)
	statsHandler := handlers.NewStatsHandler(statsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		[]byte(cfg.JWTSecretKey),
		authHandler,
		seasonHandler,
		importHandler,
		standingsHandler,
		statsHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
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
	logger.Info("application exited")
}
