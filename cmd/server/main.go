package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/consulthub/scheduler-api/internal/app"
	"github.com/consulthub/scheduler-api/internal/config"
	"github.com/consulthub/scheduler-api/internal/controller/httpapi"
	"github.com/consulthub/scheduler-api/internal/repository"
	"github.com/consulthub/scheduler-api/internal/repository/base"
	"github.com/consulthub/scheduler-api/internal/service"
	"github.com/consulthub/scheduler-api/internal/timeutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	// Репозитории и сервисы
	scheduleRepo := repository.NewScheduleRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	txManager := base.NewTxManager(pool)

	restWindow := timeutil.RestWindow{Start: cfg.RestStart, End: cfg.RestEnd}
	validator := service.NewScheduleValidator(restWindow)
	scheduleService := service.NewScheduleService(txManager, scheduleRepo, userRepo, validator, logger)

	// Фоновая задача завершения прошедших слотов
	sweeper := app.NewSweeper(scheduleService, time.Hour, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// HTTP
	scheduleHandler := httpapi.NewScheduleHandler(scheduleService, logger)
	healthHandler := httpapi.NewHealthHandler(pool)
	router := httpapi.NewRouter(scheduleHandler, healthHandler, logger)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment))

		if err := router.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}
}
