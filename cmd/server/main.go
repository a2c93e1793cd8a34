package main

import (
	"chiller-selector/internal/config"
	"chiller-selector/internal/database"
	"chiller-selector/internal/logger"
	"chiller-selector/internal/routes"
	"chiller-selector/internal/services"
	"context"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg, "chiller-server")
	defer logr.Sync()

	db, err := database.New(cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := services.NewChillerStore(db).Migrate(migrateCtx); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}
	cancelMigrate()

	history := newHistoryStore(cfg, logr)

	r := routes.NewRouter(db, history, cfg, logr)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started",
			zap.String("port", cfg.Port),
			zap.String("db_driver", cfg.DBDriver),
			zap.Bool("auth_enabled", cfg.AuthEnabled),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Fatal("server forced to shutdown", zap.Error(err))
	}

	if closer, ok := history.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	_ = db.Close()
	logr.Info("server exited gracefully")
}

// newHistoryStore shares search history through Redis when REDIS_URL is set
// and keeps it in process otherwise.
func newHistoryStore(cfg *config.Config, logr *logger.Logger) services.HistoryStore {
	if cfg.RedisURL == "" {
		return services.NewMemoryHistoryStore()
	}
	store, err := services.NewRedisHistoryStore(cfg.RedisURL)
	if err != nil {
		logr.Warn("redis unavailable, keeping search history in memory", zap.Error(err))
		return services.NewMemoryHistoryStore()
	}
	return store
}
