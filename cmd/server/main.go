package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sevasetu/assistant/internal/api"
	"github.com/sevasetu/assistant/internal/client"
	"github.com/sevasetu/assistant/internal/config"
	"github.com/sevasetu/assistant/internal/store"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	remote, err := client.New(config.ServiceProvider(), config.ServiceBaseURL(), config.ServiceTimeout())
	if err != nil {
		logger.Fatal("failed to initialize scheme service client", zap.Error(err))
	}
	logger.Info("scheme service client initialized",
		zap.String("provider", config.ServiceProvider()),
		zap.String("base_url", config.ServiceBaseURL()))

	sessions := store.NewSessionStore(config.SessionTTL())

	app := api.NewApp(sessions, remote, logger)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
