// Command api serves the article admin HTTP API.
//
// @title Article Admin API
// @version 1.0
// @description Admin endpoints managing articles and their reference files.
// @BasePath /
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"article-admin-backend/internal/config"
	"article-admin-backend/internal/logging"
	"article-admin-backend/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := server.NewServer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Server failed to initialize: %v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error(context.Background(), "failed to close server resources", "error", err)
		}
	}()

	if err := s.StartBackground(ctx); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}

	srv := s.HTTPServer()
	go func() {
		logger.Info(ctx, "server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
	}
	logger.Info(shutdownCtx, "server exited")
}
