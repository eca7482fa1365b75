package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"campusnet/internal/config"
	"campusnet/internal/wire"
)

func main() {
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := wire.InitializeMedia(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize media server: %v", err)
	}
	defer cleanup()
	logger := app.Log

	server := &http.Server{
		Addr:        net.JoinHostPort(cfg.Server.Host, cfg.Server.MediaPort),
		Handler:     app.Server,
		ReadTimeout: cfg.ReadTimeout(),
	}

	go func() {
		logger.Info("media server starting",
			zap.String("addr", server.Addr),
			zap.String("backend", cfg.Storage.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("media server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("media server forced to shutdown", zap.Error(err))
	}
}
