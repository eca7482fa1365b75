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
	"campusnet/internal/metrics"
	"campusnet/internal/wire"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := wire.InitializeAPI(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer cleanup()
	logger := app.Log

	go app.Sweeper.Run(ctx)

	server := &http.Server{
		Addr:           net.JoinHostPort(cfg.Server.Host, cfg.Server.APIPort),
		Handler:        app.Router,
		ReadTimeout:    cfg.ReadTimeout(),
		// no WriteTimeout: event streams stay open
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("api server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	logger.Info("api server stopped")
}
