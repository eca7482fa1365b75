package main

import (
	"context"
	"log"
	"net"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc/reflection"

	"campusnet/internal/config"
	"campusnet/internal/wire"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := wire.InitializeRealtime(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize realtime service: %v", err)
	}
	defer cleanup()
	logger := app.Log
	if app.Bridge == nil {
		logger.Warn("redis disabled; only events written by this process will be streamed")
	}

	reflection.Register(app.Server)

	lis, err := net.Listen("tcp", net.JoinHostPort(cfg.Server.Host, cfg.Server.RealtimePort))
	if err != nil {
		logger.Fatal("failed to listen", zap.String("port", cfg.Server.RealtimePort), zap.Error(err))
	}

	go func() {
		logger.Info("realtime service running", zap.String("addr", lis.Addr().String()))
		if err := app.Server.Serve(lis); err != nil {
			logger.Error("failed to serve", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down realtime service")
	app.Server.GracefulStop()
	logger.Info("realtime service stopped")
}
