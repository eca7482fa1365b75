package wire

import (
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"campusnet/internal/cachesync"
	"campusnet/internal/common"
	"campusnet/internal/config"
	"campusnet/internal/feed"
	"campusnet/internal/media"
	"campusnet/internal/realtime"
)

// APIApplication is everything cmd/api-svc runs.
type APIApplication struct {
	Config  *config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	Router  *mux.Router
	Sweeper *feed.StorySweeper
	Bridge  *realtime.RedisBridge

	// Invalidator is held so its subscriptions live as long as the app.
	Invalidator *cachesync.Invalidator
}

// RealtimeApplication serves the change feed to remote watchers.
type RealtimeApplication struct {
	Config *config.Config
	Log    *zap.Logger
	Server *grpc.Server
	Bridge *realtime.RedisBridge
}

type MediaApplication struct {
	Config *config.Config
	Log    *zap.Logger
	Server *media.HTTPServer
}

func ProvideGRPCServer(svc *realtime.ChangeFeedService, tokens *common.TokenManager, log *zap.Logger) *grpc.Server {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(realtime.LoggingUnaryInterceptor(log), common.AuthInterceptor(tokens)),
		grpc.ChainStreamInterceptor(realtime.LoggingStreamInterceptor(log), common.StreamAuthInterceptor(tokens)),
	)
	realtime.RegisterChangeFeedServer(server, svc)
	return server
}
