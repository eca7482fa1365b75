// Package wire assembles the services' dependency graphs.
package wire

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campusnet/internal/cachesync"
	"campusnet/internal/common"
	"campusnet/internal/config"
	"campusnet/internal/dbmongo"
	"campusnet/internal/dbmysql"
	"campusnet/internal/feed"
	"campusnet/internal/interactions"
	"campusnet/internal/logging"
	"campusnet/internal/notif"
	"campusnet/internal/querycache"
	"campusnet/internal/realtime"
	"campusnet/internal/storage"
	"campusnet/internal/task"
	"campusnet/internal/verify"
)

// Origin tags the change events produced by this process.
type Origin string

func ProvideOrigin() Origin {
	host, _ := os.Hostname()
	return Origin(fmt.Sprintf("%s-%s", host, uuid.NewString()[:8]))
}

func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}

func ProvideHub(cfg *config.Config, log *zap.Logger) (*realtime.Hub, func()) {
	hub := realtime.NewHub(cfg.Realtime.Workers, cfg.Realtime.BufferSize, log)
	return hub, hub.Shutdown
}

// ProvideDatabase opens the store and installs the change-event plugin so
// every write reaches the hub.
func ProvideDatabase(cfg *config.Config, hub *realtime.Hub, origin Origin, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := dbmysql.Open(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Use(realtime.NewGormPlugin(hub, string(origin), log)); err != nil {
		return nil, nil, fmt.Errorf("install realtime plugin: %w", err)
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// ProvideRedisBridge connects the hub to peers when Redis is enabled. It
// returns nil otherwise.
func ProvideRedisBridge(ctx context.Context, cfg *config.Config, hub *realtime.Hub, origin Origin, log *zap.Logger) (*realtime.RedisBridge, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	bridge := realtime.NewRedisBridge(client, cfg.Redis.Channel, string(origin), hub, log)
	if err := bridge.Start(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return bridge, func() {
		_ = bridge.Close()
		_ = client.Close()
	}, nil
}

func ProvideCache() *querycache.Cache {
	return querycache.New()
}

func ProvideIdentity() common.Identity {
	return common.ContextIdentity{}
}

func ProvideTokenManager(cfg *config.Config) *common.TokenManager {
	return common.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.TokenTTL())
}

// ProvideNotificationService always records notifications in the database
// and additionally publishes them to Kafka when enabled.
func ProvideNotificationService(cfg *config.Config, repo dbmysql.NotificationRepository, identity common.Identity, log *zap.Logger) (*notif.NotificationService, func()) {
	var observers []common.Observer
	var kafkaObserver *notif.KafkaNotificationObserver
	if cfg.Kafka.Enabled {
		kafkaObserver = notif.NewKafkaNotificationObserver(notif.NewKafkaWriter(cfg.Kafka))
		observers = append(observers, kafkaObserver)
	}
	svc := notif.NewNotificationService(cfg.Notification, repo, identity, log, observers...)
	return svc, func() {
		svc.Shutdown()
		if kafkaObserver != nil {
			_ = kafkaObserver.Close()
		}
	}
}

func ProvideInteractionsHandler(counters *interactions.Counters, comments *interactions.Comments, log *zap.Logger) *interactions.Handler {
	return interactions.NewHandler(counters.Likes, counters.Bookmarks, comments, log)
}

// ProvideInvalidator keeps the query cache in step with every change the hub
// sees, local or relayed by the Redis bridge.
func ProvideInvalidator(cache *querycache.Cache, hub *realtime.Hub, counters *interactions.Counters, comments *interactions.Comments, log *zap.Logger) (*cachesync.Invalidator, func(), error) {
	inv := cachesync.New(cache, hub, log, counters.Likes, counters.Bookmarks, comments)
	if err := inv.Start(); err != nil {
		return nil, nil, fmt.Errorf("start cache invalidation: %w", err)
	}
	return inv, inv.Close, nil
}

// ProvideObjectStore picks the attachment backend named in the config.
func ProvideObjectStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Store, func(), error) {
	switch cfg.Storage.Backend {
	case "s3":
		store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "gridfs", "":
		client, err := dbmongo.NewMongoConnection(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return dbmongo.NewMediaStorage(client, cfg.Storage.PublicBaseURL), func() {
			_ = client.Close(context.Background())
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func ProvideTracker(log *zap.Logger) (*task.Tracker, func()) {
	t := task.NewTracker(log)
	return t, t.Wait
}

func ProvideAttachments(cfg *config.Config, store storage.ObjectStorage, identity common.Identity, tracker *task.Tracker, log *zap.Logger) *storage.Attachments {
	return storage.NewAttachments(store, identity, cfg.Storage.AttachmentsBucket, tracker, log)
}

func ProvideVerifier(cfg *config.Config, log *zap.Logger) verify.Verifier {
	return verify.NewClient(cfg.Verification, nil, log)
}

func ProvideStorySweeper(cfg *config.Config, stories feed.Stories, log *zap.Logger) (*feed.StorySweeper, error) {
	return feed.NewStorySweeper(stories, cfg.Stories.SweepCron, log)
}
