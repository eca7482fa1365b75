// Package dbmongo keeps media and attachments in MongoDB GridFS.
package dbmongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"campusnet/internal/config"
	"campusnet/internal/logging"
)

type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database

	mu      sync.Mutex
	buckets map[string]*gridfs.Bucket
}

func NewMongoConnection(c *config.Config, log *zap.Logger) (*MongoClient, error) {
	log = logging.OrNop(log)
	clientOptions := options.Client().ApplyURI(c.GetMongoURI())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info("connected to MongoDB", zap.String("database", c.MongoDB.Database))
	return &MongoClient{
		Client:   client,
		Database: client.Database(c.MongoDB.Database),
		buckets:  make(map[string]*gridfs.Bucket),
	}, nil
}

// Bucket returns the GridFS bucket with the given name, creating the handle
// on first use.
func (mc *MongoClient) Bucket(name string) (*gridfs.Bucket, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if b, ok := mc.buckets[name]; ok {
		return b, nil
	}
	b, err := gridfs.NewBucket(mc.Database, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create GridFS bucket %s: %w", name, err)
	}
	mc.buckets[name] = b
	return b, nil
}

func (mc *MongoClient) Close(ctx context.Context) error {
	return mc.Client.Disconnect(ctx)
}
