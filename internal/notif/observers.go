package notif

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"gorm.io/datatypes"

	"campusnet/internal/common"
	"campusnet/internal/config"
	"campusnet/internal/dbmysql"
)

// DatabaseNotificationObserver stores every event as a notification row.
type DatabaseNotificationObserver struct {
	repo dbmysql.NotificationRepository
}

func NewDatabaseNotificationObserver(repo dbmysql.NotificationRepository) *DatabaseNotificationObserver {
	return &DatabaseNotificationObserver{repo: repo}
}

func (d *DatabaseNotificationObserver) Name() string {
	return "database_observer"
}

func (d *DatabaseNotificationObserver) Update(ctx context.Context, event common.NotificationEvent) error {
	notification := &dbmysql.Notification{
		UserID:    event.UserID,
		ActorID:   event.ActorID,
		Type:      string(event.Type),
		Content:   event.Content,
		Metadata:  datatypes.JSONMap(event.Metadata),
		CreatedAt: event.CreatedAt,
	}
	if err := d.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// KafkaNotificationObserver publishes events as JSON keyed by recipient, so
// one user's notifications stay ordered within a partition.
type KafkaNotificationObserver struct {
	writer MessageWriter
}

func NewKafkaNotificationObserver(writer MessageWriter) *KafkaNotificationObserver {
	return &KafkaNotificationObserver{writer: writer}
}

func (k *KafkaNotificationObserver) Name() string {
	return "kafka_observer"
}

func (k *KafkaNotificationObserver) Update(ctx context.Context, event common.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

func (k *KafkaNotificationObserver) Close() error {
	return k.writer.Close()
}
