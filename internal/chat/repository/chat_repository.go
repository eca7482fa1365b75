package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"campusnet/internal/dbmysql"
)

//go:generate mockgen -destination=mocks/mock_chat_repository.go -package=mocks campusnet/internal/chat/repository DirectMessageRepository,GroupMessageRepository

type DirectMessageRepository interface {
	Create(ctx context.Context, msg *dbmysql.Message) error
	ByID(ctx context.Context, id string) (*dbmysql.Message, error)
	Delete(ctx context.Context, msg *dbmysql.Message) error
	// Between returns the thread for the unordered pair {a, b}, oldest first.
	Between(ctx context.Context, a, b string) ([]*dbmysql.Message, error)
	// Involving returns every message the user sent or received, newest
	// first, with both profiles loaded.
	Involving(ctx context.Context, userID string) ([]*dbmysql.Message, error)
}

type GroupMessageRepository interface {
	Create(ctx context.Context, msg *dbmysql.GroupMessage) error
	ByID(ctx context.Context, id string) (*dbmysql.GroupMessage, error)
	Delete(ctx context.Context, msg *dbmysql.GroupMessage) error
	ByGroup(ctx context.Context, groupID string) ([]*dbmysql.GroupMessage, error)
}

type directRepo struct {
	db *gorm.DB
}

func NewDirectMessageRepository(db *gorm.DB) DirectMessageRepository {
	return &directRepo{db: db}
}

func (r *directRepo) Create(ctx context.Context, msg *dbmysql.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (r *directRepo) ByID(ctx context.Context, id string) (*dbmysql.Message, error) {
	var msg dbmysql.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return &msg, nil
}

// Delete removes the loaded row so change events carry its columns.
func (r *directRepo) Delete(ctx context.Context, msg *dbmysql.Message) error {
	if err := r.db.WithContext(ctx).Delete(msg).Error; err != nil {
		return fmt.Errorf("failed to delete message %s: %w", msg.ID, err)
	}
	return nil
}

func (r *directRepo) Between(ctx context.Context, a, b string) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return messages, nil
}

func (r *directRepo) Involving(ctx context.Context, userID string) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, nil
}

type groupRepo struct {
	db *gorm.DB
}

func NewGroupMessageRepository(db *gorm.DB) GroupMessageRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) Create(ctx context.Context, msg *dbmysql.GroupMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to save group message: %w", err)
	}
	return nil
}

func (r *groupRepo) ByID(ctx context.Context, id string) (*dbmysql.GroupMessage, error) {
	var msg dbmysql.GroupMessage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to get group message %s: %w", id, err)
	}
	return &msg, nil
}

func (r *groupRepo) Delete(ctx context.Context, msg *dbmysql.GroupMessage) error {
	if err := r.db.WithContext(ctx).Delete(msg).Error; err != nil {
		return fmt.Errorf("failed to delete group message %s: %w", msg.ID, err)
	}
	return nil
}

func (r *groupRepo) ByGroup(ctx context.Context, groupID string) ([]*dbmysql.GroupMessage, error) {
	var messages []*dbmysql.GroupMessage
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group messages: %w", err)
	}
	return messages, nil
}
