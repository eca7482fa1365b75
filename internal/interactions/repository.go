package interactions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"campusnet/internal/dbmysql"
)

//go:generate mockgen -destination=mock_repository.go -package=interactions campusnet/internal/interactions Repository

type Repository interface {
	Count(ctx context.Context, table Table, target Target, entityID string) (int64, error)
	HasActed(ctx context.Context, table Table, target Target, entityID, userID string) (bool, error)
	Add(ctx context.Context, table Table, target Target, entityID, userID string) error
	Remove(ctx context.Context, table Table, target Target, entityID, userID string) error
	AuthorOf(ctx context.Context, target Target, entityID string) (string, error)

	CountComments(ctx context.Context, target Target, entityID string) (int64, error)
	AddComment(ctx context.Context, comment *dbmysql.Comment) error
	ListComments(ctx context.Context, target Target, entityID string) ([]*dbmysql.Comment, error)
}

type rowBuilder func(userID string, postID, projectID *string) interface{}

var rowBuilders = map[string]rowBuilder{
	"likes": func(userID string, postID, projectID *string) interface{} {
		return &dbmysql.Like{UserID: userID, PostID: postID, ProjectID: projectID}
	},
	"bookmarks": func(userID string, postID, projectID *string) interface{} {
		return &dbmysql.Bookmark{UserID: userID, PostID: postID, ProjectID: projectID}
	},
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) row(table Table, target Target, entityID, userID string) (interface{}, error) {
	build, ok := rowBuilders[table.Name]
	if !ok {
		return nil, fmt.Errorf("no model for table %s", table.Name)
	}
	var postID, projectID *string
	switch target.Kind {
	case KindPost:
		postID = &entityID
	case KindProject:
		projectID = &entityID
	}
	return build(userID, postID, projectID), nil
}

func (r *repository) Count(ctx context.Context, table Table, target Target, entityID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table(table.Name).
		Where(target.Column+" = ?", entityID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table.Name, err)
	}
	return n, nil
}

func (r *repository) HasActed(ctx context.Context, table Table, target Target, entityID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table(table.Name).
		Where(target.Column+" = ? AND user_id = ?", entityID, userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", table.Name, err)
	}
	return n > 0, nil
}

func (r *repository) Add(ctx context.Context, table Table, target Target, entityID, userID string) error {
	row, err := r.row(table, target, entityID, userID)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to add to %s: %w", table.Name, err)
	}
	return nil
}

// Remove loads the row before deleting it so the change event carries the
// entity column.
func (r *repository) Remove(ctx context.Context, table Table, target Target, entityID, userID string) error {
	row, err := r.row(table, Target{}, "", "")
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).
		Where(target.Column+" = ? AND user_id = ?", entityID, userID).
		First(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find %s row: %w", table.Name, err)
	}
	if err := r.db.WithContext(ctx).Delete(row).Error; err != nil {
		return fmt.Errorf("failed to remove from %s: %w", table.Name, err)
	}
	return nil
}

func (r *repository) AuthorOf(ctx context.Context, target Target, entityID string) (string, error) {
	var authors []string
	err := r.db.WithContext(ctx).
		Table(target.Entities).
		Where("id = ?", entityID).
		Limit(1).
		Pluck("user_id", &authors).Error
	if err != nil {
		return "", fmt.Errorf("failed to load author of %s %s: %w", target.Kind, entityID, err)
	}
	if len(authors) == 0 {
		return "", fmt.Errorf("%s %s: %w", target.Kind, entityID, gorm.ErrRecordNotFound)
	}
	return authors[0], nil
}

func (r *repository) CountComments(ctx context.Context, target Target, entityID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Comment{}).
		Where(target.Column+" = ?", entityID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return n, nil
}

func (r *repository) AddComment(ctx context.Context, comment *dbmysql.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

func (r *repository) ListComments(ctx context.Context, target Target, entityID string) ([]*dbmysql.Comment, error) {
	var comments []*dbmysql.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where(target.Column+" = ?", entityID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
