package share

import (
	"context"

	"gorm.io/gorm"

	"campusnet/internal/dbmysql"
)

// Store looks up shareable entities by id. Missing rows are reported as
// gorm.ErrRecordNotFound.
type Store interface {
	PostByID(ctx context.Context, id string) (*dbmysql.Post, error)
	ProjectByID(ctx context.Context, id string) (*dbmysql.Project, error)
	UserByID(ctx context.Context, id string) (*dbmysql.User, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) PostByID(ctx context.Context, id string) (*dbmysql.Post, error) {
	var post dbmysql.Post
	if err := s.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *gormStore) ProjectByID(ctx context.Context, id string) (*dbmysql.Project, error) {
	var project dbmysql.Project
	if err := s.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *gormStore) UserByID(ctx context.Context, id string) (*dbmysql.User, error) {
	var user dbmysql.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
