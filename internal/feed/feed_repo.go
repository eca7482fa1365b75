package feed

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"campusnet/internal/dbmysql"
)

type FeedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// --------- POSTS ---------
type Posts interface {
	CreatePost(ctx context.Context, post *dbmysql.Post) error
	PostByID(ctx context.Context, id string) (*dbmysql.Post, error)
	ListPosts(ctx context.Context, filter PostFilter, limit, offset int) ([]*dbmysql.Post, error)
	ListUserPosts(ctx context.Context, userID string) ([]*dbmysql.Post, error)
	DeletePost(ctx context.Context, post *dbmysql.Post) error
}

func (r *FeedRepository) CreatePost(ctx context.Context, post *dbmysql.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *FeedRepository) PostByID(ctx context.Context, id string) (*dbmysql.Post, error) {
	var post dbmysql.Post
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&post).Error; err != nil {
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}
	return &post, nil
}

func (r *FeedRepository) ListPosts(ctx context.Context, filter PostFilter, limit, offset int) ([]*dbmysql.Post, error) {
	var posts []*dbmysql.Post
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Post{}).
		Scopes(filter.scope).
		Preload("User").
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (r *FeedRepository) ListUserPosts(ctx context.Context, userID string) ([]*dbmysql.Post, error) {
	var posts []*dbmysql.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts for %s: %w", userID, err)
	}
	return posts, nil
}

// DeletePost removes the post with its likes, bookmarks and comments.
func (r *FeedRepository) DeletePost(ctx context.Context, post *dbmysql.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&dbmysql.Like{}, &dbmysql.Bookmark{}, &dbmysql.Comment{}} {
			if err := tx.Where("post_id = ?", post.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete post interactions: %w", err)
			}
		}
		if err := tx.Delete(post).Error; err != nil {
			return fmt.Errorf("failed to delete post %s: %w", post.ID, err)
		}
		return nil
	})
}

// --------- PROJECTS ---------
type Projects interface {
	CreateProject(ctx context.Context, project *dbmysql.Project) error
	ProjectByID(ctx context.Context, id string) (*dbmysql.Project, error)
	ListProjects(ctx context.Context, limit, offset int) ([]*dbmysql.Project, error)
	ListUserProjects(ctx context.Context, userID string) ([]*dbmysql.Project, error)
}

func (r *FeedRepository) CreateProject(ctx context.Context, project *dbmysql.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *FeedRepository) ProjectByID(ctx context.Context, id string) (*dbmysql.Project, error) {
	var project dbmysql.Project
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&project).Error; err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}
	return &project, nil
}

func (r *FeedRepository) ListProjects(ctx context.Context, limit, offset int) ([]*dbmysql.Project, error) {
	var projects []*dbmysql.Project
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (r *FeedRepository) ListUserProjects(ctx context.Context, userID string) ([]*dbmysql.Project, error) {
	var projects []*dbmysql.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects for %s: %w", userID, err)
	}
	return projects, nil
}

// --------- STORIES ---------
type Stories interface {
	CreateStory(ctx context.Context, story *dbmysql.Story) error
	ActiveStories(ctx context.Context, now time.Time) ([]*dbmysql.Story, error)
	ExpiredStories(ctx context.Context, now time.Time) ([]*dbmysql.Story, error)
	DeleteStory(ctx context.Context, story *dbmysql.Story) error
}

func (r *FeedRepository) CreateStory(ctx context.Context, story *dbmysql.Story) error {
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

func (r *FeedRepository) ActiveStories(ctx context.Context, now time.Time) ([]*dbmysql.Story, error) {
	var stories []*dbmysql.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("expires_at > ?", now).
		Order("created_at DESC").
		Find(&stories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

func (r *FeedRepository) ExpiredStories(ctx context.Context, now time.Time) ([]*dbmysql.Story, error) {
	var stories []*dbmysql.Story
	err := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Find(&stories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired stories: %w", err)
	}
	return stories, nil
}

func (r *FeedRepository) DeleteStory(ctx context.Context, story *dbmysql.Story) error {
	if err := r.db.WithContext(ctx).Delete(story).Error; err != nil {
		return fmt.Errorf("failed to delete story %s: %w", story.ID, err)
	}
	return nil
}
