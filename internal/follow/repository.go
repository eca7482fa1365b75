package follow

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"campusnet/internal/dbmysql"
)

//go:generate mockgen -destination=mock_repository.go -package=follow campusnet/internal/follow FollowRepository

type FollowRepository interface {
	Create(ctx context.Context, f *dbmysql.Follow) error
	Get(ctx context.Context, followerID, followingID string) (*dbmysql.Follow, error)
	Delete(ctx context.Context, f *dbmysql.Follow) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
	ListFollowers(ctx context.Context, userID string) ([]*dbmysql.User, error)
	ListFollowing(ctx context.Context, userID string) ([]*dbmysql.User, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, f *dbmysql.Follow) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

func (r *followRepository) Get(ctx context.Context, followerID, followingID string) (*dbmysql.Follow, error) {
	var f dbmysql.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&f).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get follow: %w", err)
	}
	return &f, nil
}

func (r *followRepository) Delete(ctx context.Context, f *dbmysql.Follow) error {
	if err := r.db.WithContext(ctx).Delete(f).Error; err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	_, err := r.Get(ctx, followerID, followingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID string) ([]*dbmysql.User, error) {
	return r.listUsers(ctx, "follower_id", "following_id", userID)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID string) ([]*dbmysql.User, error) {
	return r.listUsers(ctx, "following_id", "follower_id", userID)
}

// listUsers resolves the other side of each follow row, newest first.
func (r *followRepository) listUsers(ctx context.Context, pick, match, userID string) ([]*dbmysql.User, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Follow{}).
		Where(match+" = ?", userID).
		Order("created_at DESC").
		Pluck(pick, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	if len(ids) == 0 {
		return []*dbmysql.User{}, nil
	}

	var users []*dbmysql.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	byID := make(map[string]*dbmysql.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]*dbmysql.User, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}
