// Package follow manages the follower graph between users.
package follow

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campusnet/internal/common"
	"campusnet/internal/dbmysql"
	"campusnet/internal/logging"
	"campusnet/internal/querycache"
)

type Counts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

type Service struct {
	repo     FollowRepository
	cache    *querycache.Cache
	identity common.Identity
	notifier common.Notifier
	log      *zap.Logger
}

func NewService(repo FollowRepository, cache *querycache.Cache, identity common.Identity, notifier common.Notifier, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		identity: identity,
		notifier: notifier,
		log:      logging.OrNop(log),
	}
}

func (s *Service) target(ctx context.Context, op, targetID string) (string, error) {
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return "", err
	}
	if targetID == "" {
		return "", common.Errorf(common.KindValidationFailed, op, "target user is required")
	}
	if targetID == viewer {
		return "", common.Errorf(common.KindValidationFailed, op, "cannot follow yourself")
	}
	return viewer, nil
}

// Follow is idempotent; following someone twice is not an error and only the
// first call notifies.
func (s *Service) Follow(ctx context.Context, targetID string) error {
	const op = "follow.follow"
	viewer, err := s.target(ctx, op, targetID)
	if err != nil {
		return err
	}
	exists, err := s.repo.Exists(ctx, viewer, targetID)
	if err != nil {
		return common.StoreError(op, err)
	}
	if exists {
		return nil
	}
	if err := s.repo.Create(ctx, &dbmysql.Follow{FollowerID: viewer, FollowingID: targetID}); err != nil {
		return common.StoreError(op, err)
	}
	s.cache.Invalidate(querycache.FollowKey(viewer, targetID))

	if s.notifier != nil {
		if err := s.notifier.SendFollowNotification(ctx, viewer, targetID); err != nil {
			s.log.Warn("follow notification failed", zap.String("following_id", targetID), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) Unfollow(ctx context.Context, targetID string) error {
	const op = "follow.unfollow"
	viewer, err := s.target(ctx, op, targetID)
	if err != nil {
		return err
	}
	f, err := s.repo.Get(ctx, viewer, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return common.StoreError(op, err)
	}
	if err := s.repo.Delete(ctx, f); err != nil {
		return common.StoreError(op, err)
	}
	s.cache.Invalidate(querycache.FollowKey(viewer, targetID))
	return nil
}

// IsFollowing reports whether the viewer follows targetID. Anonymous viewers
// follow nobody.
func (s *Service) IsFollowing(ctx context.Context, targetID string) (bool, error) {
	viewer, ok := s.identity.CurrentViewer(ctx)
	if !ok || viewer == targetID {
		return false, nil
	}
	return s.follows(ctx, viewer, targetID)
}

func (s *Service) follows(ctx context.Context, followerID, followingID string) (bool, error) {
	return querycache.Fetch(ctx, s.cache, querycache.FollowKey(followerID, followingID), func(ctx context.Context) (bool, error) {
		ok, err := s.repo.Exists(ctx, followerID, followingID)
		if err != nil {
			return false, common.StoreError("follow.is_following", err)
		}
		return ok, nil
	})
}

// IsMutual reports whether a and b follow each other.
func (s *Service) IsMutual(ctx context.Context, a, b string) (bool, error) {
	if a == "" || b == "" || a == b {
		return false, nil
	}
	ab, err := s.follows(ctx, a, b)
	if err != nil || !ab {
		return false, err
	}
	return s.follows(ctx, b, a)
}

func (s *Service) Counts(ctx context.Context, userID string) (Counts, error) {
	const op = "follow.counts"
	followers, err := s.repo.CountFollowers(ctx, userID)
	if err != nil {
		return Counts{}, common.StoreError(op, err)
	}
	following, err := s.repo.CountFollowing(ctx, userID)
	if err != nil {
		return Counts{}, common.StoreError(op, err)
	}
	return Counts{Followers: followers, Following: following}, nil
}

func (s *Service) Followers(ctx context.Context, userID string) ([]*dbmysql.User, error) {
	users, err := s.repo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, common.StoreError("follow.followers", err)
	}
	return users, nil
}

func (s *Service) Following(ctx context.Context, userID string) ([]*dbmysql.User, error) {
	users, err := s.repo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, common.StoreError("follow.following", err)
	}
	return users, nil
}
