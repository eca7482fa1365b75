package share

import (
	"context"

	"go.uber.org/zap"

	"campusnet/internal/common"
	"campusnet/internal/logging"
	"campusnet/internal/querycache"
)

// Shareable is anything that may carry a shared reference.
type Shareable interface {
	SharedRef() Ref
}

// Resolver loads previews for shared references on demand and caches them
// per entity, so a post shared in many messages is fetched once.
type Resolver struct {
	store Store
	cache *querycache.Cache
	log   *zap.Logger
}

func NewResolver(store Store, cache *querycache.Cache, log *zap.Logger) *Resolver {
	return &Resolver{store: store, cache: cache, log: logging.OrNop(log)}
}

// Resolve returns the preview for s. A deleted entity yields an Unavailable
// preview, not an error; store failures are returned and not cached.
func (r *Resolver) Resolve(ctx context.Context, s Shareable) (Preview, error) {
	return r.ResolveRef(ctx, s.SharedRef())
}

func (r *Resolver) ResolveRef(ctx context.Context, ref Ref) (Preview, error) {
	if ref.IsZero() {
		return Preview{}, nil
	}
	if err := ref.Validate(); err != nil {
		return Preview{}, err
	}

	return querycache.Fetch(ctx, r.cache, querycache.SharedKey(string(ref.Kind), ref.ID), func(ctx context.Context) (Preview, error) {
		p, err := r.load(ctx, ref)
		if common.KindOf(err) == common.KindNotFound {
			r.log.Debug("shared entity unavailable", zap.String("kind", string(ref.Kind)), zap.String("id", ref.ID))
			return Preview{Ref: ref, Unavailable: true}, nil
		}
		return p, err
	})
}

// ResolveAll resolves each distinct reference once.
func (r *Resolver) ResolveAll(ctx context.Context, refs []Ref) (map[Ref]Preview, error) {
	out := make(map[Ref]Preview, len(refs))
	for _, ref := range refs {
		if ref.IsZero() {
			continue
		}
		if _, done := out[ref]; done {
			continue
		}
		p, err := r.ResolveRef(ctx, ref)
		if err != nil {
			return nil, err
		}
		out[ref] = p
	}
	return out, nil
}

// Forget drops the cached preview, e.g. after the entity changed.
func (r *Resolver) Forget(ref Ref) {
	r.cache.Invalidate(querycache.SharedKey(string(ref.Kind), ref.ID))
}

func (r *Resolver) load(ctx context.Context, ref Ref) (Preview, error) {
	const op = "share.Resolve"

	switch ref.Kind {
	case KindPost:
		post, err := r.store.PostByID(ctx, ref.ID)
		if err != nil {
			return Preview{}, common.StoreError(op, err)
		}
		pp := &PostPreview{
			ID:        post.ID,
			AuthorID:  post.UserID,
			Caption:   post.Caption,
			MediaURL:  post.MediaURL,
			IsVideo:   isVideoURL(post.MediaURL),
			CreatedAt: post.CreatedAt,
		}
		if post.User != nil {
			pp.AuthorName = post.User.Name
			pp.AuthorPhoto = post.User.ProfilePhoto
		}
		return Preview{Ref: ref, Post: pp}, nil

	case KindProject:
		project, err := r.store.ProjectByID(ctx, ref.ID)
		if err != nil {
			return Preview{}, common.StoreError(op, err)
		}
		pp := &ProjectPreview{
			ID:          project.ID,
			AuthorID:    project.UserID,
			Title:       project.ProjectTitle,
			Description: project.Description,
			HasArchive:  project.ZipFileURL != nil && *project.ZipFileURL != "",
		}
		if project.User != nil {
			pp.AuthorName = project.User.Name
		}
		return Preview{Ref: ref, Project: pp}, nil

	case KindUser:
		user, err := r.store.UserByID(ctx, ref.ID)
		if err != nil {
			return Preview{}, common.StoreError(op, err)
		}
		return Preview{Ref: ref, User: &UserPreview{
			ID:      user.ID,
			Name:    user.Name,
			Photo:   user.ProfilePhoto,
			College: user.College,
			Branch:  user.Branch,
		}}, nil
	}
	return Preview{}, common.Errorf(common.KindValidationFailed, op, "unknown kind %q", ref.Kind)
}
