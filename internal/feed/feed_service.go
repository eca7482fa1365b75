// Package feed stores the posts, projects and stories that messages can share.
package feed

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"campusnet/internal/common"
	"campusnet/internal/config"
	"campusnet/internal/dbmysql"
	"campusnet/internal/logging"
	"campusnet/internal/querycache"
)

const (
	defaultTimelineSize = 20
	maxTimelineSize     = 100
)

type PostInput struct {
	Caption  string `json:"caption"`
	MediaURL string `json:"media_url,omitempty"`
	Branch   string `json:"branch,omitempty"`
}

type ProjectInput struct {
	Title       string `json:"project_title"`
	Description string `json:"description,omitempty"`
	ZipFileURL  string `json:"zip_file_url,omitempty"`
}

type StoryInput struct {
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type,omitempty"`
}

type FeedService struct {
	posts    Posts
	projects Projects
	stories  Stories
	identity common.Identity
	cache    *querycache.Cache
	storyTTL time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewFeedService(posts Posts, projects Projects, stories Stories, identity common.Identity, cache *querycache.Cache, cfg config.StoriesConfig, log *zap.Logger) *FeedService {
	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &FeedService{
		posts:    posts,
		projects: projects,
		stories:  stories,
		identity: identity,
		cache:    cache,
		storyTTL: ttl,
		now:      time.Now,
		log:      logging.OrNop(log),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// --------- POSTS ---------

func (s *FeedService) CreatePost(ctx context.Context, in PostInput) (*dbmysql.Post, error) {
	const op = "feed.create_post"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return nil, err
	}
	post := &dbmysql.Post{
		UserID:    viewer,
		Caption:   optional(in.Caption),
		MediaURL:  optional(in.MediaURL),
		Branch:    optional(in.Branch),
		CreatedAt: s.now(),
	}
	if post.Caption == nil && post.MediaURL == nil {
		return nil, common.Errorf(common.KindValidationFailed, op, "post needs a caption or media")
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, common.StoreError(op, err)
	}
	return post, nil
}

func (s *FeedService) GetPost(ctx context.Context, id string) (*dbmysql.Post, error) {
	post, err := s.posts.PostByID(ctx, id)
	if err != nil {
		return nil, common.StoreError("feed.get_post", err)
	}
	return post, nil
}

// Timeline returns the newest posts across the network that match filter.
func (s *FeedService) Timeline(ctx context.Context, filter PostFilter, limit, offset int) ([]*dbmysql.Post, error) {
	limit, offset = page(limit, offset)
	posts, err := s.posts.ListPosts(ctx, filter.normalized(), limit, offset)
	if err != nil {
		return nil, common.StoreError("feed.timeline", err)
	}
	return posts, nil
}

// AlumniPosts lists posts by authors whose batch has already graduated.
func (s *FeedService) AlumniPosts(ctx context.Context, limit, offset int) ([]*dbmysql.Post, error) {
	return s.Timeline(ctx, PostFilter{AlumniBefore: s.now().Year()}, limit, offset)
}

// OtherCollegePosts lists posts from outside college. An empty college
// returns the whole timeline.
func (s *FeedService) OtherCollegePosts(ctx context.Context, college string, limit, offset int) ([]*dbmysql.Post, error) {
	return s.Timeline(ctx, PostFilter{ExcludeCollege: college}, limit, offset)
}

func (s *FeedService) UserPosts(ctx context.Context, userID string) ([]*dbmysql.Post, error) {
	posts, err := s.posts.ListUserPosts(ctx, userID)
	if err != nil {
		return nil, common.StoreError("feed.user_posts", err)
	}
	return posts, nil
}

// DeletePost lets authors remove their own posts. Cached previews and
// counters for the post are dropped.
func (s *FeedService) DeletePost(ctx context.Context, id string) error {
	const op = "feed.delete_post"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return err
	}
	post, err := s.posts.PostByID(ctx, id)
	if err != nil {
		return common.StoreError(op, err)
	}
	if post.UserID != viewer {
		return common.Errorf(common.KindForbidden, op, "post %s belongs to another user", id)
	}
	if err := s.posts.DeletePost(ctx, post); err != nil {
		return common.StoreError(op, err)
	}

	s.cache.Invalidate(querycache.SharedKey("post", id))
	s.cache.Invalidate(querycache.CommentsCountKey("post", id))
	for _, action := range []string{"like", "bookmark"} {
		s.cache.Invalidate(querycache.InteractionPrefix(action, "post", id))
	}
	return nil
}

// --------- PROJECTS ---------

func (s *FeedService) CreateProject(ctx context.Context, in ProjectInput) (*dbmysql.Project, error) {
	const op = "feed.create_project"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, common.Errorf(common.KindValidationFailed, op, "project title is required")
	}
	project := &dbmysql.Project{
		UserID:       viewer,
		ProjectTitle: title,
		Description:  optional(in.Description),
		ZipFileURL:   optional(in.ZipFileURL),
		CreatedAt:    s.now(),
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, common.StoreError(op, err)
	}
	return project, nil
}

func (s *FeedService) GetProject(ctx context.Context, id string) (*dbmysql.Project, error) {
	project, err := s.projects.ProjectByID(ctx, id)
	if err != nil {
		return nil, common.StoreError("feed.get_project", err)
	}
	return project, nil
}

// Projects returns the newest projects across the network.
func (s *FeedService) Projects(ctx context.Context, limit, offset int) ([]*dbmysql.Project, error) {
	limit, offset = page(limit, offset)
	projects, err := s.projects.ListProjects(ctx, limit, offset)
	if err != nil {
		return nil, common.StoreError("feed.projects", err)
	}
	return projects, nil
}

func (s *FeedService) UserProjects(ctx context.Context, userID string) ([]*dbmysql.Project, error) {
	projects, err := s.projects.ListUserProjects(ctx, userID)
	if err != nil {
		return nil, common.StoreError("feed.user_projects", err)
	}
	return projects, nil
}

// --------- STORIES ---------

func (s *FeedService) CreateStory(ctx context.Context, in StoryInput) (*dbmysql.Story, error) {
	const op = "feed.create_story"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.MediaURL) == "" {
		return nil, common.Errorf(common.KindValidationFailed, op, "story needs media")
	}
	mediaType := in.MediaType
	if mediaType == "" {
		mediaType = "image"
		if common.IsVideoURL(in.MediaURL) {
			mediaType = "video"
		}
	}
	now := s.now()
	story := &dbmysql.Story{
		UserID:    viewer,
		MediaURL:  in.MediaURL,
		MediaType: mediaType,
		CreatedAt: now,
		ExpiresAt: now.Add(s.storyTTL),
	}
	if err := s.stories.CreateStory(ctx, story); err != nil {
		return nil, common.StoreError(op, err)
	}
	return story, nil
}

func (s *FeedService) ActiveStories(ctx context.Context) ([]*dbmysql.Story, error) {
	stories, err := s.stories.ActiveStories(ctx, s.now())
	if err != nil {
		return nil, common.StoreError("feed.stories", err)
	}
	return stories, nil
}
