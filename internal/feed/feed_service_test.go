package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campusnet/internal/common"
	"campusnet/internal/config"
	"campusnet/internal/dbmysql"
	"campusnet/internal/querycache"
	"campusnet/internal/share"
	"campusnet/internal/testutil"
)

func as(userID string) context.Context {
	return common.WithViewer(context.Background(), userID)
}

func newFeed(t *testing.T) (*FeedService, *gorm.DB, *querycache.Cache) {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "a", "Asha", "IIT Delhi")
	testutil.CreateUser(t, db, "b", "Bilal", "IIT Delhi")
	repo := NewFeedRepository(db)
	cache := querycache.New()
	svc := NewFeedService(repo, repo, repo, common.ContextIdentity{}, cache, config.StoriesConfig{TTLHours: 24}, nil)
	svc.now = testutil.NewClock().Now
	return svc, db, cache
}

func TestFeedService_Posts(t *testing.T) {
	svc, _, _ := newFeed(t)

	_, err := svc.CreatePost(as("a"), PostInput{Caption: "   "})
	assert.ErrorIs(t, err, common.ErrValidationFailed)
	_, err = svc.CreatePost(context.Background(), PostInput{Caption: "hi"})
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	first, err := svc.CreatePost(as("a"), PostInput{Caption: "first build"})
	require.NoError(t, err)
	second, err := svc.CreatePost(as("b"), PostInput{MediaURL: "https://cdn/x.png", Branch: "CSE"})
	require.NoError(t, err)
	assert.Nil(t, second.Caption)

	timeline, err := svc.Timeline(context.Background(), PostFilter{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, second.ID, timeline[0].ID)
	assert.Equal(t, "Asha", timeline[1].User.Name)

	page, err := svc.Timeline(context.Background(), PostFilter{}, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	mine, err := svc.UserPosts(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFeedService_DeletePost(t *testing.T) {
	svc, db, cache := newFeed(t)
	post, err := svc.CreatePost(as("a"), PostInput{Caption: "demo day"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&dbmysql.Like{UserID: "b", PostID: &post.ID}).Error)

	cache.Set(querycache.SharedKey("post", post.ID), "preview")
	cache.Set(querycache.InteractionKey("like", "post", post.ID, "b"), "state")

	assert.ErrorIs(t, svc.DeletePost(as("b"), post.ID), common.ErrForbidden)
	require.NoError(t, svc.DeletePost(as("a"), post.ID))

	var likes int64
	require.NoError(t, db.Model(&dbmysql.Like{}).Count(&likes).Error)
	assert.Zero(t, likes)
	assert.Zero(t, cache.Len())

	assert.ErrorIs(t, svc.DeletePost(as("a"), post.ID), common.ErrNotFound)
}

func TestFeedService_DeletedPostResolvesUnavailable(t *testing.T) {
	svc, db, cache := newFeed(t)
	resolver := share.NewResolver(share.NewStore(db), cache, nil)
	post, err := svc.CreatePost(as("a"), PostInput{Caption: "hackathon photos"})
	require.NoError(t, err)
	ref := share.PostRef(post.ID)

	before, err := resolver.ResolveRef(context.Background(), ref)
	require.NoError(t, err)
	require.False(t, before.Unavailable)
	assert.Equal(t, "Shared a post", before.Label())
	assert.Equal(t, "Asha", before.Post.AuthorName)

	require.NoError(t, svc.DeletePost(as("a"), post.ID))

	after, err := resolver.ResolveRef(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, after.Unavailable)
	assert.Nil(t, after.Post)
	assert.Equal(t, "Post unavailable", after.Label())
}

// seedCampus adds authors across two colleges with known batches and branches.
func seedCampus(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, u := range []*dbmysql.User{
		{ID: "c", Name: "Chen", Email: "c@campus.test", College: "NIT Trichy", Branch: testutil.Ptr("ECE"), BatchEnd: testutil.Ptr(2021)},
		{ID: "d", Name: "Dara", Email: "d@campus.test", College: "IIT Delhi", Branch: testutil.Ptr("CSE"), BatchEnd: testutil.Ptr(2026)},
	} {
		require.NoError(t, db.Create(u).Error)
	}
	require.NoError(t, db.Model(&dbmysql.User{}).Where("id = ?", "a").Update("batch_end", 2022).Error)
}

func TestFeedService_TimelineFilters(t *testing.T) {
	svc, db, _ := newFeed(t)
	seedCampus(t, db)

	robots, err := svc.CreatePost(as("a"), PostInput{Caption: "Robotics club demo", Branch: "CSE"})
	require.NoError(t, err)
	sale, err := svc.CreatePost(as("c"), PostInput{Caption: "50% off textbooks", Branch: "ECE"})
	require.NoError(t, err)
	intern, err := svc.CreatePost(as("d"), PostInput{Caption: "Internship tips", Branch: "CSE"})
	require.NoError(t, err)

	ids := func(posts []*dbmysql.Post) []string {
		out := make([]string, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter PostFilter
		want   []string
	}{
		{name: "everything", filter: PostFilter{}, want: []string{intern.ID, sale.ID, robots.ID}},
		{name: "all branches", filter: PostFilter{Branch: "All"}, want: []string{intern.ID, sale.ID, robots.ID}},
		{name: "branch", filter: PostFilter{Branch: "CSE"}, want: []string{intern.ID, robots.ID}},
		{name: "search ignores case", filter: PostFilter{Search: "ROBOTICS"}, want: []string{robots.ID}},
		{name: "search is literal", filter: PostFilter{Search: "50%"}, want: []string{sale.ID}},
		{name: "college", filter: PostFilter{College: "IIT Delhi"}, want: []string{intern.ID, robots.ID}},
		{name: "college and search", filter: PostFilter{College: "IIT Delhi", Search: "tips"}, want: []string{intern.ID}},
		{name: "no match", filter: PostFilter{Branch: "MECH"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := svc.Timeline(context.Background(), tt.filter, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(posts))
		})
	}

	withAuthor, err := svc.Timeline(context.Background(), PostFilter{College: "NIT Trichy"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, withAuthor, 1)
	assert.Equal(t, "Chen", withAuthor[0].User.Name)

	// the clock starts in 2024, so batches ending 2021 and 2022 have graduated
	alumni, err := svc.AlumniPosts(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{sale.ID, robots.ID}, ids(alumni))

	elsewhere, err := svc.OtherCollegePosts(context.Background(), "IIT Delhi", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{sale.ID}, ids(elsewhere))

	unscoped, err := svc.OtherCollegePosts(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, unscoped, 3)
}

func TestFeedService_Projects(t *testing.T) {
	svc, _, _ := newFeed(t)

	_, err := svc.CreateProject(as("a"), ProjectInput{Description: "no title"})
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	project, err := svc.CreateProject(as("a"), ProjectInput{Title: " Rover ", ZipFileURL: "https://cdn/rover.zip"})
	require.NoError(t, err)
	assert.Equal(t, "Rover", project.ProjectTitle)

	got, err := svc.GetProject(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.User.Name)

	list, err := svc.UserProjects(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	newer, err := svc.CreateProject(as("b"), ProjectInput{Title: "Compiler"})
	require.NoError(t, err)
	all, err := svc.Projects(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, "Bilal", all[0].User.Name)

	second, err := svc.Projects(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, project.ID, second[0].ID)
}

func TestFeedService_StoriesExpire(t *testing.T) {
	svc, db, _ := newFeed(t)

	_, err := svc.CreateStory(as("a"), StoryInput{})
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	video, err := svc.CreateStory(as("a"), StoryInput{MediaURL: "https://cdn/clip.MP4?sig=1"})
	require.NoError(t, err)
	assert.Equal(t, "video", video.MediaType)
	assert.Equal(t, 24*time.Hour, video.ExpiresAt.Sub(video.CreatedAt))

	image, err := svc.CreateStory(as("b"), StoryInput{MediaURL: "https://cdn/pic.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "image", image.MediaType)

	active, err := svc.ActiveStories(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 2)

	repo := NewFeedRepository(db)
	sweeper, err := NewStorySweeper(repo, "*/10 * * * *", nil)
	require.NoError(t, err)
	sweeper.now = func() time.Time { return video.ExpiresAt.Add(time.Millisecond) }

	deleted, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	svc.now = sweeper.now
	active, err = svc.ActiveStories(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, image.ID, active[0].ID)
}

func TestStorySweeper_InvalidCron(t *testing.T) {
	_, err := NewStorySweeper(nil, "every ten minutes", nil)
	assert.Error(t, err)
}

func TestStorySweeper_RunStopsOnCancel(t *testing.T) {
	db := testutil.NewTestDB(t)
	sweeper, err := NewStorySweeper(NewFeedRepository(db), "* * * * *", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestFeedHandler(t *testing.T) {
	svc, _, _ := newFeed(t)
	r := mux.NewRouter()
	r.Use(testutil.ViewerHeader)
	NewFeedHandler(svc, nil).Register(r)

	do := func(method, path, viewer, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if viewer != "" {
			req.Header.Set("X-Viewer", viewer)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, "/posts", "", `{"caption":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/posts", "a", `{}`).Code)
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/posts", "a", `{"caption":"hello"}`).Code)
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/projects", "a", `{"project_title":"Rover"}`).Code)
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/stories", "b", `{"media_url":"https://cdn/a.png"}`).Code)

	rec := do(http.MethodGet, "/posts?limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")

	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/posts", "b", `{"caption":"lab notes","branch":"ECE"}`).Code)
	rec = do(http.MethodGet, "/posts?branch=ECE", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lab notes")
	assert.NotContains(t, rec.Body.String(), "hello")

	rec = do(http.MethodGet, "/posts?search=HELLO&college=All", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")
	assert.NotContains(t, rec.Body.String(), "lab notes")

	rec = do(http.MethodGet, "/posts/other-colleges?college=IIT%20Delhi", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(http.MethodGet, "/posts/alumni", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(http.MethodGet, "/projects", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rover")

	rec = do(http.MethodGet, "/users/a/projects", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rover")

	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/posts/nope", "", "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/stories", "", "").Code)
}
