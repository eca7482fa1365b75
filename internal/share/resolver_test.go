package share

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campusnet/internal/common"
	"campusnet/internal/dbmysql"
	"campusnet/internal/querycache"
	"campusnet/internal/testutil"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) PostByID(ctx context.Context, id string) (*dbmysql.Post, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*dbmysql.Post)
	return p, args.Error(1)
}

func (m *MockStore) ProjectByID(ctx context.Context, id string) (*dbmysql.Project, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*dbmysql.Project)
	return p, args.Error(1)
}

func (m *MockStore) UserByID(ctx context.Context, id string) (*dbmysql.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*dbmysql.User)
	return u, args.Error(1)
}

type message struct{ ref Ref }

func (m message) SharedRef() Ref { return m.ref }

func TestResolver_CachesPerEntity(t *testing.T) {
	store := new(MockStore)
	store.On("PostByID", mock.Anything, "p1").Return(&dbmysql.Post{
		ID:       "p1",
		UserID:   "u1",
		Caption:  strp("hackathon demo"),
		MediaURL: strp("https://cdn/p1.mp4"),
		User:     &dbmysql.User{ID: "u1", Name: "Asha"},
	}, nil).Once()

	r := NewResolver(store, querycache.New(), nil)

	for i := 0; i < 3; i++ {
		p, err := r.Resolve(context.Background(), message{ref: PostRef("p1")})
		require.NoError(t, err)
		require.NotNil(t, p.Post)
		assert.Equal(t, "Asha", p.Post.AuthorName)
		assert.True(t, p.Post.IsVideo)
		assert.False(t, p.Unavailable)
	}
	store.AssertExpectations(t)
}

func TestResolver_MissingEntityIsUnavailable(t *testing.T) {
	store := new(MockStore)
	store.On("ProjectByID", mock.Anything, "gone").Return(nil, gorm.ErrRecordNotFound).Once()

	r := NewResolver(store, querycache.New(), nil)

	p, err := r.ResolveRef(context.Background(), ProjectRef("gone"))
	require.NoError(t, err)
	assert.True(t, p.Unavailable)
	assert.Equal(t, "Project unavailable", p.Label())

	// cached: no second lookup
	_, err = r.ResolveRef(context.Background(), ProjectRef("gone"))
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestResolver_StoreFailureNotCached(t *testing.T) {
	store := new(MockStore)
	store.On("UserByID", mock.Anything, "u1").Return(nil, errors.New("connection reset")).Once()
	store.On("UserByID", mock.Anything, "u1").Return(&dbmysql.User{ID: "u1", Name: "Ravi", College: "NIT"}, nil).Once()

	r := NewResolver(store, querycache.New(), nil)

	_, err := r.ResolveRef(context.Background(), UserRef("u1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)

	p, err := r.ResolveRef(context.Background(), UserRef("u1"))
	require.NoError(t, err)
	assert.Equal(t, "Ravi", p.User.Name)
	store.AssertExpectations(t)
}

func TestResolver_NoReference(t *testing.T) {
	r := NewResolver(new(MockStore), querycache.New(), nil)
	p, err := r.Resolve(context.Background(), message{})
	require.NoError(t, err)
	assert.Equal(t, Preview{}, p)
}

func TestResolver_ResolveAllAndForget(t *testing.T) {
	store := new(MockStore)
	store.On("PostByID", mock.Anything, "p1").Return(&dbmysql.Post{ID: "p1", UserID: "u1"}, nil).Twice()
	store.On("UserByID", mock.Anything, "u2").Return(&dbmysql.User{ID: "u2", Name: "Mei"}, nil).Once()

	r := NewResolver(store, querycache.New(), nil)

	out, err := r.ResolveAll(context.Background(), []Ref{PostRef("p1"), {}, UserRef("u2"), PostRef("p1")})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	r.Forget(PostRef("p1"))
	_, err = r.ResolveRef(context.Background(), PostRef("p1"))
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestResolver_AgainstStore(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "u1", "Asha", "IIT Delhi")
	testutil.CreatePost(t, db, "p1", "u1", "first post")
	project := testutil.CreateProject(t, db, "pr1", "u1", "Compiler")
	require.NoError(t, db.Model(project).Update("zip_file_url", "https://cdn/src.zip").Error)

	r := NewResolver(NewStore(db), querycache.New(), nil)
	ctx := context.Background()

	post, err := r.ResolveRef(ctx, PostRef("p1"))
	require.NoError(t, err)
	assert.Equal(t, "Asha", post.Post.AuthorName)
	assert.Equal(t, "first post", *post.Post.Caption)

	proj, err := r.ResolveRef(ctx, ProjectRef("pr1"))
	require.NoError(t, err)
	assert.Equal(t, "Compiler", proj.Project.Title)
	assert.True(t, proj.Project.HasArchive)

	user, err := r.ResolveRef(ctx, UserRef("u1"))
	require.NoError(t, err)
	assert.Equal(t, "IIT Delhi", user.User.College)

	missing, err := r.ResolveRef(ctx, PostRef("nope"))
	require.NoError(t, err)
	assert.True(t, missing.Unavailable)
}
