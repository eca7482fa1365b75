package follow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campusnet/internal/common"
	"campusnet/internal/querycache"
	"campusnet/internal/testutil"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) SendMessageNotification(ctx context.Context, recipientID, senderID, preview string) error {
	return m.Called(ctx, recipientID, senderID, preview).Error(0)
}

func (m *notifierMock) SendReactionNotification(ctx context.Context, entityKind, entityID, authorID, actorID string) error {
	return m.Called(ctx, entityKind, entityID, authorID, actorID).Error(0)
}

func (m *notifierMock) SendFollowNotification(ctx context.Context, followerID, followingID string) error {
	return m.Called(ctx, followerID, followingID).Error(0)
}

func as(userID string) context.Context {
	return common.WithViewer(context.Background(), userID)
}

func TestService_FollowLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	for _, id := range []string{"a", "b", "c"} {
		testutil.CreateUser(t, db, id, "user "+id, "IIT Delhi")
	}
	notifier := &notifierMock{}
	notifier.On("SendFollowNotification", mock.Anything, "a", "b").Return(errors.New("queue down")).Once()
	notifier.On("SendFollowNotification", mock.Anything, "b", "a").Return(nil).Once()
	notifier.On("SendFollowNotification", mock.Anything, "c", "b").Return(nil).Once()

	svc := NewService(NewFollowRepository(db), querycache.New(), common.ContextIdentity{}, notifier, nil)

	following, err := svc.IsFollowing(as("a"), "b")
	require.NoError(t, err)
	assert.False(t, following)

	// a notification failure does not fail the follow
	require.NoError(t, svc.Follow(as("a"), "b"))
	require.NoError(t, svc.Follow(as("a"), "b"))

	following, err = svc.IsFollowing(as("a"), "b")
	require.NoError(t, err)
	assert.True(t, following, "follow invalidates the cached answer")

	mutual, err := svc.IsMutual(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.False(t, mutual)

	require.NoError(t, svc.Follow(as("b"), "a"))
	require.NoError(t, svc.Follow(as("c"), "b"))
	mutual, err = svc.IsMutual(context.Background(), "b", "a")
	require.NoError(t, err)
	assert.True(t, mutual)

	counts, err := svc.Counts(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, Counts{Followers: 2, Following: 1}, counts)

	followers, err := svc.Followers(context.Background(), "b")
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	require.NoError(t, svc.Unfollow(as("a"), "b"))
	require.NoError(t, svc.Unfollow(as("a"), "b"))
	following, err = svc.IsFollowing(as("a"), "b")
	require.NoError(t, err)
	assert.False(t, following)

	notifier.AssertExpectations(t)
}

func TestService_Validation(t *testing.T) {
	svc := NewService(nil, querycache.New(), common.ContextIdentity{}, nil, nil)

	assert.ErrorIs(t, svc.Follow(as("a"), "a"), common.ErrValidationFailed)
	assert.ErrorIs(t, svc.Follow(as("a"), ""), common.ErrValidationFailed)
	assert.ErrorIs(t, svc.Follow(context.Background(), "b"), common.ErrNotAuthenticated)
	assert.ErrorIs(t, svc.Unfollow(context.Background(), "b"), common.ErrNotAuthenticated)

	following, err := svc.IsFollowing(context.Background(), "b")
	require.NoError(t, err)
	assert.False(t, following)
}

func TestService_StoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockFollowRepository(ctrl)
	svc := NewService(repo, querycache.New(), common.ContextIdentity{}, nil, nil)

	repo.EXPECT().Exists(gomock.Any(), "a", "b").Return(false, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("deadlock"))
	assert.ErrorIs(t, svc.Follow(as("a"), "b"), common.ErrStoreUnavailable)

	repo.EXPECT().CountFollowers(gomock.Any(), "b").Return(int64(0), errors.New("timeout"))
	_, err := svc.Counts(context.Background(), "b")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)

	repo.EXPECT().Exists(gomock.Any(), "a", "c").Return(false, errors.New("timeout"))
	_, err = svc.IsFollowing(as("a"), "c")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestHandler(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "a", "Asha", "IIT Delhi")
	testutil.CreateUser(t, db, "b", "Bilal", "IIT Delhi")
	svc := NewService(NewFollowRepository(db), querycache.New(), common.ContextIdentity{}, nil, nil)

	r := mux.NewRouter()
	r.Use(testutil.ViewerHeader)
	NewHandler(svc, nil).Register(r)

	do := func(method, path, viewer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if viewer != "" {
			req.Header.Set("X-Viewer", viewer)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, "/users/b/follow", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/users/a/follow", "a").Code)
	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "/users/b/follow", "a").Code)
	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "/users/a/follow", "b").Code)

	rec := do(http.MethodGet, "/users/b/follow", "a")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"following":true,"mutual":true}`, rec.Body.String())

	rec = do(http.MethodGet, "/users/a/follow-counts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"followers":1,"following":1}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/users/b/follow", "a").Code)
	rec = do(http.MethodGet, "/users/b/follow", "a")
	assert.JSONEq(t, `{"following":false,"mutual":false}`, rec.Body.String())
}
