package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campusnet/internal/chat"
	"campusnet/internal/chat/repository"
	"campusnet/internal/chat/repository/mocks"
	"campusnet/internal/common"
	"campusnet/internal/dbmysql"
	"campusnet/internal/querycache"
	"campusnet/internal/realtime"
	"campusnet/internal/share"
	"campusnet/internal/testutil"
)

func TestDirectChannel_SendValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockDirectMessageRepository(ctrl)
	d := NewDirectChannel(repo, &fakeFeed{}, querycache.New(), common.ContextIdentity{}, nil, nil)

	tests := []struct {
		name     string
		ctx      context.Context
		partner  string
		in       chat.SendInput
		wantKind common.ErrorKind
	}{
		{name: "no viewer", ctx: context.Background(), partner: "b", in: chat.SendInput{Body: "hi"}, wantKind: common.KindNotAuthenticated},
		{name: "empty message", ctx: as("a"), partner: "b", in: chat.SendInput{Body: "   "}, wantKind: common.KindValidationFailed},
		{name: "to self", ctx: as("a"), partner: "a", in: chat.SendInput{Body: "hi"}, wantKind: common.KindValidationFailed},
		{name: "no partner", ctx: as("a"), in: chat.SendInput{Body: "hi"}, wantKind: common.KindValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Send(tt.ctx, tt.partner, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, common.KindOf(err))
		})
	}
}

func TestDirectChannel_SendInvalidatesBothSides(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockDirectMessageRepository(ctrl)
	cache := querycache.New()
	notifier := &mockNotifier{}
	d := NewDirectChannel(repo, &fakeFeed{}, cache, common.ContextIdentity{}, notifier, nil)
	clock := testutil.NewClock()
	d.now = clock.Now

	for _, k := range []querycache.Key{
		querycache.ChatKey("a", "b"),
		querycache.ChatKey("b", "a"),
		querycache.ConversationsKey("a"),
		querycache.ConversationsKey("b"),
		querycache.ChatKey("a", "c"),
	} {
		cache.Set(k, []chat.Message{})
	}

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, row *dbmysql.Message) error {
			assert.Equal(t, "a", row.SenderID)
			assert.Equal(t, "b", row.ReceiverID)
			assert.Equal(t, "p1", *row.SharedPostID)
			assert.Nil(t, row.SharedUserID)
			row.ID = "m1"
			return nil
		})
	notifier.On("SendMessageNotification", mock.Anything, "b", "a", "Shared a post").Return(errors.New("queue full"))

	msg, err := d.Send(as("a"), "b", chat.SendInput{Shared: share.PostRef("p1")})
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, clock.Peek(), msg.CreatedAt)
	assert.Equal(t, chat.Scope{Kind: chat.ScopeDirect, ReceiverID: "b"}, msg.Scope)
	notifier.AssertExpectations(t)

	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get(querycache.ChatKey("a", "c"))
	assert.True(t, ok)
}

func TestDirectChannel_SendStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockDirectMessageRepository(ctrl)
	cache := querycache.New()
	d := NewDirectChannel(repo, &fakeFeed{}, cache, common.ContextIdentity{}, nil, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("deadlock"))

	cache.Set(querycache.ChatKey("a", "b"), []chat.Message{})
	cache.Set(querycache.ConversationsKey("b"), []chat.Conversation{})

	_, err := d.Send(as("a"), "b", chat.SendInput{Body: "hi"})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Zero(t, cache.Len(), "a failed send still drops both sides")
}

func TestDirectChannel_DeleteFailureInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockDirectMessageRepository(ctrl)
	cache := querycache.New()
	d := NewDirectChannel(repo, &fakeFeed{}, cache, common.ContextIdentity{}, nil, nil)

	row := &dbmysql.Message{ID: "m1", SenderID: "a", ReceiverID: "b"}
	repo.EXPECT().ByID(gomock.Any(), "m1").Return(row, nil)
	repo.EXPECT().Delete(gomock.Any(), row).Return(errors.New("lock wait timeout"))

	cache.Set(querycache.ChatKey("b", "a"), []chat.Message{})
	cache.Set(querycache.ConversationsKey("a"), []chat.Conversation{})

	assert.ErrorIs(t, d.Delete(as("a"), "m1"), common.ErrStoreUnavailable)
	assert.Zero(t, cache.Len())
}

func TestDirectChannel_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockDirectMessageRepository(ctrl)
	cache := querycache.New()
	d := NewDirectChannel(repo, &fakeFeed{}, cache, common.ContextIdentity{}, nil, nil)

	row := &dbmysql.Message{ID: "m1", SenderID: "a", ReceiverID: "b"}
	repo.EXPECT().ByID(gomock.Any(), "missing").Return(nil, gorm.ErrRecordNotFound)
	repo.EXPECT().ByID(gomock.Any(), "m1").Return(row, nil).Times(2)
	repo.EXPECT().Delete(gomock.Any(), row).Return(nil)

	assert.ErrorIs(t, d.Delete(as("a"), "missing"), common.ErrNotFound)
	assert.ErrorIs(t, d.Delete(as("b"), "m1"), common.ErrForbidden)

	cache.Set(querycache.ChatKey("b", "a"), []chat.Message{})
	require.NoError(t, d.Delete(as("a"), "m1"))
	assert.Zero(t, cache.Len())
}

func TestDirectChannel_ListMessagesDoesNotCacheFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockDirectMessageRepository(ctrl)
	cache := querycache.New()
	d := NewDirectChannel(repo, &fakeFeed{}, cache, common.ContextIdentity{}, nil, nil)

	gomock.InOrder(
		repo.EXPECT().Between(gomock.Any(), "a", "b").Return(nil, errors.New("timeout")),
		repo.EXPECT().Between(gomock.Any(), "a", "b").Return([]*dbmysql.Message{{ID: "m1", SenderID: "a", ReceiverID: "b", Message: "hi"}}, nil),
	)

	_, err := d.ListMessages(context.Background(), "a", "b")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)

	msgs, err := d.ListMessages(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	// Served from cache; the mock allows no third call.
	msgs, err = d.ListMessages(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	_, err = d.ListMessages(context.Background(), "", "b")
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestDirectChannel_WatchOnlyReactsToPartner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockDirectMessageRepository(ctrl)
	feed := &fakeFeed{}
	d := NewDirectChannel(repo, feed, querycache.New(), common.ContextIdentity{}, nil, nil)

	repo.EXPECT().Between(gomock.Any(), "a", "b").Return([]*dbmysql.Message{{ID: "m9", SenderID: "b", ReceiverID: "a"}}, nil).Times(1)

	calls := 0
	w, err := d.Watch(as("a"), "b", func(msgs []chat.Message, err error) {
		require.NoError(t, err)
		calls++
		assert.Equal(t, "m9", msgs[0].ID)
	})
	require.NoError(t, err)

	sub := feed.last()
	assert.Equal(t, "messages", sub.table)
	feed.emit(realtime.Event{Table: "messages", Type: realtime.Insert, Record: map[string]any{"sender_id": "c", "receiver_id": "a"}})
	feed.emit(realtime.Event{Table: "messages", Type: realtime.Insert, Record: map[string]any{"sender_id": "b", "receiver_id": "x"}})
	feed.emit(realtime.Event{Table: "messages", Type: realtime.Insert, Record: map[string]any{"sender_id": "b", "receiver_id": "a"}})
	assert.Equal(t, 1, calls)

	w.Close()
	w.Close()
	assert.Equal(t, 1, sub.closed)

	feed.emit(realtime.Event{Table: "messages", Type: realtime.Insert, Record: map[string]any{"sender_id": "b", "receiver_id": "a"}})
	assert.Equal(t, 1, calls)
}

func TestDirectChannel_WatchErrors(t *testing.T) {
	d := NewDirectChannel(nil, &fakeFeed{err: realtime.ErrHubClosed}, querycache.New(), common.ContextIdentity{}, nil, nil)

	_, err := d.Watch(context.Background(), "b", func([]chat.Message, error) {})
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	_, err = d.Watch(as("a"), "b", func([]chat.Message, error) {})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestDirectChannel_EndToEnd(t *testing.T) {
	db := testutil.NewTestDB(t)
	hub := realtime.NewHub(2, 64, nil)
	defer hub.Shutdown()
	require.NoError(t, db.Use(realtime.NewGormPlugin(hub, "test", nil, "messages")))
	testutil.CreateUser(t, db, "a", "Asha", "IIT Delhi")
	testutil.CreateUser(t, db, "b", "Bilal", "IIT Delhi")

	repo := repository.NewDirectMessageRepository(db)
	cache := querycache.New()
	d := NewDirectChannel(repo, hub, cache, common.ContextIdentity{}, nil, nil)
	d.now = testutil.NewClock().Now

	_, err := d.Send(as("a"), "b", chat.SendInput{Body: "hi"})
	require.NoError(t, err)

	updates := make(chan []chat.Message, 4)
	w, err := d.Watch(as("a"), "b", func(msgs []chat.Message, err error) {
		if err == nil {
			updates <- msgs
		}
	})
	require.NoError(t, err)
	defer w.Close()

	before, err := d.ListMessages(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Len(t, before, 1)

	_, err = d.Send(as("b"), "a", chat.SendInput{Body: "hey"})
	require.NoError(t, err)

	select {
	case msgs := <-updates:
		require.Len(t, msgs, 2)
		assert.Equal(t, "hi", msgs[0].Body)
		assert.Equal(t, "hey", msgs[1].Body)
		assert.Equal(t, "Bilal", msgs[1].Sender.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not fire")
	}
}
