package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campusnet/internal/dbmysql"
	"campusnet/internal/testutil"
)

func seedThread(t *testing.T, db *gorm.DB) {
	t.Helper()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []*dbmysql.Message{
		{ID: "m1", SenderID: "a", ReceiverID: "b", Message: "hi", CreatedAt: base},
		{ID: "m2", SenderID: "c", ReceiverID: "a", Message: "yo", CreatedAt: base.Add(time.Minute)},
		{ID: "m3", SenderID: "b", ReceiverID: "a", Message: "hey", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "m4", SenderID: "b", ReceiverID: "c", Message: "not a's", CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, m := range rows {
		require.NoError(t, db.Create(m).Error)
	}
}

func TestDirectRepository_Between(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "a", "Asha", "IIT")
	testutil.CreateUser(t, db, "b", "Bilal", "IIT")
	seedThread(t, db)
	repo := NewDirectMessageRepository(db)

	thread, err := repo.Between(context.Background(), "b", "a")
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "m1", thread[0].ID)
	assert.Equal(t, "m3", thread[1].ID)
	require.NotNil(t, thread[1].Sender)
	assert.Equal(t, "Bilal", thread[1].Sender.Name)
}

func TestDirectRepository_Involving(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "b", "Bilal", "IIT")
	seedThread(t, db)
	repo := NewDirectMessageRepository(db)

	msgs, err := repo.Involving(context.Background(), "a")
	require.NoError(t, err)
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"m3", "m2", "m1"}, ids)
	assert.NotNil(t, msgs[0].Sender)
	assert.Nil(t, msgs[1].Sender, "sender c has no profile row")
}

func TestDirectRepository_CreateAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewDirectMessageRepository(db)
	ctx := context.Background()

	msg := &dbmysql.Message{SenderID: "a", ReceiverID: "b", Message: "hi"}
	require.NoError(t, repo.Create(ctx, msg))
	require.NotEmpty(t, msg.ID)

	got, err := repo.ByID(ctx, msg.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, got))

	_, err = repo.ByID(ctx, msg.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDirectRepository_StoreFailure(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewDirectMessageRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE sender_id = ? OR receiver_id = ?")).
		WithArgs("a", "a").
		WillReturnError(assert.AnError)

	_, err := repo.Involving(context.Background(), "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectRepository_CreateFailure(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewDirectMessageRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `messages`")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &dbmysql.Message{SenderID: "a", ReceiverID: "b", Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save message")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "a", "Asha", "IIT")
	repo := NewGroupMessageRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	first := &dbmysql.GroupMessage{GroupID: "g1", SenderID: "a", Content: "first", CreatedAt: base}
	second := &dbmysql.GroupMessage{GroupID: "g1", SenderID: "a", Content: "second", CreatedAt: base.Add(time.Second)}
	other := &dbmysql.GroupMessage{GroupID: "g2", SenderID: "a", Content: "elsewhere", CreatedAt: base}
	for _, m := range []*dbmysql.GroupMessage{second, first, other} {
		require.NoError(t, repo.Create(ctx, m))
	}
	assert.Equal(t, "text", first.Type)

	msgs, err := repo.ByGroup(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "Asha", msgs[0].Sender.Name)

	require.NoError(t, repo.Delete(ctx, first))
	msgs, err = repo.ByGroup(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}
