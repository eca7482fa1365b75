package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"campusnet/internal/common"
	"campusnet/internal/realtime"
)

func as(userID string) context.Context {
	return common.WithViewer(context.Background(), userID)
}

// fakeFeed records subscriptions so tests can push events by hand.
type fakeFeed struct {
	mu   sync.Mutex
	subs []*fakeSub
	err  error
}

type fakeSub struct {
	table   string
	filter  realtime.Filter
	onEvent func(realtime.Event)
	closed  int
}

func (s *fakeSub) Close() { s.closed++ }

func (f *fakeFeed) Subscribe(table string, filter realtime.Filter, onEvent func(realtime.Event)) (realtime.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &fakeSub{table: table, filter: filter, onEvent: onEvent}
	f.subs = append(f.subs, s)
	return s, nil
}

func (f *fakeFeed) last() *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[len(f.subs)-1]
}

// emit delivers e to every subscription whose filter matches, as the hub would.
func (f *fakeFeed) emit(e realtime.Event) {
	f.mu.Lock()
	subs := append([]*fakeSub(nil), f.subs...)
	f.mu.Unlock()
	for _, s := range subs {
		if s.table == e.Table && s.filter.Match(e) {
			s.onEvent(e)
		}
	}
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendMessageNotification(ctx context.Context, recipientID, senderID, preview string) error {
	args := m.Called(ctx, recipientID, senderID, preview)
	return args.Error(0)
}

func (m *mockNotifier) SendReactionNotification(ctx context.Context, entityKind, entityID, authorID, actorID string) error {
	args := m.Called(ctx, entityKind, entityID, authorID, actorID)
	return args.Error(0)
}

func (m *mockNotifier) SendFollowNotification(ctx context.Context, followerID, followingID string) error {
	args := m.Called(ctx, followerID, followingID)
	return args.Error(0)
}

type staticMembers map[string]bool

func (m staticMembers) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	return m[groupID+"/"+userID], nil
}
