package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"campusnet/internal/common"
	"campusnet/internal/realtime"
)

func TestWatchPolicy(t *testing.T) {
	policy := WatchPolicy(staticMembers{"g1/a": true})

	tests := []struct {
		name     string
		req      realtime.WatchRequest
		wantKind common.ErrorKind
	}{
		{name: "own inbox", req: realtime.WatchRequest{Table: "messages", Filter: realtime.Eq("receiver_id", "a")}},
		{name: "someone else's inbox", req: realtime.WatchRequest{Table: "messages", Filter: realtime.Eq("receiver_id", "b")}, wantKind: common.KindForbidden},
		{name: "unfiltered messages", req: realtime.WatchRequest{Table: "messages"}, wantKind: common.KindForbidden},
		{name: "member group", req: realtime.WatchRequest{Table: "group_messages", Filter: realtime.Eq("group_id", "g1")}},
		{name: "other group", req: realtime.WatchRequest{Table: "group_messages", Filter: realtime.Eq("group_id", "g2")}, wantKind: common.KindForbidden},
		{name: "group without filter", req: realtime.WatchRequest{Table: "group_messages"}, wantKind: common.KindValidationFailed},
		{name: "likes", req: realtime.WatchRequest{Table: "likes"}},
		{name: "users", req: realtime.WatchRequest{Table: "users"}, wantKind: common.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy(context.Background(), "a", &tt.req)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantKind, common.KindOf(err))
		})
	}
}
