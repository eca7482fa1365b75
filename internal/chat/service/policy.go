package service

import (
	"context"

	"campusnet/internal/common"
	"campusnet/internal/realtime"
)

// WatchPolicy limits what a viewer may watch over the change feed: their own
// direct messages, groups they belong to, and the public interaction tables.
func WatchPolicy(members MembershipChecker) realtime.WatchPolicy {
	return func(ctx context.Context, viewerID string, req *realtime.WatchRequest) error {
		const op = "chat.watch_policy"
		switch req.Table {
		case "messages":
			col := req.Filter.Column
			if (col == "receiver_id" || col == "sender_id") && req.Filter.Value == viewerID {
				return nil
			}
			return common.Errorf(common.KindForbidden, op, "direct messages must be filtered to the viewer")
		case "group_messages":
			if req.Filter.Column != "group_id" || req.Filter.Value == "" {
				return common.Errorf(common.KindValidationFailed, op, "group messages must be filtered by group_id")
			}
			ok, err := members.IsMember(ctx, req.Filter.Value, viewerID)
			if err != nil {
				return common.StoreError(op, err)
			}
			if !ok {
				return common.Errorf(common.KindForbidden, op, "not a member of group %s", req.Filter.Value)
			}
			return nil
		case "likes", "bookmarks", "comments", "follows":
			return nil
		case "notifications":
			if req.Filter.Column == "user_id" && req.Filter.Value == viewerID {
				return nil
			}
			return common.Errorf(common.KindForbidden, op, "notifications must be filtered to the viewer")
		}
		return common.Errorf(common.KindForbidden, op, "table %q cannot be watched", req.Table)
	}
}
