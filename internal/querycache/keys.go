package querycache

func ConversationsKey(viewerID string) Key {
	return NewKey("conversations", viewerID)
}

func ChatKey(viewerID, partnerID string) Key {
	return NewKey("chat", viewerID, partnerID)
}

func GroupChatKey(groupID string) Key {
	return NewKey("group-chat", groupID)
}

// InteractionPrefix covers every viewer's state for one entity.
func InteractionPrefix(action, kind, entityID string) Key {
	return NewKey(action, kind, entityID)
}

func InteractionKey(action, kind, entityID, viewerID string) Key {
	return NewKey(action, kind, entityID, viewerID)
}

func CommentsCountKey(kind, entityID string) Key {
	return NewKey("comments-count", kind, entityID)
}

func SharedKey(kind, entityID string) Key {
	return NewKey("shared", kind, entityID)
}

func GroupsKey(viewerID string) Key {
	return NewKey("groups", viewerID)
}

func FollowKey(viewerID, targetID string) Key {
	return NewKey("follow", viewerID, targetID)
}
