package service

import (
	"campusnet/internal/chat"
	"campusnet/internal/common"
	"campusnet/internal/dbmysql"
	"campusnet/internal/share"
)

func participant(u *dbmysql.User) *chat.Participant {
	if u == nil {
		return nil
	}
	return &chat.Participant{
		ID:      u.ID,
		Name:    u.Name,
		Photo:   u.ProfilePhoto,
		College: u.College,
	}
}

func attachment(url, kind *string) *chat.Attachment {
	if url == nil || *url == "" {
		return nil
	}
	k := common.AttachmentNone
	if kind != nil {
		k = common.ParseAttachmentKind(*kind)
	}
	if k == common.AttachmentNone {
		k = common.DetectAttachmentKind("", *url)
	}
	return &chat.Attachment{URL: *url, Kind: k}
}

func fromDirect(row *dbmysql.Message) chat.Message {
	return chat.Message{
		ID:         row.ID,
		SenderID:   row.SenderID,
		Sender:     participant(row.Sender),
		Scope:      chat.Scope{Kind: chat.ScopeDirect, ReceiverID: row.ReceiverID},
		Body:       row.Message,
		Attachment: attachment(row.AttachmentURL, row.AttachmentType),
		Shared:     share.ParseColumns(row.SharedPostID, row.SharedProjectID, row.SharedUserID),
		CreatedAt:  row.CreatedAt,
	}
}

func fromGroup(row *dbmysql.GroupMessage) chat.Message {
	kind := row.Type
	return chat.Message{
		ID:         row.ID,
		SenderID:   row.SenderID,
		Sender:     participant(row.Sender),
		Scope:      chat.Scope{Kind: chat.ScopeGroup, GroupID: row.GroupID},
		Body:       row.Content,
		Attachment: attachment(row.MediaURL, &kind),
		Shared:     share.ParseColumns(row.SharedPostID, row.SharedProjectID, row.SharedUserID),
		CreatedAt:  row.CreatedAt,
	}
}

func directRow(senderID, receiverID string, in chat.SendInput) *dbmysql.Message {
	row := &dbmysql.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    in.Body,
	}
	if in.Attachment != nil && in.Attachment.URL != "" {
		url, kind := in.Attachment.URL, in.Attachment.Kind.String()
		row.AttachmentURL = &url
		row.AttachmentType = &kind
	}
	row.SharedPostID, row.SharedProjectID, row.SharedUserID = in.Shared.Columns()
	return row
}

func groupRow(groupID, senderID string, in chat.SendInput) *dbmysql.GroupMessage {
	row := &dbmysql.GroupMessage{
		GroupID:  groupID,
		SenderID: senderID,
		Content:  in.Body,
		Type:     "text",
	}
	if in.Attachment != nil && in.Attachment.URL != "" {
		url := in.Attachment.URL
		row.MediaURL = &url
		row.Type = in.Attachment.Kind.String()
	}
	row.SharedPostID, row.SharedProjectID, row.SharedUserID = in.Shared.Columns()
	return row
}

func fromDirectRows(rows []*dbmysql.Message) []chat.Message {
	out := make([]chat.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromDirect(r))
	}
	return out
}

func fromGroupRows(rows []*dbmysql.GroupMessage) []chat.Message {
	out := make([]chat.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromGroup(r))
	}
	return out
}
