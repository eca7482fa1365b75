package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

// Message is a direct message between two users.
type Message struct {
	ID              string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	SenderID        string    `gorm:"column:sender_id;size:36;index:idx_messages_pair;not null" json:"sender_id"`
	ReceiverID      string    `gorm:"column:receiver_id;size:36;index:idx_messages_pair;index;not null" json:"receiver_id"`
	Message         string    `gorm:"column:message;type:text" json:"message"`
	AttachmentURL   *string   `gorm:"column:attachment_url;size:512" json:"attachment_url,omitempty"`
	AttachmentType  *string   `gorm:"column:attachment_type;size:20" json:"attachment_type,omitempty"`
	SharedPostID    *string   `gorm:"column:shared_post_id;size:36" json:"shared_post_id,omitempty"`
	SharedProjectID *string   `gorm:"column:shared_project_id;size:36" json:"shared_project_id,omitempty"`
	SharedUserID    *string   `gorm:"column:shared_user_id;size:36" json:"shared_user_id,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at;index" json:"created_at"`

	Sender   *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}

// GroupMessage is a message posted to a group.
type GroupMessage struct {
	ID              string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	GroupID         string    `gorm:"column:group_id;size:36;index;not null" json:"group_id"`
	SenderID        string    `gorm:"column:sender_id;size:36;index;not null" json:"sender_id"`
	Content         string    `gorm:"column:content;type:text" json:"content"`
	MediaURL        *string   `gorm:"column:media_url;size:512" json:"media_url,omitempty"`
	Type            string    `gorm:"column:type;size:20;default:text" json:"type"`
	SharedPostID    *string   `gorm:"column:shared_post_id;size:36" json:"shared_post_id,omitempty"`
	SharedProjectID *string   `gorm:"column:shared_project_id;size:36" json:"shared_project_id,omitempty"`
	SharedUserID    *string   `gorm:"column:shared_user_id;size:36" json:"shared_user_id,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at;index" json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (GroupMessage) TableName() string { return "group_messages" }

func (m *GroupMessage) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	if m.Type == "" {
		m.Type = "text"
	}
	return nil
}
