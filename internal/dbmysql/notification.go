package dbmysql

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Notification struct {
	ID        string            `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID    string            `gorm:"column:user_id;size:36;not null;index:idx_notifications_user_read" json:"user_id"`
	ActorID   *string           `gorm:"column:actor_id;size:36" json:"actor_id,omitempty"`
	Type      string            `gorm:"column:type;size:30;not null" json:"type"`
	Content   string            `gorm:"column:content;type:text" json:"content"`
	Metadata  datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
	IsRead    bool              `gorm:"column:is_read;not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) BeforeCreate(*gorm.DB) error {
	assignID(&n.ID)
	return nil
}
