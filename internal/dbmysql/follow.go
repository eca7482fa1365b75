package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

type Follow struct {
	ID          string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	FollowerID  string    `gorm:"column:follower_id;size:36;not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID string    `gorm:"column:following_id;size:36;not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Follow) TableName() string { return "follows" }

func (f *Follow) BeforeCreate(*gorm.DB) error {
	assignID(&f.ID)
	return nil
}
