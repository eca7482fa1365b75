package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

// Like and Bookmark reference exactly one of post_id / project_id.
type Like struct {
	ID        string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID    string    `gorm:"column:user_id;size:36;not null;uniqueIndex:idx_likes_post_user;uniqueIndex:idx_likes_project_user" json:"user_id"`
	PostID    *string   `gorm:"column:post_id;size:36;uniqueIndex:idx_likes_post_user" json:"post_id,omitempty"`
	ProjectID *string   `gorm:"column:project_id;size:36;uniqueIndex:idx_likes_project_user" json:"project_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Like) TableName() string { return "likes" }

func (l *Like) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}

type Bookmark struct {
	ID        string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID    string    `gorm:"column:user_id;size:36;not null;uniqueIndex:idx_bookmarks_post_user;uniqueIndex:idx_bookmarks_project_user" json:"user_id"`
	PostID    *string   `gorm:"column:post_id;size:36;uniqueIndex:idx_bookmarks_post_user" json:"post_id,omitempty"`
	ProjectID *string   `gorm:"column:project_id;size:36;uniqueIndex:idx_bookmarks_project_user" json:"project_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Bookmark) TableName() string { return "bookmarks" }

func (b *Bookmark) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}

type Comment struct {
	ID        string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID    string    `gorm:"column:user_id;size:36;not null;index" json:"user_id"`
	PostID    *string   `gorm:"column:post_id;size:36;index" json:"post_id,omitempty"`
	ProjectID *string   `gorm:"column:project_id;size:36;index" json:"project_id,omitempty"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Comment) TableName() string { return "comments" }

func (c *Comment) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
