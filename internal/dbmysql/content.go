package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID        string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID    string    `gorm:"column:user_id;size:36;index;not null" json:"user_id"`
	Caption   *string   `gorm:"column:caption;type:text" json:"caption,omitempty"`
	MediaURL  *string   `gorm:"column:media_url;size:512" json:"media_url,omitempty"`
	Branch    *string   `gorm:"column:branch;size:120" json:"branch,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

type Project struct {
	ID           string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID       string    `gorm:"column:user_id;size:36;index;not null" json:"user_id"`
	ProjectTitle string    `gorm:"column:project_title;size:255;not null" json:"project_title"`
	Description  *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	ZipFileURL   *string   `gorm:"column:zip_file_url;size:512" json:"zip_file_url,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

type Story struct {
	ID        string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID    string    `gorm:"column:user_id;size:36;index;not null" json:"user_id"`
	MediaURL  string    `gorm:"column:media_url;size:512;not null" json:"media_url"`
	MediaType string    `gorm:"column:media_type;size:20;default:image" json:"media_type"`
	ExpiresAt time.Time `gorm:"column:expires_at;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Story) TableName() string { return "stories" }

func (s *Story) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
