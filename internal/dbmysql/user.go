package dbmysql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

type User struct {
	ID                 string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	Name               string    `gorm:"column:name;size:120;not null" json:"name"`
	Email              string    `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	ProfilePhoto       *string   `gorm:"column:profile_photo;size:512" json:"profile_photo,omitempty"`
	College            string    `gorm:"column:college;size:255;index" json:"college"`
	Campus             *string   `gorm:"column:campus;size:255" json:"campus,omitempty"`
	Branch             *string   `gorm:"column:branch;size:120" json:"branch,omitempty"`
	BatchEnd           *int      `gorm:"column:batch_end" json:"batch_end,omitempty"`
	Bio                *string   `gorm:"column:bio;type:text" json:"bio,omitempty"`
	UserType           string    `gorm:"column:user_type;size:20;default:student" json:"user_type"`
	VerificationStatus string    `gorm:"column:verification_status;size:20;default:pending" json:"verification_status"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
