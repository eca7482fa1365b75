package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

const (
	GroupTypeMyCollege     = "my-college"
	GroupTypeOtherColleges = "other-colleges"

	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Group struct {
	ID          string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	Name        string    `gorm:"column:name;size:120;not null" json:"name"`
	Description *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	Type        string    `gorm:"column:type;size:20;index;not null" json:"type"`
	College     *string   `gorm:"column:college;size:255;index" json:"college,omitempty"`
	CreatedBy   string    `gorm:"column:created_by;size:36" json:"created_by"`
	ImageURL    *string   `gorm:"column:image_url;size:512" json:"image_url,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Group) TableName() string { return "groups" }

func (g *Group) BeforeCreate(*gorm.DB) error {
	assignID(&g.ID)
	return nil
}

type GroupMember struct {
	ID       string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	GroupID  string    `gorm:"column:group_id;size:36;not null;uniqueIndex:idx_group_members_group_user" json:"group_id"`
	UserID   string    `gorm:"column:user_id;size:36;not null;uniqueIndex:idx_group_members_group_user;index" json:"user_id"`
	Role     string    `gorm:"column:role;size:10;not null;default:member" json:"role"`
	JoinedAt time.Time `gorm:"column:joined_at;autoCreateTime" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (GroupMember) TableName() string { return "group_members" }

func (m *GroupMember) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}
