package groups

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"campusnet/internal/dbmysql"
)

//go:generate mockgen -destination=mock_repository.go -package=groups campusnet/internal/groups GroupRepository

type GroupRepository interface {
	// CreateWithMembers inserts the group and its initial memberships in one
	// transaction.
	CreateWithMembers(ctx context.Context, group *dbmysql.Group, members []*dbmysql.GroupMember) error
	ByID(ctx context.Context, groupID string) (*dbmysql.Group, error)
	Update(ctx context.Context, groupID string, fields map[string]interface{}) error
	// Delete removes the group with its memberships and messages.
	Delete(ctx context.Context, group *dbmysql.Group) error
	ListMyCollege(ctx context.Context, college string) ([]*dbmysql.Group, error)
	ListOtherColleges(ctx context.Context) ([]*dbmysql.Group, error)

	AddMember(ctx context.Context, member *dbmysql.GroupMember) error
	RemoveMember(ctx context.Context, groupID, userID string) (bool, error)
	Membership(ctx context.Context, groupID, userID string) (*dbmysql.GroupMember, error)
	Members(ctx context.Context, groupID string) ([]*dbmysql.GroupMember, error)
	SetRole(ctx context.Context, groupID, userID, role string) error
	CountAdmins(ctx context.Context, groupID string) (int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) CreateWithMembers(ctx context.Context, group *dbmysql.Group, members []*dbmysql.GroupMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		for _, m := range members {
			m.GroupID = group.ID
			if err := tx.Create(m).Error; err != nil {
				return fmt.Errorf("failed to add member %s: %w", m.UserID, err)
			}
		}
		return nil
	})
}

func (r *groupRepository) ByID(ctx context.Context, groupID string) (*dbmysql.Group, error) {
	var g dbmysql.Group
	if err := r.db.WithContext(ctx).Where("id = ?", groupID).First(&g).Error; err != nil {
		return nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}
	return &g, nil
}

func (r *groupRepository) Update(ctx context.Context, groupID string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&dbmysql.Group{}).Where("id = ?", groupID).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update group %s: %w", groupID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update group %s: %w", groupID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, group *dbmysql.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", group.ID).Delete(&dbmysql.GroupMessage{}).Error; err != nil {
			return fmt.Errorf("failed to delete group messages: %w", err)
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&dbmysql.GroupMember{}).Error; err != nil {
			return fmt.Errorf("failed to delete group members: %w", err)
		}
		if err := tx.Delete(group).Error; err != nil {
			return fmt.Errorf("failed to delete group %s: %w", group.ID, err)
		}
		return nil
	})
}

func (r *groupRepository) ListMyCollege(ctx context.Context, college string) ([]*dbmysql.Group, error) {
	var groups []*dbmysql.Group
	err := r.db.WithContext(ctx).
		Where("type = ? AND college = ?", dbmysql.GroupTypeMyCollege, college).
		Order("created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list college groups: %w", err)
	}
	return groups, nil
}

func (r *groupRepository) ListOtherColleges(ctx context.Context) ([]*dbmysql.Group, error) {
	var groups []*dbmysql.Group
	err := r.db.WithContext(ctx).
		Where("type = ?", dbmysql.GroupTypeOtherColleges).
		Order("created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cross-college groups: %w", err)
	}
	return groups, nil
}

func (r *groupRepository) AddMember(ctx context.Context, member *dbmysql.GroupMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("failed to add member %s: %w", member.UserID, err)
	}
	return nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID string) (bool, error) {
	var m dbmysql.GroupMember
	err := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find membership: %w", err)
	}
	if err := r.db.WithContext(ctx).Delete(&m).Error; err != nil {
		return false, fmt.Errorf("failed to remove member %s: %w", userID, err)
	}
	return true, nil
}

func (r *groupRepository) Membership(ctx context.Context, groupID, userID string) (*dbmysql.GroupMember, error) {
	var m dbmysql.GroupMember
	err := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&m).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &m, nil
}

func (r *groupRepository) Members(ctx context.Context, groupID string) ([]*dbmysql.GroupMember, error) {
	var members []*dbmysql.GroupMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (r *groupRepository) SetRole(ctx context.Context, groupID, userID, role string) error {
	res := r.db.WithContext(ctx).
		Model(&dbmysql.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("failed to set role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to set role: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *groupRepository) CountAdmins(ctx context.Context, groupID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.GroupMember{}).
		Where("group_id = ? AND role = ?", groupID, dbmysql.RoleAdmin).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}
