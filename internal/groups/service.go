// Package groups manages group chats and their memberships.
package groups

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campusnet/internal/common"
	"campusnet/internal/dbmysql"
	"campusnet/internal/logging"
	"campusnet/internal/querycache"
)

// UserLookup resolves the profile a group operation depends on.
type UserLookup interface {
	GetProfile(ctx context.Context, userID string) (*dbmysql.User, error)
}

type CreateInput struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Type        string   `json:"type"`
	ImageURL    *string  `json:"image_url,omitempty"`
	MemberIDs   []string `json:"member_ids,omitempty"`
}

type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// Listing splits the groups a viewer can browse by audience.
type Listing struct {
	MyCollege     []*dbmysql.Group `json:"my_college"`
	OtherColleges []*dbmysql.Group `json:"other_colleges"`
}

type Service struct {
	repo     GroupRepository
	users    UserLookup
	identity common.Identity
	cache    *querycache.Cache
	log      *zap.Logger
}

func NewService(repo GroupRepository, users UserLookup, identity common.Identity, cache *querycache.Cache, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		identity: identity,
		cache:    cache,
		log:      logging.OrNop(log),
	}
}

func listingsPrefix() querycache.Key {
	return querycache.NewKey("groups")
}

// Create stores the group with the creator as admin and the selected users
// as members. A my-college group is scoped to the creator's college.
func (s *Service) Create(ctx context.Context, in CreateInput) (*dbmysql.Group, error) {
	const op = "groups.create"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, common.Errorf(common.KindValidationFailed, op, "group name is required")
	}
	if in.Type != dbmysql.GroupTypeMyCollege && in.Type != dbmysql.GroupTypeOtherColleges {
		return nil, common.Errorf(common.KindValidationFailed, op, "unknown group type %q", in.Type)
	}

	group := &dbmysql.Group{
		Name:        name,
		Description: in.Description,
		Type:        in.Type,
		CreatedBy:   viewer,
		ImageURL:    in.ImageURL,
	}
	if in.Type == dbmysql.GroupTypeMyCollege {
		creator, err := s.users.GetProfile(ctx, viewer)
		if err != nil {
			return nil, common.StoreError(op, err)
		}
		group.College = &creator.College
	}

	members := []*dbmysql.GroupMember{{UserID: viewer, Role: dbmysql.RoleAdmin}}
	seen := map[string]bool{viewer: true}
	for _, id := range in.MemberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, &dbmysql.GroupMember{UserID: id, Role: dbmysql.RoleMember})
	}

	if err := s.repo.CreateWithMembers(ctx, group, members); err != nil {
		return nil, common.StoreError(op, err)
	}
	s.cache.Invalidate(listingsPrefix())
	s.log.Info("group created",
		zap.String("group_id", group.ID),
		zap.String("type", group.Type),
		zap.Int("members", len(members)))
	return group, nil
}

func (s *Service) ListForViewer(ctx context.Context) (*Listing, error) {
	const op = "groups.list"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return nil, err
	}
	return querycache.Fetch(ctx, s.cache, querycache.GroupsKey(viewer), func(ctx context.Context) (*Listing, error) {
		me, err := s.users.GetProfile(ctx, viewer)
		if err != nil {
			return nil, common.StoreError(op, err)
		}
		mine, err := s.repo.ListMyCollege(ctx, me.College)
		if err != nil {
			return nil, common.StoreError(op, err)
		}
		others, err := s.repo.ListOtherColleges(ctx)
		if err != nil {
			return nil, common.StoreError(op, err)
		}
		return &Listing{MyCollege: mine, OtherColleges: others}, nil
	})
}

func (s *Service) Get(ctx context.Context, groupID string) (*dbmysql.Group, error) {
	g, err := s.repo.ByID(ctx, groupID)
	if err != nil {
		return nil, common.StoreError("groups.get", err)
	}
	return g, nil
}

// Role returns the user's role in the group, or "" when they are not a member.
func (s *Service) Role(ctx context.Context, groupID, userID string) (string, error) {
	m, err := s.repo.Membership(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", common.StoreError("groups.role", err)
	}
	return m.Role, nil
}

func (s *Service) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	role, err := s.Role(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	return role != "", nil
}

// Members lists the group's members. Only members may see the roster.
func (s *Service) Members(ctx context.Context, groupID string) ([]*dbmysql.GroupMember, error) {
	const op = "groups.members"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return nil, err
	}
	ok, err := s.IsMember(ctx, groupID, viewer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.Errorf(common.KindForbidden, op, "not a member of group %s", groupID)
	}
	members, err := s.repo.Members(ctx, groupID)
	if err != nil {
		return nil, common.StoreError(op, err)
	}
	return members, nil
}

// requireAdmin loads the group and checks the viewer administers it.
func (s *Service) requireAdmin(ctx context.Context, op, groupID string) (string, *dbmysql.Group, error) {
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return "", nil, err
	}
	group, err := s.repo.ByID(ctx, groupID)
	if err != nil {
		return "", nil, common.StoreError(op, err)
	}
	role, err := s.Role(ctx, groupID, viewer)
	if err != nil {
		return "", nil, err
	}
	if role != dbmysql.RoleAdmin {
		return "", nil, common.Errorf(common.KindForbidden, op, "only group admins may do this")
	}
	return viewer, group, nil
}

func (s *Service) AddMember(ctx context.Context, groupID, userID string) error {
	const op = "groups.add_member"
	if _, _, err := s.requireAdmin(ctx, op, groupID); err != nil {
		return err
	}
	if userID == "" {
		return common.Errorf(common.KindValidationFailed, op, "user id is required")
	}
	role, err := s.Role(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if role != "" {
		return common.Errorf(common.KindValidationFailed, op, "user %s is already a member", userID)
	}
	if _, err := s.users.GetProfile(ctx, userID); err != nil {
		return common.StoreError(op, err)
	}
	if err := s.repo.AddMember(ctx, &dbmysql.GroupMember{GroupID: groupID, UserID: userID, Role: dbmysql.RoleMember}); err != nil {
		return common.StoreError(op, err)
	}
	return nil
}

func (s *Service) RemoveMember(ctx context.Context, groupID, userID string) error {
	const op = "groups.remove_member"
	viewer, _, err := s.requireAdmin(ctx, op, groupID)
	if err != nil {
		return err
	}
	if userID == viewer {
		return s.Leave(ctx, groupID)
	}
	return s.remove(ctx, op, groupID, userID)
}

// Leave drops the viewer's own membership. The last admin cannot leave while
// other members remain.
func (s *Service) Leave(ctx context.Context, groupID string) error {
	const op = "groups.leave"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return err
	}
	role, err := s.Role(ctx, groupID, viewer)
	if err != nil {
		return err
	}
	if role == "" {
		return common.Errorf(common.KindNotFound, op, "not a member of group %s", groupID)
	}
	if role == dbmysql.RoleAdmin {
		admins, err := s.repo.CountAdmins(ctx, groupID)
		if err != nil {
			return common.StoreError(op, err)
		}
		members, err := s.repo.Members(ctx, groupID)
		if err != nil {
			return common.StoreError(op, err)
		}
		if admins == 1 && len(members) > 1 {
			return common.Errorf(common.KindValidationFailed, op, "promote another admin before leaving")
		}
	}
	return s.remove(ctx, op, groupID, viewer)
}

func (s *Service) remove(ctx context.Context, op, groupID, userID string) error {
	removed, err := s.repo.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return common.StoreError(op, err)
	}
	if !removed {
		return common.Errorf(common.KindNotFound, op, "user %s is not a member", userID)
	}
	return nil
}

func (s *Service) SetRole(ctx context.Context, groupID, userID, role string) error {
	const op = "groups.set_role"
	if role != dbmysql.RoleAdmin && role != dbmysql.RoleMember {
		return common.Errorf(common.KindValidationFailed, op, "unknown role %q", role)
	}
	viewer, _, err := s.requireAdmin(ctx, op, groupID)
	if err != nil {
		return err
	}
	if viewer == userID && role == dbmysql.RoleMember {
		admins, err := s.repo.CountAdmins(ctx, groupID)
		if err != nil {
			return common.StoreError(op, err)
		}
		if admins == 1 {
			return common.Errorf(common.KindValidationFailed, op, "a group needs at least one admin")
		}
	}
	if err := s.repo.SetRole(ctx, groupID, userID, role); err != nil {
		return common.StoreError(op, err)
	}
	return nil
}

func (s *Service) Update(ctx context.Context, groupID string, in UpdateInput) (*dbmysql.Group, error) {
	const op = "groups.update"
	if _, _, err := s.requireAdmin(ctx, op, groupID); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, common.Errorf(common.KindValidationFailed, op, "group name cannot be empty")
		}
		fields["name"] = name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, groupID, fields); err != nil {
			return nil, common.StoreError(op, err)
		}
		s.cache.Invalidate(listingsPrefix())
	}
	return s.Get(ctx, groupID)
}

func (s *Service) Delete(ctx context.Context, groupID string) error {
	const op = "groups.delete"
	_, group, err := s.requireAdmin(ctx, op, groupID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, group); err != nil {
		return common.StoreError(op, err)
	}
	s.cache.Invalidate(listingsPrefix())
	s.cache.Invalidate(querycache.GroupChatKey(groupID))
	s.log.Info("group deleted", zap.String("group_id", groupID))
	return nil
}
