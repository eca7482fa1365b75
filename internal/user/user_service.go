package user

import (
	"context"
	"strings"
	"time"

	"campusnet/internal/common"
	"campusnet/internal/dbmysql"
)

const (
	VerificationVerified      = "verified"
	VerificationLimitedAccess = "limited_access"
	VerificationPending       = "pending"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dbmysql.User, error)
	GetProfiles(ctx context.Context, userIDs []string) ([]*dbmysql.User, error)
	Me(ctx context.Context) (*dbmysql.User, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*dbmysql.User, error)
	SetVerificationStatus(ctx context.Context, userID, status string) error
	Classmates(ctx context.Context) ([]*dbmysql.User, error)
	Search(ctx context.Context, filter SearchFilter) ([]*dbmysql.User, error)
}

// ProfileUpdate carries the editable profile fields; nil leaves a field alone.
type ProfileUpdate struct {
	Name         *string `json:"name,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	Branch       *string `json:"branch,omitempty"`
	Campus       *string `json:"campus,omitempty"`
	ProfilePhoto *string `json:"profile_photo,omitempty"`
	BatchEnd     *int    `json:"batch_end,omitempty"`
}

func (u ProfileUpdate) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Name != nil {
		fields["name"] = strings.TrimSpace(*u.Name)
	}
	if u.Bio != nil {
		fields["bio"] = *u.Bio
	}
	if u.Branch != nil {
		fields["branch"] = *u.Branch
	}
	if u.Campus != nil {
		fields["campus"] = *u.Campus
	}
	if u.ProfilePhoto != nil {
		fields["profile_photo"] = *u.ProfilePhoto
	}
	if u.BatchEnd != nil {
		fields["batch_end"] = *u.BatchEnd
	}
	return fields
}

type userService struct {
	userRepo UserRepository
	identity common.Identity
	now      func() time.Time
}

func NewUserService(userRepo UserRepository, identity common.Identity) UserService {
	return &userService{userRepo: userRepo, identity: identity, now: time.Now}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dbmysql.User, error) {
	const op = "user.profile"
	if userID == "" {
		return nil, common.Errorf(common.KindValidationFailed, op, "user id is required")
	}
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, common.StoreError(op, err)
	}
	return u, nil
}

func (s *userService) GetProfiles(ctx context.Context, userIDs []string) ([]*dbmysql.User, error) {
	users, err := s.userRepo.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, common.StoreError("user.profiles", err)
	}
	return users, nil
}

func (s *userService) Me(ctx context.Context) (*dbmysql.User, error) {
	viewer, err := common.RequireViewer(ctx, s.identity, "user.me")
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, viewer)
}

func (s *userService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*dbmysql.User, error) {
	const op = "user.update_profile"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return nil, err
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, common.Errorf(common.KindValidationFailed, op, "name cannot be empty")
	}
	if update.BatchEnd != nil && (*update.BatchEnd < 1950 || *update.BatchEnd > 2100) {
		return nil, common.Errorf(common.KindValidationFailed, op, "batch end year %d out of range", *update.BatchEnd)
	}

	fields := update.fields()
	if len(fields) == 0 {
		return s.GetProfile(ctx, viewer)
	}
	if err := s.userRepo.UpdateFields(ctx, viewer, fields); err != nil {
		return nil, common.StoreError(op, err)
	}
	return s.GetProfile(ctx, viewer)
}

func (s *userService) SetVerificationStatus(ctx context.Context, userID, status string) error {
	const op = "user.verification_status"
	switch status {
	case VerificationVerified, VerificationLimitedAccess, VerificationPending:
	default:
		return common.Errorf(common.KindValidationFailed, op, "unknown verification status %q", status)
	}
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"verification_status": status}); err != nil {
		return common.StoreError(op, err)
	}
	return nil
}

// Classmates lists users sharing the viewer's college.
func (s *userService) Classmates(ctx context.Context) ([]*dbmysql.User, error) {
	const op = "user.classmates"
	me, err := s.Me(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListByCollege(ctx, me.College)
	if err != nil {
		return nil, common.StoreError(op, err)
	}
	out := users[:0]
	for _, u := range users {
		if u.ID != me.ID {
			out = append(out, u)
		}
	}
	return out, nil
}

const (
	RoleAll     = "all"
	RoleStudent = "student"
	RoleAlumni  = "alumni"

	searchLimit = 50
	anyValue    = "All"
)

// SearchFilter is the people directory query. Role splits students from
// alumni by whether their batch has ended; "All" in College or Branch means
// no filter.
type SearchFilter struct {
	Text     string `json:"search,omitempty"`
	Role     string `json:"role,omitempty"`
	College  string `json:"college,omitempty"`
	Branch   string `json:"branch,omitempty"`
	BatchEnd int    `json:"batch,omitempty"`
}

func pick(s string) string {
	s = strings.TrimSpace(s)
	if s == anyValue {
		return ""
	}
	return s
}

// Search lists up to 50 matching users ordered by name. Signed-in users only.
func (s *userService) Search(ctx context.Context, filter SearchFilter) ([]*dbmysql.User, error) {
	const op = "user.search"
	if _, err := common.RequireViewer(ctx, s.identity, op); err != nil {
		return nil, err
	}
	q := SearchQuery{
		Text:     filter.Text,
		College:  pick(filter.College),
		Branch:   pick(filter.Branch),
		BatchEnd: filter.BatchEnd,
		Limit:    searchLimit,
	}
	year := s.now().Year()
	switch filter.Role {
	case "", RoleAll:
	case RoleStudent:
		q.GraduatingFrom = year
	case RoleAlumni:
		q.GraduatedBefore = year
	default:
		return nil, common.Errorf(common.KindValidationFailed, op, "unknown role %q", filter.Role)
	}
	if filter.BatchEnd < 0 {
		return nil, common.Errorf(common.KindValidationFailed, op, "batch year %d out of range", filter.BatchEnd)
	}

	users, err := s.userRepo.Search(ctx, q)
	if err != nil {
		return nil, common.StoreError(op, err)
	}
	return users, nil
}
