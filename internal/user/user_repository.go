package user

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"campusnet/internal/dbmysql"
)

//go:generate mockgen -destination=mock_user_repository.go -package=user campusnet/internal/user UserRepository

// UserRepository covers the profile reads the messaging core needs.
type UserRepository interface {
	CreateUser(ctx context.Context, user *dbmysql.User) error
	GetUserByID(ctx context.Context, userID string) (*dbmysql.User, error)
	GetUsersByIDs(ctx context.Context, userIDs []string) ([]*dbmysql.User, error)
	GetUserByEmail(ctx context.Context, email string) (*dbmysql.User, error)
	ListByCollege(ctx context.Context, college string) ([]*dbmysql.User, error)
	Search(ctx context.Context, q SearchQuery) ([]*dbmysql.User, error)
	UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *dbmysql.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*dbmysql.User, error) {
	var user dbmysql.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return &user, nil
}

func (r *userRepository) GetUsersByIDs(ctx context.Context, userIDs []string) ([]*dbmysql.User, error) {
	var users []*dbmysql.User
	if len(userIDs) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Order("name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*dbmysql.User, error) {
	var user dbmysql.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) ListByCollege(ctx context.Context, college string) ([]*dbmysql.User, error) {
	var users []*dbmysql.User
	err := r.db.WithContext(ctx).
		Where("college = ?", college).
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users for %s: %w", college, err)
	}
	return users, nil
}

// SearchQuery is a resolved people search. Zero fields are ignored.
type SearchQuery struct {
	Text    string
	College string
	Branch  string
	// BatchEnd matches one graduating year.
	BatchEnd int
	// GraduatedBefore and GraduatingFrom bound batch_end.
	GraduatedBefore int
	GraduatingFrom  int
	Limit           int
}

func (r *userRepository) Search(ctx context.Context, q SearchQuery) ([]*dbmysql.User, error) {
	db := r.db.WithContext(ctx)
	if text := strings.TrimSpace(q.Text); text != "" {
		pattern := dbmysql.ContainsPattern(text)
		db = db.Where("(LOWER(name) LIKE ? ESCAPE '"+dbmysql.LikeEscape+"' OR LOWER(email) LIKE ? ESCAPE '"+dbmysql.LikeEscape+"')", pattern, pattern)
	}
	if q.College != "" {
		db = db.Where("college = ?", q.College)
	}
	if q.Branch != "" {
		db = db.Where("branch = ?", q.Branch)
	}
	if q.BatchEnd > 0 {
		db = db.Where("batch_end = ?", q.BatchEnd)
	}
	if q.GraduatedBefore > 0 {
		db = db.Where("batch_end < ?", q.GraduatedBefore)
	}
	if q.GraduatingFrom > 0 {
		db = db.Where("batch_end >= ?", q.GraduatingFrom)
	}

	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	var users []*dbmysql.User
	if err := db.Order("name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

func (r *userRepository) UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&dbmysql.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update user %s: %w", userID, gorm.ErrRecordNotFound)
	}
	return nil
}
