package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campusnet/internal/dbmysql"
)

func Ptr[T any](v T) *T {
	return &v
}

// CreateUser inserts a user with the given id, name and college.
func CreateUser(t *testing.T, db *gorm.DB, id, name, college string) *dbmysql.User {
	t.Helper()
	u := &dbmysql.User{ID: id, Name: name, Email: id + "@campus.test", College: college}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreatePost(t *testing.T, db *gorm.DB, id, authorID, caption string) *dbmysql.Post {
	t.Helper()
	p := &dbmysql.Post{ID: id, UserID: authorID, Caption: Ptr(caption)}
	require.NoError(t, db.Create(p).Error)
	return p
}

func CreateProject(t *testing.T, db *gorm.DB, id, authorID, title string) *dbmysql.Project {
	t.Helper()
	p := &dbmysql.Project{ID: id, UserID: authorID, ProjectTitle: title}
	require.NoError(t, db.Create(p).Error)
	return p
}
