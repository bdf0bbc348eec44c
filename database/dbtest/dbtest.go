// Package dbtest opens throwaway SQLite databases with the production schema
// and seeds rows for tests in other packages.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/models"
)

// Base is the creation time of the first seeded project. Later projects are
// spaced a minute apart so ordering by created_at is deterministic.
var Base = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// Open returns a migrated in-memory database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg := database.GormConfig()
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return db
}

// User inserts a user with the given email and role.
func User(t testing.TB, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Email:    email,
		Password: "unused",
		Name:     email,
		Avatar:   "https://example.com/" + email + ".png",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Tag inserts a tag.
func Tag(t testing.TB, db *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// Project inserts a project owned by owner, created n minutes after Base.
func Project(t testing.TB, db *gorm.DB, owner *models.User, slug string, n int, tags ...models.Tag) *models.Project {
	t.Helper()
	project := &models.Project{
		Slug:        slug,
		Title:       slug,
		Description: "description of " + slug,
		Content:     "<p>" + slug + "</p>",
		UserID:      owner.ID,
		CreatedAt:   Base.Add(time.Duration(n) * time.Minute),
		Tags:        tags,
	}
	require.NoError(t, db.Omit("Tags.*", "User").Create(project).Error)
	return project
}

// Comment inserts a comment by author on project, created n minutes after Base.
func Comment(t testing.TB, db *gorm.DB, project *models.Project, author *models.User, content string, n int) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		Content:   content,
		ProjectID: project.ID,
		UserID:    author.ID,
		CreatedAt: Base.Add(time.Duration(n) * time.Minute),
	}
	require.NoError(t, db.Omit("User").Create(comment).Error)
	return comment
}
