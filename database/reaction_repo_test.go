package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/database/dbtest"
	"github.com/webmaek/aventus/errs"
	"github.com/webmaek/aventus/models"
)

func TestLikeToggleRoundTrip(t *testing.T) {
	db := dbtest.Open(t)
	repo := database.NewLikeRepo(db)
	ctx := context.Background()

	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	reader := dbtest.User(t, db, "reader@example.com", models.RoleUser)
	project := dbtest.Project(t, db, owner, "idea", 1)

	like, active, err := repo.Toggle(ctx, "idea", reader.ID)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, project.ID, like.ProjectID)
	assert.Equal(t, reader.ID, like.UserID)

	var count int64
	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	removed, active, err := repo.Toggle(ctx, "idea", reader.ID)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, like.ID, removed.ID)

	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBookmarkToggleIsPerUser(t *testing.T) {
	db := dbtest.Open(t)
	repo := database.NewBookmarkRepo(db)
	ctx := context.Background()

	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	reader := dbtest.User(t, db, "reader@example.com", models.RoleUser)
	dbtest.Project(t, db, owner, "idea", 1)

	_, active, err := repo.Toggle(ctx, "idea", owner.ID)
	require.NoError(t, err)
	assert.True(t, active)

	_, active, err = repo.Toggle(ctx, "idea", reader.ID)
	require.NoError(t, err)
	assert.True(t, active)

	var count int64
	require.NoError(t, db.Model(&models.Bookmark{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestToggleMissingProject(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	user := dbtest.User(t, db, "user@example.com", models.RoleUser)

	_, _, err := database.NewLikeRepo(db).Toggle(ctx, "missing", user.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, _, err = database.NewBookmarkRepo(db).Toggle(ctx, "missing", user.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
