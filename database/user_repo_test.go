package database_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/database/dbtest"
	"github.com/webmaek/aventus/errs"
	"github.com/webmaek/aventus/models"
)

func TestUserRepoCreateDuplicateEmail(t *testing.T) {
	db := dbtest.Open(t)
	repo := database.NewUserRepo(db)
	ctx := context.Background()

	first := &models.User{Email: "dup@example.com", Password: "x", Name: "First", Avatar: "a"}
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, models.RoleUser, first.Role)
	assert.NotEqual(t, uuid.Nil, first.ID)

	err := repo.Create(ctx, &models.User{Email: "dup@example.com", Password: "x", Name: "Second", Avatar: "a"})
	require.Error(t, err)
	assert.True(t, errs.IsConflict(errs.NewDatabaseError("create", "user", err)))

	found, err := repo.FindByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepoUpdateProfile(t *testing.T) {
	db := dbtest.Open(t)
	repo := database.NewUserRepo(db)
	ctx := context.Background()

	user := dbtest.User(t, db, "me@example.com", models.RoleUser)
	bio := "Builds things"
	name := "Renamed"

	updated, err := repo.UpdateProfile(ctx, user.ID, database.ProfileFields{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "Builds things", *updated.Bio)
	assert.Nil(t, updated.Location)

	_, err = repo.UpdateProfile(ctx, uuid.New(), database.ProfileFields{Name: &name})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, repo.SetAvatar(ctx, user.ID, "https://cdn.example.com/a.png"))
	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", found.Avatar)
}

func TestUserRepoDeleteCascades(t *testing.T) {
	db := dbtest.Open(t)
	repo := database.NewUserRepo(db)
	ctx := context.Background()

	leaving := dbtest.User(t, db, "leaving@example.com", models.RoleUser)
	staying := dbtest.User(t, db, "staying@example.com", models.RoleUser)
	tag := dbtest.Tag(t, db, "go")
	theirs := dbtest.Project(t, db, leaving, "theirs", 1, *tag)
	ours := dbtest.Project(t, db, staying, "ours", 2)
	dbtest.Comment(t, db, theirs, staying, "on their project", 3)
	dbtest.Comment(t, db, ours, leaving, "on our project", 4)
	dbtest.Comment(t, db, ours, staying, "kept", 5)
	_, _, err := database.NewLikeRepo(db).Toggle(ctx, "ours", leaving.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, leaving.ID))

	var projects, comments, likes, links int64
	require.NoError(t, db.Model(&models.Project{}).Count(&projects).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	require.NoError(t, db.Table("project_tags").Count(&links).Error)
	assert.EqualValues(t, 1, projects)
	assert.EqualValues(t, 1, comments)
	assert.Zero(t, likes)
	assert.Zero(t, links)

	err = repo.Delete(ctx, leaving.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTagRepo(t *testing.T) {
	db := dbtest.Open(t)
	repo := database.NewTagRepo(db)
	ctx := context.Background()

	rust := dbtest.Tag(t, db, "rust")
	golang := dbtest.Tag(t, db, "go")

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "go", all[0].Name)

	found, err := repo.FindByIDs(ctx, []uuid.UUID{rust.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, rust.ID, found[0].ID)

	none, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	err = repo.Create(ctx, &models.Tag{Name: golang.Name})
	assert.True(t, errs.IsConflict(errs.NewDatabaseError("create", "tag", err)))
}
