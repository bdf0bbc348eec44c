package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/database/dbtest"
	"github.com/webmaek/aventus/errs"
	"github.com/webmaek/aventus/models"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultFeedLimit, ClampLimit(0))
	assert.Equal(t, DefaultFeedLimit, ClampLimit(-3))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 25, ClampLimit(25))
	assert.Equal(t, MaxFeedLimit, ClampLimit(500))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "my-great-idea", Slugify("My Great Idea"))
	assert.Equal(t, "hello-world", Slugify("  Hello,  World! "))
}

func TestFeedPagination(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProjectService(database.New(db))
	ctx := context.Background()

	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	for i, s := range []string{"p1", "p2", "p3", "p4", "p5"} {
		dbtest.Project(t, db, owner, s, i)
	}

	page, err := svc.Feed(ctx, FeedQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Projects, 2)
	assert.Equal(t, "p5", page.Projects[0].Slug)
	assert.Equal(t, "p4", page.Projects[1].Slug)
	require.NotNil(t, page.NextCursor)

	var seen []string
	for _, p := range page.Projects {
		seen = append(seen, p.Slug)
	}
	for page.NextCursor != nil {
		page, err = svc.Feed(ctx, FeedQuery{Limit: 2, Cursor: *page.NextCursor})
		require.NoError(t, err)
		for _, p := range page.Projects {
			seen = append(seen, p.Slug)
		}
	}
	assert.Equal(t, []string{"p5", "p4", "p3", "p2", "p1"}, seen)

	empty, err := svc.Feed(ctx, FeedQuery{Cursor: uuid.NewString()})
	require.NoError(t, err)
	assert.Empty(t, empty.Projects)
	assert.Nil(t, empty.NextCursor)

	garbage, err := svc.Feed(ctx, FeedQuery{Cursor: "not-an-id"})
	require.NoError(t, err)
	assert.Empty(t, garbage.Projects)
}

func TestFeedPaginationWithTiedTimestamps(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProjectService(database.New(db))
	ctx := context.Background()

	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	for i := 0; i < 7; i++ {
		dbtest.Project(t, db, owner, fmt.Sprintf("tied-%d", i), 0)
	}

	seen := map[uuid.UUID]int{}
	pages := 0
	query := FeedQuery{Limit: 2}
	for {
		page, err := svc.Feed(ctx, query)
		require.NoError(t, err)
		pages++
		for _, p := range page.Projects {
			seen[p.ID]++
		}
		if page.NextCursor == nil {
			break
		}
		require.Less(t, pages, 10, "feed does not terminate")
		query.Cursor = *page.NextCursor
	}

	assert.Equal(t, 4, pages)
	assert.Len(t, seen, 7)
	for id, n := range seen {
		assert.Equal(t, 1, n, "project %s returned %d times", id, n)
	}
}

func TestFeedExactPageHasNoCursor(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProjectService(database.New(db))

	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	dbtest.Project(t, db, owner, "a", 1)
	dbtest.Project(t, db, owner, "b", 2)

	page, err := svc.Feed(context.Background(), FeedQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Projects, 2)
	assert.Nil(t, page.NextCursor)
}

func TestFindAllReturnsTotal(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProjectService(database.New(db))

	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	golang := dbtest.Tag(t, db, "go")
	dbtest.Project(t, db, owner, "a", 1, *golang)
	dbtest.Project(t, db, owner, "b", 2)
	dbtest.Project(t, db, owner, "c", 3, *golang)

	all, err := svc.FindAll(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all.Data, 3)
	assert.EqualValues(t, 3, all.Meta.Total)

	tagged, err := svc.FindAll(context.Background(), "go")
	require.NoError(t, err)
	assert.Len(t, tagged.Data, 2)
	assert.EqualValues(t, 2, tagged.Meta.Total)
}

func TestCreateOne(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProjectService(database.New(db))
	ctx := context.Background()

	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	golang := dbtest.Tag(t, db, "go")

	input := ProjectInput{
		Title:       "My Great Idea",
		Description: "A short pitch",
		Content:     "<p>Details</p>",
		Tags:        []uuid.UUID{golang.ID, uuid.New()},
	}
	project, err := svc.CreateOne(ctx, input, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "my-great-idea", project.Slug)
	assert.Equal(t, owner.ID, project.UserID)
	require.Len(t, project.Tags, 1)
	assert.Equal(t, "go", project.Tags[0].Name)
	require.NotNil(t, project.Count)

	_, err = svc.CreateOne(ctx, input, owner.ID)
	assert.ErrorIs(t, err, errs.ErrConflict)
	assert.Equal(t, 409, errs.StatusOf(err))

	_, err = svc.CreateOne(ctx, ProjectInput{Title: "!!!", Description: "d", Content: "c"}, owner.ID)
	assert.Equal(t, 400, errs.StatusOf(err))
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProjectService(database.New(db))
	ctx := context.Background()

	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	other := dbtest.User(t, db, "other@example.com", models.RoleUser)
	rust := dbtest.Tag(t, db, "rust")
	dbtest.Project(t, db, owner, "idea", 1)

	input := ProjectInput{Title: "Renamed", Description: "d", Content: "c", Tags: []uuid.UUID{rust.ID}}

	_, err := svc.UpdateOne(ctx, input, "idea", other.ID)
	assert.Equal(t, 403, errs.StatusOf(err))

	updated, err := svc.UpdateOne(ctx, input, "idea", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "idea", updated.Slug)
	require.Len(t, updated.Tags, 1)

	assert.Equal(t, 403, errs.StatusOf(svc.DeleteOne(ctx, "idea", other.ID)))
	require.NoError(t, svc.DeleteOne(ctx, "idea", owner.ID))
	assert.Equal(t, 404, errs.StatusOf(svc.DeleteOne(ctx, "idea", owner.ID)))

	_, err = svc.FindOne(ctx, "idea")
	assert.Equal(t, 404, errs.StatusOf(err))
}

func TestComments(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProjectService(database.New(db))
	ctx := context.Background()

	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	reader := dbtest.User(t, db, "reader@example.com", models.RoleUser)
	dbtest.Project(t, db, owner, "idea", 1)

	comment, err := svc.CreateComment(ctx, "Love it", reader.ID, "idea")
	require.NoError(t, err)
	require.NotNil(t, comment.User)

	_, err = svc.CreateComment(ctx, "Lost", reader.ID, "missing")
	assert.Equal(t, 404, errs.StatusOf(err))

	assert.Equal(t, 403, errs.StatusOf(svc.DeleteComment(ctx, "idea", comment.ID, owner.ID)))

	found, err := svc.FindOneComment(ctx, "idea", comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Love it", found.Content)

	edited, err := svc.UpdateComment(ctx, "Love it even more", "idea", comment.ID, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "Love it even more", edited.Content)

	list, err := svc.GetComments(ctx, "idea")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteComment(ctx, "idea", comment.ID, reader.ID))
	list, err = svc.GetComments(ctx, "idea")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLikeAndBookmarkToggle(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProjectService(database.New(db))
	ctx := context.Background()

	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	reader := dbtest.User(t, db, "reader@example.com", models.RoleUser)
	dbtest.Project(t, db, owner, "idea", 1)

	liked, err := svc.LikeProject(ctx, "idea", reader.ID)
	require.NoError(t, err)
	assert.True(t, liked.Active)

	stats, err := svc.GetProjectStats(ctx, "idea")
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Count.Likes)

	unliked, err := svc.LikeProject(ctx, "idea", reader.ID)
	require.NoError(t, err)
	assert.False(t, unliked.Active)
	assert.Equal(t, liked.Row.ID, unliked.Row.ID)

	stats, err = svc.GetProjectStats(ctx, "idea")
	require.NoError(t, err)
	assert.Zero(t, stats.Count.Likes)

	saved, err := svc.BookmarkProject(ctx, "idea", reader.ID)
	require.NoError(t, err)
	assert.True(t, saved.Active)

	bookmarked, err := svc.GetBookmarkedProjects(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, bookmarked, 1)
	assert.Equal(t, "idea", bookmarked[0].Slug)

	mine, err := svc.GetUsersProjects(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.LikeProject(ctx, "missing", reader.ID)
	assert.Equal(t, 404, errs.StatusOf(err))
}
