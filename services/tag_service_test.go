package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/database/dbtest"
	"github.com/webmaek/aventus/errs"
)

func TestTagService(t *testing.T) {
	svc := NewTagService(database.New(dbtest.Open(t)))
	ctx := context.Background()

	empty, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.CreateOne(ctx, " web ")
	require.NoError(t, err)
	_, err = svc.CreateOne(ctx, "ai")
	require.NoError(t, err)

	_, err = svc.CreateOne(ctx, "web")
	assert.ErrorIs(t, err, errs.ErrConflict)

	tags, err := svc.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "ai", tags[0].Name)
	assert.Equal(t, "web", tags[1].Name)
}
