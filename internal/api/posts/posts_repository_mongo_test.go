package posts

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/testutil"
)

func TestMongoPostRepo(t *testing.T) {
	db := testutil.MongoDB(t)
	repo := NewMongoPostRepo(db, slog.Default())
	ctx := context.Background()

	older := samplePost()
	older.CreatedAt = time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)
	newer := samplePost()
	newer.UserID = older.UserID
	newer.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Insert(ctx, older))
	require.NoError(t, repo.Insert(ctx, newer))

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)

	t.Run("OptimisticReplace", func(t *testing.T) {
		first, err := repo.Get(ctx, older.ID)
		require.NoError(t, err)
		second, err := repo.Get(ctx, older.ID)
		require.NoError(t, err)

		first.AddLike(uuid.New())
		require.NoError(t, repo.Replace(ctx, first))
		assert.Equal(t, int64(2), first.Version)

		second.AddLike(uuid.New())
		assert.ErrorIs(t, repo.Replace(ctx, second), api.ErrVersionConflict)

		stored, err := repo.Get(ctx, older.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Likes, 1)
		assert.Equal(t, first.Likes[0].UserID, stored.Likes[0].UserID)
	})

	t.Run("Owner", func(t *testing.T) {
		n, err := repo.CountByOwner(ctx, older.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = repo.DeleteByOwner(ctx, older.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, err = repo.Get(ctx, older.ID)
		assert.ErrorIs(t, err, api.ErrNotFound)
		require.NoError(t, repo.Delete(ctx, older.ID))
	})
}
