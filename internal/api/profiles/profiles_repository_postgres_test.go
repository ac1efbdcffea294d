package profiles

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

func newPostgresRepo(t *testing.T) (*PostgresProfileRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewPostgresProfileRepo(mock, slog.Default()), mock
}

func sampleProfile() *types.Profile {
	return &types.Profile{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Status:     "Developer",
		Skills:     []string{"go", "sql"},
		Experience: []types.Experience{},
		Education:  []types.Education{},
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestPostgresProfileRepo_GetByUser(t *testing.T) {
	ctx := context.Background()
	profile := sampleProfile()
	doc, err := json.Marshal(profile)
	require.NoError(t, err)

	t.Run("RestoresOwner", func(t *testing.T) {
		repo, mock := newPostgresRepo(t)
		defer mock.Close()

		mock.ExpectQuery(`SELECT doc, version FROM profiles WHERE user_id = \$1`).
			WithArgs(profile.UserID).
			WillReturnRows(pgxmock.NewRows([]string{"doc", "version"}).AddRow(doc, int64(3)))

		got, err := repo.GetByUser(ctx, profile.UserID)
		require.NoError(t, err)
		assert.Equal(t, profile.ID, got.ID)
		assert.Equal(t, profile.UserID, got.UserID)
		assert.Equal(t, []string{"go", "sql"}, got.Skills)
		assert.Equal(t, int64(3), got.Version)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newPostgresRepo(t)
		defer mock.Close()

		mock.ExpectQuery(`SELECT doc, version FROM profiles WHERE user_id = \$1`).
			WithArgs(profile.UserID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByUser(ctx, profile.UserID)
		assert.ErrorIs(t, err, api.ErrNotFound)
	})
}

func TestPostgresProfileRepo_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("Created", func(t *testing.T) {
		repo, mock := newPostgresRepo(t)
		defer mock.Close()
		profile := sampleProfile()
		profile.User = &types.UserSummary{ID: profile.UserID, Name: "Jane"}

		mock.ExpectExec(`INSERT INTO profiles \(id, user_id, doc, version, created_at\) VALUES \(\$1, \$2, \$3, 1, \$4\)`).
			WithArgs(profile.ID, profile.UserID, pgxmock.AnyArg(), profile.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Insert(ctx, profile))
		assert.Equal(t, int64(1), profile.Version)
		assert.NotNil(t, profile.User)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OwnerAlreadyHasProfile", func(t *testing.T) {
		repo, mock := newPostgresRepo(t)
		defer mock.Close()
		profile := sampleProfile()

		mock.ExpectExec(`INSERT INTO profiles`).
			WithArgs(profile.ID, profile.UserID, pgxmock.AnyArg(), profile.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		assert.ErrorIs(t, repo.Insert(ctx, profile), api.ErrVersionConflict)
	})
}

func TestPostgresProfileRepo_Replace(t *testing.T) {
	ctx := context.Background()
	repo, mock := newPostgresRepo(t)
	defer mock.Close()
	profile := sampleProfile()
	profile.Version = 5

	mock.ExpectExec(`UPDATE profiles SET doc = \$3, version = version \+ 1 WHERE id = \$1 AND version = \$2`).
		WithArgs(profile.ID, int64(5), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`UPDATE profiles SET doc`).
		WithArgs(profile.ID, int64(5), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.ErrorIs(t, repo.Replace(ctx, profile), api.ErrVersionConflict)
	assert.Equal(t, int64(5), profile.Version)
	require.NoError(t, repo.Replace(ctx, profile))
	assert.Equal(t, int64(6), profile.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfileRepo_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo, mock := newPostgresRepo(t)
	defer mock.Close()

	first, second := sampleProfile(), sampleProfile()
	firstDoc, _ := json.Marshal(first)
	secondDoc, _ := json.Marshal(second)

	mock.ExpectQuery(`SELECT user_id, doc, version FROM profiles ORDER BY created_at ASC`).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "doc", "version"}).
			AddRow(first.UserID, firstDoc, int64(1)).
			AddRow(second.UserID, secondDoc, int64(2)))
	mock.ExpectExec(`DELETE FROM profiles WHERE user_id = \$1`).
		WithArgs(first.UserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	profiles, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, first.UserID, profiles[0].UserID)
	assert.Equal(t, second.UserID, profiles[1].UserID)

	require.NoError(t, repo.DeleteByUser(ctx, first.UserID))
	require.NoError(t, mock.ExpectationsWereMet())
}
