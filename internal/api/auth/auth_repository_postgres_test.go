package auth

import (
	"context"
	"errors"
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

func newPostgresRepo(t *testing.T) (*PostgresAuthRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewPostgresAuthRepo(mock, slog.Default()), mock
}

var userRowColumns = []string{"id", "name", "email", "avatar", "password_hash", "created_at"}

func TestPostgresAuthRepo_Create(t *testing.T) {
	ctx := context.Background()
	user := &types.UserAuth{
		ID:        uuid.New(),
		Name:      "Jane",
		Email:     "Jane@Example.com",
		Avatar:    "//avatar",
		Password:  "hash",
		CreatedAt: time.Now().UTC(),
	}

	t.Run("Success", func(t *testing.T) {
		repo, mock := newPostgresRepo(t)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO users \(id, name, email, avatar, password_hash, created_at\)`).
			WithArgs(user.ID, "Jane", "jane@example.com", "//avatar", "hash", user.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(ctx, user))
		assert.Equal(t, "jane@example.com", user.Email)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo, mock := newPostgresRepo(t)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, user)
		assert.ErrorIs(t, err, api.ErrEmailTaken)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OtherError", func(t *testing.T) {
		repo, mock := newPostgresRepo(t)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("boom"))

		err := repo.Create(ctx, user)
		require.Error(t, err)
		assert.False(t, errors.Is(err, api.ErrEmailTaken))
	})
}

func TestPostgresAuthRepo_GetByEmail(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	created := time.Now().UTC()

	t.Run("Found", func(t *testing.T) {
		repo, mock := newPostgresRepo(t)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, name, email, avatar, password_hash, created_at FROM users WHERE LOWER\(email\) = \$1`).
			WithArgs("jane@example.com").
			WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow(id, "Jane", "jane@example.com", "//avatar", "hash", created))

		user, err := repo.GetByEmail(ctx, "JANE@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "hash", user.Password)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newPostgresRepo(t)
		defer mock.Close()

		mock.ExpectQuery(`FROM users WHERE LOWER\(email\) = \$1`).
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, api.ErrNotFound)
		assert.Equal(t, "User not found.", api.MessageFor(err))
	})
}

func TestPostgresAuthRepo_GetByIDs(t *testing.T) {
	ctx := context.Background()
	repo, mock := newPostgresRepo(t)
	defer mock.Close()

	a, b := uuid.New(), uuid.New()
	mock.ExpectQuery(`FROM users WHERE id = ANY\(\$1\)`).
		WithArgs([]uuid.UUID{a, b}).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(a, "A", "a@example.com", "//a", "h", time.Now()))

	users, err := repo.GetByIDs(ctx, []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "A", users[a].Name)
	assert.Nil(t, users[b])

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAuthRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo, mock := newPostgresRepo(t)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(ctx, id))
	require.NoError(t, mock.ExpectationsWereMet())
}
