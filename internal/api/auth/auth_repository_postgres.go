package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/devconnector-api/app/db"
	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

const userColumns = "id, name, email, avatar, password_hash, created_at"

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool database.PgxPool
}

func NewPostgresAuthRepo(pgpool database.PgxPool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAuthRepo) Create(ctx context.Context, user *types.UserAuth) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("user.id", user.ID.String()),
	))
	defer span.End()

	user.Email = strings.ToLower(user.Email)
	_, err := r.pgpool.Exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
		user.ID, user.Name, user.Email, user.Avatar, user.Password, user.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			span.SetStatus(codes.Error, "email taken")
			return api.ErrEmailTaken
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("failed to insert user: %w", err)
	}
	span.SetStatus(codes.Ok, "user created")
	return nil
}

func (r *PostgresAuthRepo) GetByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()

	row := r.pgpool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE LOWER(email) = $1",
		strings.ToLower(email))
	return scanUser(span, row)
}

func (r *PostgresAuthRepo) GetByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	row := r.pgpool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID)
	return scanUser(span, row)
}

func scanUser(span trace.Span, row pgx.Row) (*types.UserAuth, error) {
	var u types.UserAuth
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.Password, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "user not found")
			return nil, errUserNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	span.SetStatus(codes.Ok, "user found")
	return &u, nil
}

func (r *PostgresAuthRepo) GetByIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetByIDs", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.Int("ids.count", len(userIDs)),
	))
	defer span.End()

	users := make(map[uuid.UUID]*types.UserAuth, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}

	rows, err := r.pgpool.Query(ctx, "SELECT "+userColumns+" FROM users WHERE id = ANY($1)", userIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u types.UserAuth
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.Password, &u.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[u.ID] = &u
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	span.SetStatus(codes.Ok, "users found")
	return users, nil
}

func (r *PostgresAuthRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete user: %w", err)
	}
	r.logger.DebugContext(ctx, "User delete finished",
		slog.String("userID", userID.String()), slog.Int64("deleted", tag.RowsAffected()))
	span.SetStatus(codes.Ok, "user deleted")
	return nil
}
