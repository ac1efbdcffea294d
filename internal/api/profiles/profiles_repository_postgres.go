package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

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

var _ ProfileRepo = (*PostgresProfileRepo)(nil)

// PostgresProfileRepo stores profiles as JSONB documents. The owner id is
// not part of the JSON rendering, so it lives only in the user_id column.
type PostgresProfileRepo struct {
	logger *slog.Logger
	pgpool database.PgxPool
}

func NewPostgresProfileRepo(pgpool database.PgxPool, logger *slog.Logger) *PostgresProfileRepo {
	return &PostgresProfileRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func pgSpan(ctx context.Context, name, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, semconv.DBSystemPostgreSQL, attribute.String("db.operation", op))
	return otel.Tracer("ProfileRepo").Start(ctx, name, trace.WithAttributes(attrs...))
}

func decodeProfile(userID uuid.UUID, doc []byte, version int64) (*types.Profile, error) {
	var profile types.Profile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile document: %w", err)
	}
	profile.UserID = userID
	profile.User = nil
	profile.Version = version
	return &profile, nil
}

// encodeProfile drops the populated owner so it is never persisted.
func encodeProfile(profile *types.Profile) ([]byte, error) {
	stored := *profile
	stored.User = nil
	doc, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return doc, nil
}

func (r *PostgresProfileRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	ctx, span := pgSpan(ctx, "GetByUser", "SELECT", attribute.String("user.id", userID.String()))
	defer span.End()

	var doc []byte
	var version int64
	err := r.pgpool.QueryRow(ctx, "SELECT doc, version FROM profiles WHERE user_id = $1", userID).Scan(&doc, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "profile not found")
			return nil, notFound(userID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	span.SetStatus(codes.Ok, "profile found")
	return decodeProfile(userID, doc, version)
}

func (r *PostgresProfileRepo) List(ctx context.Context) ([]*types.Profile, error) {
	ctx, span := pgSpan(ctx, "List", "SELECT")
	defer span.End()

	rows, err := r.pgpool.Query(ctx, "SELECT user_id, doc, version FROM profiles ORDER BY created_at ASC")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*types.Profile, 0)
	for rows.Next() {
		var userID uuid.UUID
		var doc []byte
		var version int64
		if err := rows.Scan(&userID, &doc, &version); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profile, err := decodeProfile(userID, doc, version)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	span.SetStatus(codes.Ok, "profiles listed")
	return profiles, nil
}

func (r *PostgresProfileRepo) Insert(ctx context.Context, profile *types.Profile) error {
	ctx, span := pgSpan(ctx, "Insert", "INSERT", attribute.String("user.id", profile.UserID.String()))
	defer span.End()

	doc, err := encodeProfile(profile)
	if err != nil {
		span.RecordError(err)
		return err
	}

	_, err = r.pgpool.Exec(ctx,
		"INSERT INTO profiles (id, user_id, doc, version, created_at) VALUES ($1, $2, $3, 1, $4)",
		profile.ID, profile.UserID, doc, profile.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			span.SetStatus(codes.Error, "profile exists")
			return api.ErrVersionConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	profile.Version = 1
	span.SetStatus(codes.Ok, "profile inserted")
	return nil
}

func (r *PostgresProfileRepo) Replace(ctx context.Context, profile *types.Profile) error {
	ctx, span := pgSpan(ctx, "Replace", "UPDATE",
		attribute.String("profile.id", profile.ID.String()),
		attribute.Int64("profile.version", profile.Version))
	defer span.End()

	doc, err := encodeProfile(profile)
	if err != nil {
		span.RecordError(err)
		return err
	}

	tag, err := r.pgpool.Exec(ctx,
		"UPDATE profiles SET doc = $3, version = version + 1 WHERE id = $1 AND version = $2",
		profile.ID, profile.Version, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "version conflict")
		return api.ErrVersionConflict
	}
	profile.Version++
	span.SetStatus(codes.Ok, "profile replaced")
	return nil
}

func (r *PostgresProfileRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	ctx, span := pgSpan(ctx, "DeleteByUser", "DELETE", attribute.String("user.id", userID.String()))
	defer span.End()

	if _, err := r.pgpool.Exec(ctx, "DELETE FROM profiles WHERE user_id = $1", userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	span.SetStatus(codes.Ok, "profile deleted")
	return nil
}
