package posts

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

var _ PostRepo = (*PostgresPostRepo)(nil)

// PostgresPostRepo keeps each post as a JSONB document next to the columns
// used for filtering, ordering and optimistic versioning.
type PostgresPostRepo struct {
	logger *slog.Logger
	pgpool database.PgxPool
}

func NewPostgresPostRepo(pgpool database.PgxPool, logger *slog.Logger) *PostgresPostRepo {
	return &PostgresPostRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func pgSpan(ctx context.Context, name, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, semconv.DBSystemPostgreSQL, attribute.String("db.operation", op))
	return otel.Tracer("PostRepo").Start(ctx, name, trace.WithAttributes(attrs...))
}

func decodePost(doc []byte, version int64) (*types.Post, error) {
	var post types.Post
	if err := json.Unmarshal(doc, &post); err != nil {
		return nil, fmt.Errorf("failed to decode post document: %w", err)
	}
	post.Version = version
	return &post, nil
}

func (r *PostgresPostRepo) Insert(ctx context.Context, post *types.Post) error {
	ctx, span := pgSpan(ctx, "Insert", "INSERT", attribute.String("post.id", post.ID.String()))
	defer span.End()

	doc, err := json.Marshal(post)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to encode post: %w", err)
	}

	_, err = r.pgpool.Exec(ctx,
		"INSERT INTO posts (id, user_id, doc, version, created_at) VALUES ($1, $2, $3, 1, $4)",
		post.ID, post.UserID, doc, post.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("failed to insert post: %w", err)
	}
	post.Version = 1
	span.SetStatus(codes.Ok, "post inserted")
	return nil
}

func (r *PostgresPostRepo) Get(ctx context.Context, postID uuid.UUID) (*types.Post, error) {
	ctx, span := pgSpan(ctx, "Get", "SELECT", attribute.String("post.id", postID.String()))
	defer span.End()

	var doc []byte
	var version int64
	err := r.pgpool.QueryRow(ctx, "SELECT doc, version FROM posts WHERE id = $1", postID).Scan(&doc, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "post not found")
			return nil, notFound(postID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to query post: %w", err)
	}
	span.SetStatus(codes.Ok, "post found")
	return decodePost(doc, version)
}

func (r *PostgresPostRepo) List(ctx context.Context) ([]*types.Post, error) {
	ctx, span := pgSpan(ctx, "List", "SELECT")
	defer span.End()

	rows, err := r.pgpool.Query(ctx, "SELECT doc, version FROM posts ORDER BY created_at DESC")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*types.Post, 0)
	for rows.Next() {
		var doc []byte
		var version int64
		if err := rows.Scan(&doc, &version); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post, err := decodePost(doc, version)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	span.SetStatus(codes.Ok, "posts listed")
	return posts, nil
}

func (r *PostgresPostRepo) Replace(ctx context.Context, post *types.Post) error {
	ctx, span := pgSpan(ctx, "Replace", "UPDATE",
		attribute.String("post.id", post.ID.String()),
		attribute.Int64("post.version", post.Version))
	defer span.End()

	doc, err := json.Marshal(post)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to encode post: %w", err)
	}

	tag, err := r.pgpool.Exec(ctx,
		"UPDATE posts SET doc = $3, version = version + 1 WHERE id = $1 AND version = $2",
		post.ID, post.Version, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return fmt.Errorf("failed to replace post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "version conflict")
		return api.ErrVersionConflict
	}
	post.Version++
	span.SetStatus(codes.Ok, "post replaced")
	return nil
}

func (r *PostgresPostRepo) Delete(ctx context.Context, postID uuid.UUID) error {
	ctx, span := pgSpan(ctx, "Delete", "DELETE", attribute.String("post.id", postID.String()))
	defer span.End()

	if _, err := r.pgpool.Exec(ctx, "DELETE FROM posts WHERE id = $1", postID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete post: %w", err)
	}
	span.SetStatus(codes.Ok, "post deleted")
	return nil
}

func (r *PostgresPostRepo) CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	ctx, span := pgSpan(ctx, "CountByOwner", "SELECT", attribute.String("user.id", userID.String()))
	defer span.End()

	var n int64
	if err := r.pgpool.QueryRow(ctx, "SELECT COUNT(*) FROM posts WHERE user_id = $1", userID).Scan(&n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	span.SetStatus(codes.Ok, "posts counted")
	return n, nil
}

func (r *PostgresPostRepo) DeleteByOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	ctx, span := pgSpan(ctx, "DeleteByOwner", "DELETE", attribute.String("user.id", userID.String()))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, "DELETE FROM posts WHERE user_id = $1", userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return 0, fmt.Errorf("failed to delete posts: %w", err)
	}
	r.logger.DebugContext(ctx, "Deleted posts by owner",
		slog.String("userID", userID.String()), slog.Int64("deleted", tag.RowsAffected()))
	span.SetStatus(codes.Ok, "posts deleted")
	return tag.RowsAffected(), nil
}
