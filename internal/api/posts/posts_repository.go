package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/devconnector-api/app/db"
	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

var _ PostRepo = (*MongoPostRepo)(nil)

// PostRepo persists Post aggregates. A post is always written whole.
type PostRepo interface {
	// Insert stores a new post at version 1.
	Insert(ctx context.Context, post *types.Post) error
	// Get returns api.ErrNotFound when the post does not exist.
	Get(ctx context.Context, postID uuid.UUID) (*types.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]*types.Post, error)
	// Replace writes post only if the stored version still equals
	// post.Version, then bumps post.Version. A lost race, including the
	// post having been deleted, yields api.ErrVersionConflict.
	Replace(ctx context.Context, post *types.Post) error
	// Delete removes the post. Deleting a missing post is not an error.
	Delete(ctx context.Context, postID uuid.UUID) error
	// CountByOwner returns the number of posts authored by userID.
	CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error)
	// DeleteByOwner removes every post authored by userID.
	DeleteByOwner(ctx context.Context, userID uuid.UUID) (int64, error)
}

type MongoPostRepo struct {
	logger *slog.Logger
	coll   *mongo.Collection
}

func NewMongoPostRepo(db *mongo.Database, logger *slog.Logger) *MongoPostRepo {
	return &MongoPostRepo{
		logger: logger,
		coll:   db.Collection(database.PostsCollection),
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system", "mongodb"), attribute.String("db.collection", database.PostsCollection))
	return otel.Tracer("PostRepo").Start(ctx, name, trace.WithAttributes(attrs...))
}

func (r *MongoPostRepo) Insert(ctx context.Context, post *types.Post) error {
	ctx, span := startSpan(ctx, "Insert", attribute.String("post.id", post.ID.String()))
	defer span.End()

	post.Version = 1
	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("failed to insert post: %w", err)
	}
	span.SetStatus(codes.Ok, "post inserted")
	return nil
}

func (r *MongoPostRepo) Get(ctx context.Context, postID uuid.UUID) (*types.Post, error) {
	ctx, span := startSpan(ctx, "Get", attribute.String("post.id", postID.String()))
	defer span.End()

	var post types.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": postID}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			span.SetStatus(codes.Error, "post not found")
			return nil, notFound(postID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	span.SetStatus(codes.Ok, "post found")
	return &post, nil
}

func (r *MongoPostRepo) List(ctx context.Context) ([]*types.Post, error) {
	ctx, span := startSpan(ctx, "List")
	defer span.End()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cur.Close(ctx)

	posts := make([]*types.Post, 0)
	if err := cur.All(ctx, &posts); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	span.SetAttributes(attribute.Int("posts.count", len(posts)))
	span.SetStatus(codes.Ok, "posts listed")
	return posts, nil
}

func (r *MongoPostRepo) Replace(ctx context.Context, post *types.Post) error {
	ctx, span := startSpan(ctx, "Replace",
		attribute.String("post.id", post.ID.String()),
		attribute.Int64("post.version", post.Version))
	defer span.End()

	next := *post
	next.Version = post.Version + 1
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": post.ID, "version": post.Version}, &next)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace failed")
		return fmt.Errorf("failed to replace post: %w", err)
	}
	if res.MatchedCount == 0 {
		span.SetStatus(codes.Error, "version conflict")
		return api.ErrVersionConflict
	}
	post.Version = next.Version
	span.SetStatus(codes.Ok, "post replaced")
	return nil
}

func (r *MongoPostRepo) Delete(ctx context.Context, postID uuid.UUID) error {
	ctx, span := startSpan(ctx, "Delete", attribute.String("post.id", postID.String()))
	defer span.End()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": postID}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete post: %w", err)
	}
	span.SetStatus(codes.Ok, "post deleted")
	return nil
}

func (r *MongoPostRepo) CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	ctx, span := startSpan(ctx, "CountByOwner", attribute.String("user.id", userID.String()))
	defer span.End()

	n, err := r.coll.CountDocuments(ctx, bson.M{"user": userID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	span.SetStatus(codes.Ok, "posts counted")
	return n, nil
}

func (r *MongoPostRepo) DeleteByOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	ctx, span := startSpan(ctx, "DeleteByOwner", attribute.String("user.id", userID.String()))
	defer span.End()

	res, err := r.coll.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return 0, fmt.Errorf("failed to delete posts: %w", err)
	}
	r.logger.DebugContext(ctx, "Deleted posts by owner",
		slog.String("userID", userID.String()), slog.Int64("deleted", res.DeletedCount))
	span.SetStatus(codes.Ok, "posts deleted")
	return res.DeletedCount, nil
}

func notFound(postID uuid.UUID) error {
	return api.WithMessage(api.ErrNotFound, "Not found post with id of %s.", postID)
}
