package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/devconnector-api/app/db"
	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

var _ AuthRepo = (*MongoAuthRepo)(nil)

var errUserNotFound = api.WithMessage(api.ErrNotFound, "User not found.")

// AuthRepo is the credential store. Emails are stored lower-cased and are
// unique across identities.
type AuthRepo interface {
	// Create persists a new identity. Returns api.ErrEmailTaken when the
	// email is already registered.
	Create(ctx context.Context, user *types.UserAuth) error
	// GetByEmail returns api.ErrNotFound when no identity has the email.
	GetByEmail(ctx context.Context, email string) (*types.UserAuth, error)
	// GetByID returns api.ErrNotFound when the identity does not exist.
	GetByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error)
	// GetByIDs returns the identities found, keyed by id. Missing ids are
	// simply absent from the map.
	GetByIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*types.UserAuth, error)
	// Delete removes the identity. Deleting a missing identity is not an error.
	Delete(ctx context.Context, userID uuid.UUID) error
}

type MongoAuthRepo struct {
	logger *slog.Logger
	coll   *mongo.Collection
}

func NewMongoAuthRepo(db *mongo.Database, logger *slog.Logger) *MongoAuthRepo {
	return &MongoAuthRepo{
		logger: logger,
		coll:   db.Collection(database.UsersCollection),
	}
}

func (r *MongoAuthRepo) Create(ctx context.Context, user *types.UserAuth) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "Create", trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("user.id", user.ID.String()),
	))
	defer span.End()

	user.Email = strings.ToLower(user.Email)
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
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

func (r *MongoAuthRepo) GetByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetByEmail", trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
	))
	defer span.End()

	return r.findOne(ctx, span, bson.M{"email": strings.ToLower(email)})
}

func (r *MongoAuthRepo) GetByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetByID", trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	return r.findOne(ctx, span, bson.M{"_id": userID})
}

func (r *MongoAuthRepo) findOne(ctx context.Context, span trace.Span, filter bson.M) (*types.UserAuth, error) {
	var user types.UserAuth
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			span.SetStatus(codes.Error, "user not found")
			return nil, errUserNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	span.SetStatus(codes.Ok, "user found")
	return &user, nil
}

func (r *MongoAuthRepo) GetByIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetByIDs", trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.Int("ids.count", len(userIDs)),
	))
	defer span.End()

	users := make(map[uuid.UUID]*types.UserAuth, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u types.UserAuth
		if err := cur.Decode(&u); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users[u.ID] = &u
	}
	if err := cur.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	span.SetStatus(codes.Ok, "users found")
	return users, nil
}

func (r *MongoAuthRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete user: %w", err)
	}
	r.logger.DebugContext(ctx, "User delete finished",
		slog.String("userID", userID.String()), slog.Int64("deleted", res.DeletedCount))
	span.SetStatus(codes.Ok, "user deleted")
	return nil
}
