package profiles

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

var _ ProfileRepo = (*MongoProfileRepo)(nil)

// ProfileRepo persists Profile aggregates keyed by their owner.
type ProfileRepo interface {
	// GetByUser returns api.ErrNotFound when userID has no profile.
	GetByUser(ctx context.Context, userID uuid.UUID) (*types.Profile, error)
	// List returns every profile, oldest first.
	List(ctx context.Context) ([]*types.Profile, error)
	// Insert stores a new profile at version 1. A second profile for the
	// same owner yields api.ErrVersionConflict so callers reload and update.
	Insert(ctx context.Context, profile *types.Profile) error
	// Replace writes profile only if the stored version still equals
	// profile.Version, then bumps profile.Version.
	Replace(ctx context.Context, profile *types.Profile) error
	// DeleteByUser removes the owner's profile. Missing profiles are not an error.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type MongoProfileRepo struct {
	logger *slog.Logger
	coll   *mongo.Collection
}

func NewMongoProfileRepo(db *mongo.Database, logger *slog.Logger) *MongoProfileRepo {
	return &MongoProfileRepo{
		logger: logger,
		coll:   db.Collection(database.ProfilesCollection),
	}
}

func mongoSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system", "mongodb"), attribute.String("db.collection", database.ProfilesCollection))
	return otel.Tracer("ProfileRepo").Start(ctx, name, trace.WithAttributes(attrs...))
}

func (r *MongoProfileRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	ctx, span := mongoSpan(ctx, "GetByUser", attribute.String("user.id", userID.String()))
	defer span.End()

	var profile types.Profile
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			span.SetStatus(codes.Error, "profile not found")
			return nil, notFound(userID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	span.SetStatus(codes.Ok, "profile found")
	return &profile, nil
}

func (r *MongoProfileRepo) List(ctx context.Context) ([]*types.Profile, error) {
	ctx, span := mongoSpan(ctx, "List")
	defer span.End()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer cur.Close(ctx)

	profiles := make([]*types.Profile, 0)
	if err := cur.All(ctx, &profiles); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	span.SetAttributes(attribute.Int("profiles.count", len(profiles)))
	span.SetStatus(codes.Ok, "profiles listed")
	return profiles, nil
}

func (r *MongoProfileRepo) Insert(ctx context.Context, profile *types.Profile) error {
	ctx, span := mongoSpan(ctx, "Insert", attribute.String("user.id", profile.UserID.String()))
	defer span.End()

	profile.Version = 1
	if _, err := r.coll.InsertOne(ctx, profile); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			span.SetStatus(codes.Error, "profile exists")
			return api.ErrVersionConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	span.SetStatus(codes.Ok, "profile inserted")
	return nil
}

func (r *MongoProfileRepo) Replace(ctx context.Context, profile *types.Profile) error {
	ctx, span := mongoSpan(ctx, "Replace",
		attribute.String("profile.id", profile.ID.String()),
		attribute.Int64("profile.version", profile.Version))
	defer span.End()

	next := *profile
	next.Version = profile.Version + 1
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": profile.ID, "version": profile.Version}, &next)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace failed")
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	if res.MatchedCount == 0 {
		span.SetStatus(codes.Error, "version conflict")
		return api.ErrVersionConflict
	}
	profile.Version = next.Version
	span.SetStatus(codes.Ok, "profile replaced")
	return nil
}

func (r *MongoProfileRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	ctx, span := mongoSpan(ctx, "DeleteByUser", attribute.String("user.id", userID.String()))
	defer span.End()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	span.SetStatus(codes.Ok, "profile deleted")
	return nil
}

func notFound(userID uuid.UUID) error {
	return api.WithMessage(api.ErrNotFound, "Not found profile with id of %s", userID)
}
