package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/FACorreiaa/devconnector-api/config"
)

// Collection names shared by the Mongo repositories.
const (
	UsersCollection    = "users"
	ProfilesCollection = "profiles"
	PostsCollection    = "posts"
)

var tUUID = reflect.TypeOf(uuid.UUID{})

// NewRegistry returns a BSON registry that stores uuid.UUID as binary
// subtype 4 instead of an array of 16 integers.
func NewRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(tUUID, bsoncodec.ValueEncoderFunc(encodeUUID))
	reg.RegisterTypeDecoder(tUUID, bsoncodec.ValueDecoderFunc(decodeUUID))
	return reg
}

func encodeUUID(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != tUUID {
		return bsoncodec.ValueEncoderError{Name: "uuidEncoder", Types: []reflect.Type{tUUID}, Received: val}
	}
	id := val.Interface().(uuid.UUID)
	return vw.WriteBinaryWithSubtype(id[:], bsontype.BinaryUUID)
}

func decodeUUID(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != tUUID {
		return bsoncodec.ValueDecoderError{Name: "uuidDecoder", Types: []reflect.Type{tUUID}, Received: val}
	}

	switch vr.Type() {
	case bsontype.Null:
		val.Set(reflect.ValueOf(uuid.Nil))
		return vr.ReadNull()
	case bsontype.Binary:
		data, subtype, err := vr.ReadBinary()
		if err != nil {
			return err
		}
		if subtype != bsontype.BinaryUUID && subtype != bsontype.BinaryUUIDOld {
			return fmt.Errorf("cannot decode binary subtype %#x into uuid.UUID", subtype)
		}
		id, err := uuid.FromBytes(data)
		if err != nil {
			return err
		}
		val.Set(reflect.ValueOf(id))
		return nil
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return err
		}
		val.Set(reflect.ValueOf(id))
		return nil
	default:
		return fmt.Errorf("cannot decode %v into uuid.UUID", vr.Type())
	}
}

// InitMongo connects to MongoDB and returns the configured database handle.
func InitMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	mcfg := cfg.Repositories.Mongo
	if mcfg.URI == "" || mcfg.DB == "" {
		errMsg := "Mongo configuration is missing or invalid"
		logger.Error(errMsg)
		return nil, nil, errors.New(errMsg)
	}

	opts := options.Client().
		ApplyURI(mcfg.URI).
		SetRegistry(NewRegistry())
	if mcfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(mcfg.ConnectTimeout)
	}

	logger.Info("Connecting to MongoDB...", slog.String("database", mcfg.DB))
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("Failed to create MongoDB client", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed connecting to mongo: %w", err)
	}
	return client, client.Database(mcfg.DB), nil
}

// WaitForMongo blocks until the primary answers a ping.
func WaitForMongo(ctx context.Context, client *mongo.Client, logger *slog.Logger) error {
	return waitFor(ctx, logger, "mongo", defaultRetries, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// indexes enforce one identity per email and one profile per identity.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *slog.Logger) error {
	desired := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		},
		ProfilesCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true).SetName("user_unique")},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetName("user_idx")},
			{Keys: bson.D{{Key: "date", Value: -1}}, Options: options.Index().SetName("date_desc")},
		},
	}

	var problems []string
	for coll, models := range desired {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			problems = append(problems, coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		logger.ErrorContext(ctx, "Failed to ensure MongoDB indexes", slog.Any("problems", problems))
		return errors.New(strings.Join(problems, "; "))
	}
	logger.InfoContext(ctx, "MongoDB indexes ensured")
	return nil
}
