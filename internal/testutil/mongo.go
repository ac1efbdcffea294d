// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	database "github.com/FACorreiaa/devconnector-api/app/db"
)

// MongoDB connects to MONGO_TEST_URI and returns a throwaway database with
// the application indexes in place. The test is skipped when the variable
// is unset.
func MongoDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetRegistry(database.NewRegistry()))
	require.NoError(t, err)

	db := client.Database("devconnector_test_" + uuid.NewString()[:8])
	require.NoError(t, database.EnsureIndexes(ctx, db, slog.Default()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}
