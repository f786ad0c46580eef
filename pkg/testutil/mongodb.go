package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	mongoclient "github.com/wms-platform/wave-planning-service/pkg/mongodb"
)

// StartMongoDB spins up a single-node replica set MongoDB container and
// returns a connected client. Transactions require the replica set. The
// container and client are cleaned up with the test.
func StartMongoDB(t *testing.T) *mongoclient.Client {
	t.Helper()

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	if err != nil {
		t.Fatalf("starting mongodb container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminating mongodb container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("resolving mongodb connection string: %v", err)
	}

	config := &mongoclient.Config{
		URI:            uri,
		Database:       "waves_test",
		ConnectTimeout: 20 * time.Second,
		MaxPoolSize:    10,
		MinPoolSize:    1,
	}
	client, err := mongoclient.NewClient(ctx, config)
	if err != nil {
		t.Fatalf("connecting to mongodb: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close(context.Background())
	})

	return client
}
