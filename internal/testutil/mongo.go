//go:build integration

// Package testutil starts throwaway infrastructure for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoImage is the server image used by integration tests.
const MongoImage = "mongo:7"

// DockerAvailable reports whether a Docker daemon answers.
func DockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// StartMongo runs a MongoDB container and returns a database handle on it
// together with a cleanup func that disconnects and terminates the container.
func StartMongo(ctx context.Context, dbName string) (*mongo.Database, func(), error) {
	container, err := tcmongo.Run(ctx, MongoImage)
	if err != nil {
		return nil, nil, fmt.Errorf("start mongo container: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, nil, fmt.Errorf("mongo connection string: %w", err)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	cleanup := func() {
		_ = client.Disconnect(context.Background())
		_ = testcontainers.TerminateContainer(container)
	}
	return client.Database(dbName), cleanup, nil
}
