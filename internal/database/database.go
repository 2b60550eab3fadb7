// Package database manages the MongoDB connection and index bootstrap.
package database

import (
	"context"
	"fmt"
	"time"

	"forumhub/internal/config"
	"forumhub/internal/middleware"
	"forumhub/internal/observability"

	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names.
const (
	CollectionPosts         = "posts"
	CollectionUsers         = "users"
	CollectionComments      = "comments"
	CollectionReports       = "reports"
	CollectionAnnouncements = "announcements"
	CollectionTags          = "tags"
)

const connectTimeout = 10 * time.Second

// Connect opens a client against the configured deployment, verifies it with a
// ping and returns the application database.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI()).
		SetServerSelectionTimeout(connectTimeout).
		SetMonitor(CommandMonitor())

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	middleware.Logger.Info("Database connected successfully", "database", cfg.DBName)
	return client.Database(cfg.DBName), nil
}

// Ping checks that the deployment behind db is reachable.
func Ping(ctx context.Context, db *mongo.Database) error {
	return db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the client that owns db.
func Close(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}

// CommandMonitor feeds command latency into the Prometheus histogram.
func CommandMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			observability.ObserveCommand(e.CommandName, false, e.Duration)
		},
		Failed: func(ctx context.Context, e *event.CommandFailedEvent) {
			observability.ObserveCommand(e.CommandName, true, e.Duration)
			middleware.Logger.DebugContext(ctx, "mongo command failed",
				"command", e.CommandName, "error", e.Failure)
		},
	}
}
