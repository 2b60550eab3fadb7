// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"forumhub/internal/observability"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
	// ErrCounterUnderflow is returned when a vote delta would take a counter below zero.
	ErrCounterUnderflow = errors.New("counter would go below zero")
)

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// ciContains matches values containing s, ignoring case.
func ciContains(s string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// ciExact matches values equal to s, ignoring case.
func ciExact(s string) bson.Regex {
	return bson.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

func startSpan(ctx context.Context, collection, method string) (context.Context, trace.Span) {
	return observability.StartRepositorySpan(ctx, collection, method)
}

func endSpan(span trace.Span, err error) {
	observability.EndSpan(span, err)
}

// decodeAll drains cur into a non-nil slice.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
