package database

import (
	"context"
	"fmt"

	"forumhub/internal/middleware"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CaseInsensitive is the collation used for tag names.
var CaseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type indexSpec struct {
	collection string
	models     []mongo.IndexModel
	// required indexes back a uniqueness guarantee; failure to build them is fatal.
	required bool
}

func indexSpecs() []indexSpec {
	return []indexSpec{
		{
			collection: CollectionUsers,
			required:   true,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_unique").SetUnique(true)},
			},
		},
		{
			collection: CollectionTags,
			required:   true,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "name", Value: 1}},
					Options: options.Index().SetName("name_unique_ci").SetUnique(true).SetCollation(CaseInsensitive),
				},
			},
		},
		{
			collection: CollectionPosts,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("createdAt_desc")},
				{Keys: bson.D{{Key: "authorEmail", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("author_createdAt")},
				{Keys: bson.D{{Key: "tags", Value: 1}}, Options: options.Index().SetName("tags")},
			},
		},
		{
			collection: CollectionComments,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("post_createdAt")},
			},
		},
		{
			collection: CollectionReports,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "commentId", Value: 1}}, Options: options.Index().SetName("commentId")},
			},
		},
		{
			collection: CollectionAnnouncements,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("createdAt_desc")},
			},
		},
	}
}

// EnsureIndexes creates the indexes the repositories rely on. Unique indexes
// that cannot be built (for example over legacy duplicates) are reported as
// errors; lookup indexes only log a warning.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, spec := range indexSpecs() {
		_, err := db.Collection(spec.collection).Indexes().CreateMany(ctx, spec.models)
		if err == nil {
			continue
		}
		if spec.required {
			return fmt.Errorf("failed to create indexes on %s: %w", spec.collection, err)
		}
		middleware.Logger.WarnContext(ctx, "index creation failed",
			"collection", spec.collection, "error", err)
	}
	return nil
}
