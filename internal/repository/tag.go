package repository

import (
	"context"
	"time"

	"forumhub/internal/database"
	"forumhub/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Tag, error)
	FindByName(ctx context.Context, name string) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type tagRepository struct {
	coll *mongo.Collection
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *mongo.Database) TagRepository {
	return &tagRepository{coll: db.Collection(database.CollectionTags)}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if tag.ID.IsZero() {
		tag.ID = bson.NewObjectID()
	}
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, tag)
	return translate(err)
}

func (r *tagRepository) GetByID(ctx context.Context, id bson.ObjectID) (*models.Tag, error) {
	var tag models.Tag
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&tag); err != nil {
		return nil, translate(err)
	}
	return &tag, nil
}

// FindByName looks a tag up ignoring case, using the same collation as the unique index.
func (r *tagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.coll.FindOne(ctx,
		bson.D{{Key: "name", Value: name}},
		options.FindOne().SetCollation(database.CaseInsensitive),
	).Decode(&tag)
	if err != nil {
		return nil, translate(err)
	}
	return &tag, nil
}

func (r *tagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetCollation(database.CaseInsensitive))
	if err != nil {
		return nil, err
	}
	return decodeAll[*models.Tag](ctx, cur)
}

func (r *tagRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tagRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.EstimatedDocumentCount(ctx)
}
