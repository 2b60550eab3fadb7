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

// AnnouncementRepository defines the interface for announcement data operations
type AnnouncementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error
	List(ctx context.Context) ([]*models.Announcement, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

type announcementRepository struct {
	coll *mongo.Collection
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(db *mongo.Database) AnnouncementRepository {
	return &announcementRepository{coll: db.Collection(database.CollectionAnnouncements)}
}

func (r *announcementRepository) Create(ctx context.Context, a *models.Announcement) error {
	if a.ID.IsZero() {
		a.ID = bson.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, a)
	return translate(err)
}

func (r *announcementRepository) List(ctx context.Context) ([]*models.Announcement, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	return decodeAll[*models.Announcement](ctx, cur)
}

func (r *announcementRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}

func (r *announcementRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
