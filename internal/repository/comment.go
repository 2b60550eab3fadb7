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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID bson.ObjectID) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID bson.ObjectID) (int64, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type commentRepository struct {
	coll *mongo.Collection
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *mongo.Database) CommentRepository {
	return &commentRepository{coll: db.Collection(database.CollectionComments)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = bson.NewObjectID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, comment)
	return translate(err)
}

func (r *commentRepository) GetByID(ctx context.Context, id bson.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&comment); err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID bson.ObjectID) ([]*models.Comment, error) {
	cur, err := r.coll.Find(ctx, bson.D{{Key: "postId", Value: postID}}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	return decodeAll[*models.Comment](ctx, cur)
}

func (r *commentRepository) CountByPost(ctx context.Context, postID bson.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{{Key: "postId", Value: postID}})
}

func (r *commentRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.EstimatedDocumentCount(ctx)
}
