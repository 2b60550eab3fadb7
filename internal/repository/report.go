package repository

import (
	"context"
	"time"

	"forumhub/internal/database"
	"forumhub/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ReportRepository defines the interface for comment report operations
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	Delete(ctx context.Context, id bson.ObjectID) error
	DeleteByComment(ctx context.Context, commentID bson.ObjectID) (int64, error)
	ListEnriched(ctx context.Context) ([]models.ReportedComment, error)
	Count(ctx context.Context) (int64, error)
}

type reportRepository struct {
	coll *mongo.Collection
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *mongo.Database) ReportRepository {
	return &reportRepository{coll: db.Collection(database.CollectionReports)}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID.IsZero() {
		report.ID = bson.NewObjectID()
	}
	if report.ReportedAt.IsZero() {
		report.ReportedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, report)
	return translate(err)
}

func (r *reportRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *reportRepository) DeleteByComment(ctx context.Context, commentID bson.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "commentId", Value: commentID}})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

func lookupOne(from, localField, foreignField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: foreignField},
		{Key: "as", Value: as},
	}}}
}

func unwind(path string, keepEmpty bool) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$" + path},
		{Key: "preserveNullAndEmptyArrays", Value: keepEmpty},
	}}}
}

// ListEnriched joins each report with its comment, the comment's author and
// the reporter. Reports whose comment no longer exists are dropped.
func (r *reportRepository) ListEnriched(ctx context.Context) (out []models.ReportedComment, err error) {
	ctx, span := startSpan(ctx, database.CollectionReports, "ListEnriched")
	defer func() { endSpan(span, err) }()

	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		lookupOne(database.CollectionComments, "commentId", "_id", "comment"),
		unwind("comment", false),
		lookupOne(database.CollectionUsers, "comment.authorEmail", "email", "author"),
		unwind("author", true),
		lookupOne(database.CollectionUsers, "reporterEmail", "email", "reporterUser"),
		unwind("reporterUser", true),
		{{Key: "$sort", Value: bson.D{{Key: "reportedAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "commentId", Value: 1},
			{Key: "feedback", Value: 1},
			{Key: "reportedAt", Value: 1},
			{Key: "postId", Value: "$comment.postId"},
			{Key: "commentText", Value: "$comment.text"},
			{Key: "commentAuthor", Value: bson.D{
				{Key: "name", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$author.name", "$comment.authorName"}}}},
				{Key: "email", Value: "$comment.authorEmail"},
				{Key: "photoURL", Value: "$author.photoURL"},
			}},
			{Key: "reporter", Value: bson.D{
				{Key: "name", Value: "$reporterUser.name"},
				{Key: "email", Value: "$reporterEmail"},
				{Key: "photoURL", Value: "$reporterUser.photoURL"},
			}},
		}}},
	})
	if err != nil {
		return nil, err
	}
	return decodeAll[models.ReportedComment](ctx, cur)
}

func (r *reportRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.EstimatedDocumentCount(ctx)
}
