package repository

import (
	"context"
	"errors"
	"time"

	"forumhub/internal/database"
	"forumhub/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// PostView names a fixed-size highlight listing.
type PostView string

const (
	ViewFeatured PostView = "featured"
	ViewRecent   PostView = "recent"
	ViewTrending PostView = "trending"
	ViewPopular  PostView = "popular"
)

// PostListOptions selects one page of posts.
type PostListOptions struct {
	Sort  string
	Skip  int64
	Limit int64
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Post, error)
	List(ctx context.Context, opts PostListOptions) ([]*models.Post, int64, error)
	ListByAuthor(ctx context.Context, email string, skip, limit int64) ([]*models.Post, int64, error)
	CountByAuthor(ctx context.Context, email string) (int64, error)
	SearchByTag(ctx context.Context, tag string) ([]*models.Post, error)
	Top(ctx context.Context, view PostView, n int64) ([]*models.Post, error)
	ApplyVote(ctx context.Context, id bson.ObjectID, delta models.VoteDelta) (*models.Post, error)
	SetFeatured(ctx context.Context, id bson.ObjectID, featured bool) (*models.Post, error)
	PushComment(ctx context.Context, id bson.ObjectID, text string) error
	Comments(ctx context.Context, id bson.ObjectID) ([]string, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	DistinctTags(ctx context.Context) ([]string, error)
	CountByTag(ctx context.Context, name string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	coll *mongo.Collection
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *mongo.Database) PostRepository {
	return &postRepository{coll: db.Collection(database.CollectionPosts)}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// voteDifferenceStage adds upVote - downVote, treating missing counters as zero.
var voteDifferenceStage = bson.D{{Key: "$addFields", Value: bson.D{{
	Key: "voteDifference",
	Value: bson.D{{Key: "$subtract", Value: bson.A{
		bson.D{{Key: "$ifNull", Value: bson.A{"$upVote", 0}}},
		bson.D{{Key: "$ifNull", Value: bson.A{"$downVote", 0}}},
	}}},
}}}}

var byPopularity = bson.D{{Key: "$sort", Value: bson.D{
	{Key: "voteDifference", Value: -1},
	{Key: "createdAt", Value: -1},
	{Key: "_id", Value: -1},
}}}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	_, err := r.coll.InsertOne(ctx, post)
	return translate(err)
}

func (r *postRepository) GetByID(ctx context.Context, id bson.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, opts PostListOptions) (posts []*models.Post, total int64, err error) {
	ctx, span := startSpan(ctx, database.CollectionPosts, "List")
	defer func() { endSpan(span, err) }()

	total, err = r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, err
	}

	var cur *mongo.Cursor
	if opts.Sort == models.SortPopularity {
		cur, err = r.coll.Aggregate(ctx, mongo.Pipeline{
			voteDifferenceStage,
			byPopularity,
			{{Key: "$skip", Value: opts.Skip}},
			{{Key: "$limit", Value: opts.Limit}},
		})
	} else {
		cur, err = r.coll.Find(ctx, bson.D{}, options.Find().
			SetSort(newestFirst).
			SetSkip(opts.Skip).
			SetLimit(opts.Limit))
	}
	if err != nil {
		return nil, 0, err
	}
	posts, err = decodeAll[*models.Post](ctx, cur)
	return posts, total, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, email string, skip, limit int64) ([]*models.Post, int64, error) {
	filter := bson.D{{Key: "authorEmail", Value: email}}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst).SetSkip(skip).SetLimit(limit))
	if err != nil {
		return nil, 0, err
	}
	posts, err := decodeAll[*models.Post](ctx, cur)
	return posts, total, err
}

func (r *postRepository) CountByAuthor(ctx context.Context, email string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{{Key: "authorEmail", Value: email}})
}

func (r *postRepository) SearchByTag(ctx context.Context, tag string) ([]*models.Post, error) {
	cur, err := r.coll.Find(ctx, bson.D{{Key: "tags", Value: ciContains(tag)}}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	return decodeAll[*models.Post](ctx, cur)
}

func (r *postRepository) Top(ctx context.Context, view PostView, n int64) ([]*models.Post, error) {
	var (
		cur *mongo.Cursor
		err error
	)
	switch view {
	case ViewPopular:
		cur, err = r.coll.Aggregate(ctx, mongo.Pipeline{
			voteDifferenceStage,
			byPopularity,
			{{Key: "$limit", Value: n}},
		})
	case ViewTrending:
		cur, err = r.coll.Find(ctx, bson.D{}, options.Find().SetLimit(n).SetSort(bson.D{
			{Key: "upVote", Value: -1},
			{Key: "totalLiked", Value: -1},
			{Key: "createdAt", Value: -1},
		}))
	case ViewFeatured:
		cur, err = r.coll.Find(ctx, bson.D{}, options.Find().SetLimit(n).SetSort(bson.D{
			{Key: "featured", Value: -1},
			{Key: "createdAt", Value: -1},
		}))
	default:
		cur, err = r.coll.Find(ctx, bson.D{}, options.Find().SetLimit(n).SetSort(newestFirst))
	}
	if err != nil {
		return nil, err
	}
	return decodeAll[*models.Post](ctx, cur)
}

// ApplyVote adds delta to the post's counters in one conditional update and
// returns the updated post. Negative components only match when the counter is
// large enough, so counters never drop below zero.
func (r *postRepository) ApplyVote(ctx context.Context, id bson.ObjectID, delta models.VoteDelta) (post *models.Post, err error) {
	ctx, span := startSpan(ctx, database.CollectionPosts, "ApplyVote")
	defer func() { endSpan(span, err) }()

	if delta.IsZero() {
		return r.GetByID(ctx, id)
	}

	filter := bson.D{{Key: "_id", Value: id}}
	inc := bson.D{}
	for _, c := range []struct {
		field string
		value int64
	}{
		{"upVote", delta.UpVote},
		{"downVote", delta.DownVote},
		{"totalLiked", delta.TotalLiked},
	} {
		if c.value == 0 {
			continue
		}
		inc = append(inc, bson.E{Key: c.field, Value: c.value})
		if c.value < 0 {
			filter = append(filter, bson.E{Key: c.field, Value: bson.D{{Key: "$gte", Value: -c.value}}})
		}
	}

	var updated models.Post
	err = r.coll.FindOneAndUpdate(ctx, filter,
		bson.D{{Key: "$inc", Value: inc}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err = translate(err); !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// Distinguish a missing post from a guard that did not match.
	n, cerr := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
	if cerr != nil {
		return nil, cerr
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrCounterUnderflow
}

func (r *postRepository) SetFeatured(ctx context.Context, id bson.ObjectID, featured bool) (*models.Post, error) {
	var post models.Post
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "featured", Value: featured}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *postRepository) PushComment(ctx context.Context, id bson.ObjectID, text string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$push", Value: bson.D{{Key: "comments", Value: text}}}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) Comments(ctx context.Context, id bson.ObjectID) ([]string, error) {
	var post models.Post
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}},
		options.FindOne().SetProjection(bson.D{{Key: "comments", Value: 1}}),
	).Decode(&post)
	if err != nil {
		return nil, translate(err)
	}
	if post.Comments == nil {
		return []string{}, nil
	}
	return post.Comments, nil
}

func (r *postRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) DistinctTags(ctx context.Context) ([]string, error) {
	tags := []string{}
	if err := r.coll.Distinct(ctx, "tags", bson.D{}).Decode(&tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *postRepository) CountByTag(ctx context.Context, name string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{{Key: "tags", Value: ciExact(name)}})
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.EstimatedDocumentCount(ctx)
}
