package repository

import (
	"context"
	"errors"

	"forumhub/internal/database"
	"forumhub/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UserListOptions selects one page of users. Search matches name or email.
type UserListOptions struct {
	Search string
	Skip   int64
	Limit  int64
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// FindOrCreate inserts user unless an account with the same email exists,
	// returning the stored account and whether it was created.
	FindOrCreate(ctx context.Context, user *models.User) (*models.User, bool, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, opts UserListOptions) ([]*models.User, int64, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	SetRole(ctx context.Context, id bson.ObjectID, role string) (*models.User, error)
	SetMembershipByID(ctx context.Context, id bson.ObjectID, tier models.MembershipTier) (*models.User, error)
	SetMembershipByEmail(ctx context.Context, email string, tier models.MembershipTier) (*models.User, error)
	AddWarning(ctx context.Context, id bson.ObjectID, w models.Warning) (*models.User, error)
	Leaderboard(ctx context.Context, n int64) ([]models.LeaderboardEntry, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection(database.CollectionUsers)}
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, user)
	return translate(err)
}

func (r *userRepository) FindOrCreate(ctx context.Context, user *models.User) (*models.User, bool, error) {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	var stored models.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "email", Value: user.Email}},
		bson.D{{Key: "$setOnInsert", Value: user}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&stored)
	if err != nil {
		err = translate(err)
		// A concurrent upsert won the unique index; the account now exists.
		if errors.Is(err, ErrDuplicate) {
			existing, gerr := r.GetByEmail(ctx, user.Email)
			return existing, false, gerr
		}
		return nil, false, err
	}
	return &stored, stored.ID == user.ID, nil
}

func (r *userRepository) GetByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, opts UserListOptions) ([]*models.User, int64, error) {
	filter := bson.D{}
	if opts.Search != "" {
		filter = bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: ciContains(opts.Search)}},
			bson.D{{Key: "email", Value: ciContains(opts.Search)}},
		}}}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetSort(newestFirst).
		SetSkip(opts.Skip).
		SetLimit(opts.Limit).
		SetProjection(bson.D{{Key: "password", Value: 0}}))
	if err != nil {
		return nil, 0, err
	}
	users, err := decodeAll[*models.User](ctx, cur)
	return users, total, err
}

func (r *userRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) update(ctx context.Context, filter, update bson.D) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) SetRole(ctx context.Context, id bson.ObjectID, role string) (*models.User, error) {
	return r.update(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "role", Value: role}}}},
	)
}

// membershipUpdate writes both stored representations of the tier.
func membershipUpdate(tier models.MembershipTier) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "membership", Value: tier},
		{Key: "isMember", Value: tier.IsMember()},
	}}}
}

func (r *userRepository) SetMembershipByID(ctx context.Context, id bson.ObjectID, tier models.MembershipTier) (*models.User, error) {
	return r.update(ctx, bson.D{{Key: "_id", Value: id}}, membershipUpdate(tier))
}

func (r *userRepository) SetMembershipByEmail(ctx context.Context, email string, tier models.MembershipTier) (*models.User, error) {
	return r.update(ctx, bson.D{{Key: "email", Value: email}}, membershipUpdate(tier))
}

func (r *userRepository) AddWarning(ctx context.Context, id bson.ObjectID, w models.Warning) (*models.User, error) {
	return r.update(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$push", Value: bson.D{{Key: "warnings", Value: w}}}},
	)
}

// Leaderboard ranks users by how many posts they authored.
func (r *userRepository) Leaderboard(ctx context.Context, n int64) (entries []models.LeaderboardEntry, err error) {
	ctx, span := startSpan(ctx, database.CollectionUsers, "Leaderboard")
	defer func() { endSpan(span, err) }()

	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.CollectionPosts},
			{Key: "localField", Value: "email"},
			{Key: "foreignField", Value: "authorEmail"},
			{Key: "as", Value: "posts"},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "totalPosts", Value: bson.D{{Key: "$size", Value: "$posts"}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalPosts", Value: -1}, {Key: "name", Value: 1}}}},
		{{Key: "$limit", Value: n}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "name", Value: 1},
			{Key: "email", Value: 1},
			{Key: "photoURL", Value: 1},
			{Key: "totalPosts", Value: 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	return decodeAll[models.LeaderboardEntry](ctx, cur)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.EstimatedDocumentCount(ctx)
}
