package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"forumhub/internal/auth"
	"forumhub/internal/database"
	"forumhub/internal/models"
	"forumhub/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Options configures a seeding run.
type Options struct {
	NumUsers       int
	NumPosts       int
	MaxComments    int
	AdminEmail     string
	AdminPassword  string
	RandomSeed     int64
	MaxDaysHistory int
}

// Result counts what a run inserted.
type Result struct {
	Users    int
	Posts    int
	Comments int
	Tags     int
	Admin    *models.User
}

// UserWriter persists accounts.
type UserWriter interface {
	Create(ctx context.Context, user *models.User) error
	FindOrCreate(ctx context.Context, user *models.User) (*models.User, bool, error)
}

// PostWriter persists posts.
type PostWriter interface {
	Create(ctx context.Context, post *models.Post) error
}

// CommentWriter persists comments.
type CommentWriter interface {
	Create(ctx context.Context, comment *models.Comment) error
}

// TagWriter persists tags.
type TagWriter interface {
	Create(ctx context.Context, tag *models.Tag) error
}

// Seeder writes generated data through the repositories.
type Seeder struct {
	Users    UserWriter
	Posts    PostWriter
	Comments CommentWriter
	Tags     TagWriter
	Logger   *slog.Logger
}

// NewSeeder returns a seeder backed by the MongoDB repositories.
func NewSeeder(db *mongo.Database) *Seeder {
	return &Seeder{
		Users:    repository.NewUserRepository(db),
		Posts:    repository.NewPostRepository(db),
		Comments: repository.NewCommentRepository(db),
		Tags:     repository.NewTagRepository(db),
		Logger:   slog.Default(),
	}
}

// Run seeds tags, an optional admin, users, posts and comments in that order.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.NumPosts > 0 && opts.NumUsers <= 0 {
		return nil, errors.New("posts need at least one user")
	}
	f := NewFactory(opts.RandomSeed, opts.MaxDaysHistory)
	res := &Result{}

	if opts.AdminEmail != "" {
		admin, err := s.ensureAdmin(ctx, opts.AdminEmail, opts.AdminPassword)
		if err != nil {
			return nil, err
		}
		res.Admin = admin
	}

	var tagOwner bson.ObjectID
	if res.Admin != nil {
		tagOwner = res.Admin.ID
	}
	for _, name := range Topics {
		err := s.Tags.Create(ctx, f.Tag(name, tagOwner))
		switch {
		case err == nil:
			res.Tags++
		case errors.Is(err, repository.ErrDuplicate):
		default:
			return nil, fmt.Errorf("failed to create tag %q: %w", name, err)
		}
	}

	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash default password: %w", err)
	}
	users := make([]*models.User, 0, opts.NumUsers)
	for range opts.NumUsers {
		u := f.User(hash)
		if err := s.Users.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, u)
	}
	res.Users = len(users)
	if len(users) == 0 {
		return res, nil
	}

	for range opts.NumPosts {
		p := f.Post(users[f.Intn(len(users))], Topics)
		if err := s.Posts.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		res.Posts++

		for range f.Intn(opts.MaxComments + 1) {
			if err := s.Comments.Create(ctx, f.Comment(p, users[f.Intn(len(users))])); err != nil {
				return nil, fmt.Errorf("failed to create comment: %w", err)
			}
			res.Comments++
		}
	}

	s.logger().Info("seeding complete",
		"users", res.Users, "posts", res.Posts, "comments", res.Comments, "tags", res.Tags)
	return res, nil
}

func (s *Seeder) ensureAdmin(ctx context.Context, email, password string) (*models.User, error) {
	if password == "" {
		return nil, errors.New("admin password is required when an admin email is set")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := models.NewUser("Administrator", email, "")
	admin.PasswordHash = hash
	admin.Role = models.RoleAdmin

	stored, created, err := s.Users.FindOrCreate(ctx, admin)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	if !created && !stored.IsAdmin() {
		s.logger().Warn("seed admin email belongs to a non-admin account", "email", email)
	}
	return stored, nil
}

func (s *Seeder) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Clear empties every forum collection.
func Clear(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{
		database.CollectionReports,
		database.CollectionComments,
		database.CollectionPosts,
		database.CollectionAnnouncements,
		database.CollectionTags,
		database.CollectionUsers,
	} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
	}
	return nil
}
