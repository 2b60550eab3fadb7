package seed

import (
	"context"
	"strings"
	"sync"
	"testing"

	"forumhub/internal/auth"
	"forumhub/internal/models"
	"forumhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.HashCost = bcrypt.MinCost
}

type sink struct {
	mu       sync.Mutex
	users    map[string]*models.User
	posts    []*models.Post
	comments []*models.Comment
	tags     map[string]*models.Tag
}

func newSink() *sink {
	return &sink{users: map[string]*models.User{}, tags: map[string]*models.Tag{}}
}

type userSink struct{ *sink }
type postSink struct{ *sink }
type commentSink struct{ *sink }
type tagSink struct{ *sink }

func (s userSink) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return repository.ErrDuplicate
	}
	u.ID = bson.NewObjectID()
	s.users[u.Email] = u
	return nil
}

func (s userSink) FindOrCreate(ctx context.Context, u *models.User) (*models.User, bool, error) {
	s.mu.Lock()
	existing, ok := s.users[u.Email]
	s.mu.Unlock()
	if ok {
		return existing, false, nil
	}
	return u, true, s.Create(ctx, u)
}

func (s postSink) Create(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = bson.NewObjectID()
	s.posts = append(s.posts, p)
	return nil
}

func (s commentSink) Create(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = bson.NewObjectID()
	s.comments = append(s.comments, c)
	return nil
}

func (s tagSink) Create(_ context.Context, t *models.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(t.Name)
	if _, ok := s.tags[key]; ok {
		return repository.ErrDuplicate
	}
	t.ID = bson.NewObjectID()
	s.tags[key] = t
	return nil
}

func newTestSeeder(s *sink) *Seeder {
	return &Seeder{Users: userSink{s}, Posts: postSink{s}, Comments: commentSink{s}, Tags: tagSink{s}}
}

func TestFactory_PostShape(t *testing.T) {
	f := NewFactory(42, 30)
	u := f.User("hash")
	assert.Contains(t, u.Email, "@")
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, "hash", u.PasswordHash)

	for range 50 {
		p := f.Post(u, Topics)
		assert.Equal(t, u.Email, p.AuthorEmail)
		assert.NotEmpty(t, p.Title)
		assert.GreaterOrEqual(t, p.UpVote, int64(0))
		assert.GreaterOrEqual(t, p.DownVote, int64(0))
		require.NotEmpty(t, p.Tags)
		assert.LessOrEqual(t, len(p.Tags), 3)

		seen := map[string]bool{}
		for _, tag := range p.Tags {
			assert.False(t, seen[tag], "duplicate tag %q", tag)
			seen[tag] = true
		}

		c := f.Comment(p, u)
		assert.False(t, c.CreatedAt.Before(p.CreatedAt))
	}
}

func TestFactory_SameSeedSameData(t *testing.T) {
	a := NewFactory(7, 10).User("x")
	b := NewFactory(7, 10).User("x")
	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.Email, b.Email)
}

func TestSeeder_Run(t *testing.T) {
	s := newSink()
	res, err := newTestSeeder(s).Run(context.Background(), Options{
		NumUsers:      5,
		NumPosts:      12,
		MaxComments:   3,
		AdminEmail:    "admin@forum.test",
		AdminPassword: "secret123",
		RandomSeed:    1,
	})
	require.NoError(t, err)

	require.NotNil(t, res.Admin)
	assert.True(t, res.Admin.IsAdmin())
	assert.True(t, auth.CheckPassword(res.Admin.PasswordHash, "secret123"))

	assert.Equal(t, len(Topics), res.Tags)
	assert.Equal(t, 12, res.Posts)
	assert.Len(t, s.posts, 12)
	assert.Len(t, s.comments, res.Comments)
	assert.Equal(t, len(s.users)-1, res.Users)

	postIDs := map[bson.ObjectID]bool{}
	for _, p := range s.posts {
		postIDs[p.ID] = true
	}
	for _, c := range s.comments {
		assert.True(t, postIDs[c.PostID])
	}
}

func TestSeeder_RunTwiceKeepsTagsAndAdminUnique(t *testing.T) {
	s := newSink()
	seeder := newTestSeeder(s)
	opts := Options{AdminEmail: "admin@forum.test", AdminPassword: "secret123", RandomSeed: 3}

	first, err := seeder.Run(context.Background(), opts)
	require.NoError(t, err)
	second, err := seeder.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, len(Topics), first.Tags)
	assert.Zero(t, second.Tags)
	assert.Equal(t, first.Admin.ID, second.Admin.ID)
	assert.Len(t, s.users, 1)
}

func TestSeeder_Run_Validation(t *testing.T) {
	seeder := newTestSeeder(newSink())

	_, err := seeder.Run(context.Background(), Options{NumPosts: 3})
	assert.Error(t, err)

	_, err = seeder.Run(context.Background(), Options{AdminEmail: "admin@forum.test"})
	assert.Error(t, err)
}
