// Package seed builds demo forum data for development databases.
package seed

import (
	"fmt"
	"strings"
	"time"

	"forumhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Topics is the built-in tag vocabulary.
var Topics = []string{
	"General", "Programming", "Go", "JavaScript", "Databases", "DevOps",
	"Career", "Design", "Security", "Cloud", "Open Source", "Hardware",
}

// DefaultPassword is the password every generated account gets.
const DefaultPassword = "password123"

// Factory builds forum entities without persisting them.
type Factory struct {
	faker   *gofakeit.Faker
	maxDays int
}

// NewFactory returns a factory. A zero seed draws from the clock.
func NewFactory(seed int64, maxDays int) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{faker: gofakeit.New(seed), maxDays: maxDays}
}

// User builds a regular account with a hashed password already applied.
func (f *Factory) User(passwordHash string) *models.User {
	first, last := f.faker.FirstName(), f.faker.LastName()
	email := fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last),
		f.faker.Number(100, 999), f.faker.DomainName())
	u := models.NewUser(first+" "+last, email,
		fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()))
	u.PasswordHash = passwordHash
	u.CreatedAt = f.pastTime()
	if f.faker.Number(1, 5) == 1 {
		u.Membership = models.TierPremium
		u.IsMember = true
	}
	return u
}

// Post builds a post authored by u with up to three tags from tags.
func (f *Factory) Post(u *models.User, tags []string) *models.Post {
	p := &models.Post{
		AuthorEmail: u.Email,
		AuthorName:  u.Name,
		AuthorPhoto: u.PhotoURL,
		Title:       strings.TrimSuffix(f.faker.Sentence(6), "."),
		Description: f.faker.Paragraph(1, 4, 12, "\n"),
		Tags:        f.pickTags(tags),
		UpVote:      int64(f.faker.Number(0, 60)),
		DownVote:    int64(f.faker.Number(0, 15)),
		CreatedAt:   f.pastTime(),
	}
	p.TotalLiked = p.UpVote
	return p
}

// Comment builds a comment by u on p, dated after the post.
func (f *Factory) Comment(p *models.Post, u *models.User) *models.Comment {
	at := p.CreatedAt.Add(time.Duration(f.faker.Number(1, 72*60)) * time.Minute)
	if now := time.Now().UTC(); at.After(now) {
		at = now
	}
	return &models.Comment{
		PostID:      p.ID,
		AuthorEmail: u.Email,
		AuthorName:  u.Name,
		Text:        f.faker.Sentence(f.faker.Number(4, 20)),
		CreatedAt:   at,
	}
}

// Tag builds a tag record for name.
func (f *Factory) Tag(name string, createdBy bson.ObjectID) *models.Tag {
	return &models.Tag{Name: name, CreatedBy: createdBy, CreatedAt: time.Now().UTC()}
}

// Intn returns a value in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return f.faker.Number(0, n-1)
}

func (f *Factory) pickTags(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}
	n := f.faker.Number(1, min(3, len(tags)))
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		t := tags[f.Intn(len(tags))]
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}
