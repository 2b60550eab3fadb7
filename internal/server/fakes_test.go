package server

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"forumhub/internal/models"
	"forumhub/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// memStore backs every repository interface with maps so handler tests run
// without MongoDB. It mirrors the store's not-found and duplicate semantics.
type memStore struct {
	mu            sync.Mutex
	posts         map[bson.ObjectID]*models.Post
	users         map[bson.ObjectID]*models.User
	comments      map[bson.ObjectID]*models.Comment
	reports       map[bson.ObjectID]*models.Report
	tags          map[bson.ObjectID]*models.Tag
	announcements map[bson.ObjectID]*models.Announcement
}

func newMemStore() *memStore {
	return &memStore{
		posts:         map[bson.ObjectID]*models.Post{},
		users:         map[bson.ObjectID]*models.User{},
		comments:      map[bson.ObjectID]*models.Comment{},
		reports:       map[bson.ObjectID]*models.Report{},
		tags:          map[bson.ObjectID]*models.Tag{},
		announcements: map[bson.ObjectID]*models.Announcement{},
	}
}

func (m *memStore) repos() Repositories {
	return Repositories{
		Posts:         memPosts{m},
		Users:         memUsers{m},
		Comments:      memComments{m},
		Reports:       memReports{m},
		Tags:          memTags{m},
		Announcements: memAnnouncements{m},
	}
}

func stamp(id *bson.ObjectID, at *time.Time) {
	if id.IsZero() {
		*id = bson.NewObjectID()
	}
	if at.IsZero() {
		*at = time.Now().UTC()
	}
}

func newestPostsFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
}

func pageOf[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	end := skip + limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[skip:end]
}

type memPosts struct{ *memStore }

func (m memPosts) Create(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&p.ID, &p.CreatedAt)
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m memPosts) GetByID(_ context.Context, id bson.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m memPosts) all(keep func(*models.Post) bool) []*models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Post
	for _, p := range m.posts {
		if keep == nil || keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	newestPostsFirst(out)
	return out
}

func (m memPosts) List(_ context.Context, o repository.PostListOptions) ([]*models.Post, int64, error) {
	all := m.all(nil)
	if o.Sort == models.SortPopularity {
		sort.SliceStable(all, func(i, j int) bool { return all[i].VoteDifference() > all[j].VoteDifference() })
	}
	return pageOf(all, o.Skip, o.Limit), int64(len(all)), nil
}

func (m memPosts) ListByAuthor(_ context.Context, email string, skip, limit int64) ([]*models.Post, int64, error) {
	all := m.all(func(p *models.Post) bool { return p.AuthorEmail == email })
	return pageOf(all, skip, limit), int64(len(all)), nil
}

func (m memPosts) CountByAuthor(ctx context.Context, email string) (int64, error) {
	_, n, err := m.ListByAuthor(ctx, email, 0, 0)
	return n, err
}

func (m memPosts) SearchByTag(_ context.Context, tag string) ([]*models.Post, error) {
	return m.all(func(p *models.Post) bool {
		for _, t := range p.Tags {
			if strings.Contains(strings.ToLower(t), strings.ToLower(tag)) {
				return true
			}
		}
		return false
	}), nil
}

func (m memPosts) Top(_ context.Context, _ repository.PostView, n int64) ([]*models.Post, error) {
	return pageOf(m.all(nil), 0, n), nil
}

func (m memPosts) ApplyVote(_ context.Context, id bson.ObjectID, d models.VoteDelta) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.UpVote+d.UpVote < 0 || p.DownVote+d.DownVote < 0 || p.TotalLiked+d.TotalLiked < 0 {
		return nil, repository.ErrCounterUnderflow
	}
	p.UpVote += d.UpVote
	p.DownVote += d.DownVote
	p.TotalLiked += d.TotalLiked
	cp := *p
	return &cp, nil
}

func (m memPosts) SetFeatured(_ context.Context, id bson.ObjectID, featured bool) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Featured = featured
	cp := *p
	return &cp, nil
}

func (m memPosts) PushComment(_ context.Context, id bson.ObjectID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Comments = append(p.Comments, text)
	return nil
}

func (m memPosts) Comments(ctx context.Context, id bson.ObjectID) ([]string, error) {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Comments, nil
}

func (m memPosts) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m memPosts) DistinctTags(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range m.all(nil) {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m memPosts) CountByTag(_ context.Context, name string) (int64, error) {
	return int64(len(m.all(func(p *models.Post) bool {
		for _, t := range p.Tags {
			if strings.EqualFold(t, name) {
				return true
			}
		}
		return false
	}))), nil
}

func (m memPosts) Count(context.Context) (int64, error) {
	return int64(len(m.all(nil))), nil
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	stamp(&u.ID, &u.CreatedAt)
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m memUsers) FindOrCreate(ctx context.Context, u *models.User) (*models.User, bool, error) {
	if existing, err := m.GetByEmail(ctx, u.Email); err == nil {
		return existing, false, nil
	}
	if err := m.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (m memUsers) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memUsers) GetByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m memUsers) List(_ context.Context, o repository.UserListOptions) ([]*models.User, int64, error) {
	m.mu.Lock()
	var all []*models.User
	for _, u := range m.users {
		if o.Search == "" || strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(o.Search)) {
			cp := *u
			all = append(all, &cp)
		}
	}
	m.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return pageOf(all, o.Skip, o.Limit), int64(len(all)), nil
}

func (m memUsers) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m memUsers) update(match func(*models.User) bool, apply func(*models.User)) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			apply(u)
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memUsers) SetRole(_ context.Context, id bson.ObjectID, role string) (*models.User, error) {
	return m.update(func(u *models.User) bool { return u.ID == id }, func(u *models.User) { u.Role = role })
}

func setTier(tier models.MembershipTier) func(*models.User) {
	return func(u *models.User) {
		u.Membership = tier
		u.IsMember = tier.IsMember()
	}
}

func (m memUsers) SetMembershipByID(_ context.Context, id bson.ObjectID, tier models.MembershipTier) (*models.User, error) {
	return m.update(func(u *models.User) bool { return u.ID == id }, setTier(tier))
}

func (m memUsers) SetMembershipByEmail(_ context.Context, email string, tier models.MembershipTier) (*models.User, error) {
	return m.update(func(u *models.User) bool { return u.Email == email }, setTier(tier))
}

func (m memUsers) AddWarning(_ context.Context, id bson.ObjectID, w models.Warning) (*models.User, error) {
	return m.update(func(u *models.User) bool { return u.ID == id }, func(u *models.User) {
		u.Warnings = append(u.Warnings, w)
	})
}

func (m memUsers) Leaderboard(context.Context, int64) ([]models.LeaderboardEntry, error) {
	return []models.LeaderboardEntry{}, nil
}

func (m memUsers) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

type memComments struct{ *memStore }

func (m memComments) Create(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&c.ID, &c.CreatedAt)
	cp := *c
	m.comments[c.ID] = &cp
	return nil
}

func (m memComments) GetByID(_ context.Context, id bson.ObjectID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memComments) ListByPost(_ context.Context, postID bson.ObjectID) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memComments) CountByPost(ctx context.Context, postID bson.ObjectID) (int64, error) {
	list, err := m.ListByPost(ctx, postID)
	return int64(len(list)), err
}

func (m memComments) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m memComments) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.comments)), nil
}

type memReports struct{ *memStore }

func (m memReports) Create(_ context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&r.ID, &r.ReportedAt)
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m memReports) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}

func (m memReports) DeleteByComment(_ context.Context, commentID bson.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.reports {
		if r.CommentID == commentID {
			delete(m.reports, id)
			n++
		}
	}
	return n, nil
}

// ListEnriched joins like the aggregation does: reports whose comment is
// gone are dropped.
func (m memReports) ListEnriched(context.Context) ([]models.ReportedComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ReportedComment
	for _, r := range m.reports {
		c, ok := m.comments[r.CommentID]
		if !ok {
			continue
		}
		out = append(out, models.ReportedComment{
			ID:            r.ID,
			CommentID:     c.ID,
			PostID:        c.PostID,
			CommentText:   c.Text,
			Feedback:      r.Feedback,
			ReportedAt:    r.ReportedAt,
			CommentAuthor: models.Profile{Email: c.AuthorEmail, Name: c.AuthorName},
			Reporter:      models.Profile{Email: r.ReporterEmail},
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReportedAt.After(out[j].ReportedAt) })
	return out, nil
}

func (m memReports) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.reports)), nil
}

type memTags struct{ *memStore }

func (m memTags) Create(_ context.Context, t *models.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tags {
		if strings.EqualFold(existing.Name, t.Name) {
			return repository.ErrDuplicate
		}
	}
	stamp(&t.ID, &t.CreatedAt)
	cp := *t
	m.tags[t.ID] = &cp
	return nil
}

func (m memTags) GetByID(_ context.Context, id bson.ObjectID) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tags[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m memTags) FindByName(_ context.Context, name string) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tags {
		if strings.EqualFold(t.Name, name) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memTags) List(context.Context) ([]*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Tag
	for _, t := range m.tags {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (m memTags) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tags[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tags, id)
	return nil
}

func (m memTags) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.tags)), nil
}

type memAnnouncements struct{ *memStore }

func (m memAnnouncements) Create(_ context.Context, a *models.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&a.ID, &a.CreatedAt)
	cp := *a
	m.announcements[a.ID] = &cp
	return nil
}

func (m memAnnouncements) List(context.Context) ([]*models.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Announcement
	for _, a := range m.announcements {
		cp := *a
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memAnnouncements) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.announcements)), nil
}

func (m memAnnouncements) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.announcements[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.announcements, id)
	return nil
}
