package service

import (
	"context"
	"strings"

	"forumhub/internal/models"
	"forumhub/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// postRepoStub is a stub for repository.PostRepository. Unset funcs return zero values.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, bson.ObjectID) (*models.Post, error)
	listFn          func(context.Context, repository.PostListOptions) ([]*models.Post, int64, error)
	listByAuthorFn  func(context.Context, string, int64, int64) ([]*models.Post, int64, error)
	searchByTagFn   func(context.Context, string) ([]*models.Post, error)
	topFn           func(context.Context, repository.PostView, int64) ([]*models.Post, error)
	applyVoteFn     func(context.Context, bson.ObjectID, models.VoteDelta) (*models.Post, error)
	setFeaturedFn   func(context.Context, bson.ObjectID, bool) (*models.Post, error)
	pushCommentFn   func(context.Context, bson.ObjectID, string) error
	commentsFn      func(context.Context, bson.ObjectID) ([]string, error)
	deleteFn        func(context.Context, bson.ObjectID) error
	distinctTagsFn  func(context.Context) ([]string, error)
	countByTagFn    func(context.Context, string) (int64, error)
	countByAuthorFn func(context.Context, string) (int64, error)
	countFn         func(context.Context) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, p)
}
func (s *postRepoStub) GetByID(ctx context.Context, id bson.ObjectID) (*models.Post, error) {
	if s.getByIDFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, o repository.PostListOptions) ([]*models.Post, int64, error) {
	if s.listFn == nil {
		return nil, 0, nil
	}
	return s.listFn(ctx, o)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, email string, skip, limit int64) ([]*models.Post, int64, error) {
	if s.listByAuthorFn == nil {
		return nil, 0, nil
	}
	return s.listByAuthorFn(ctx, email, skip, limit)
}
func (s *postRepoStub) CountByAuthor(ctx context.Context, email string) (int64, error) {
	if s.countByAuthorFn == nil {
		return 0, nil
	}
	return s.countByAuthorFn(ctx, email)
}
func (s *postRepoStub) SearchByTag(ctx context.Context, tag string) ([]*models.Post, error) {
	if s.searchByTagFn == nil {
		return nil, nil
	}
	return s.searchByTagFn(ctx, tag)
}
func (s *postRepoStub) Top(ctx context.Context, v repository.PostView, n int64) ([]*models.Post, error) {
	if s.topFn == nil {
		return nil, nil
	}
	return s.topFn(ctx, v, n)
}
func (s *postRepoStub) ApplyVote(ctx context.Context, id bson.ObjectID, d models.VoteDelta) (*models.Post, error) {
	if s.applyVoteFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.applyVoteFn(ctx, id, d)
}
func (s *postRepoStub) SetFeatured(ctx context.Context, id bson.ObjectID, f bool) (*models.Post, error) {
	if s.setFeaturedFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.setFeaturedFn(ctx, id, f)
}
func (s *postRepoStub) PushComment(ctx context.Context, id bson.ObjectID, text string) error {
	if s.pushCommentFn == nil {
		return nil
	}
	return s.pushCommentFn(ctx, id, text)
}
func (s *postRepoStub) Comments(ctx context.Context, id bson.ObjectID) ([]string, error) {
	if s.commentsFn == nil {
		return []string{}, nil
	}
	return s.commentsFn(ctx, id)
}
func (s *postRepoStub) Delete(ctx context.Context, id bson.ObjectID) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) DistinctTags(ctx context.Context) ([]string, error) {
	if s.distinctTagsFn == nil {
		return []string{}, nil
	}
	return s.distinctTagsFn(ctx)
}
func (s *postRepoStub) CountByTag(ctx context.Context, name string) (int64, error) {
	if s.countByTagFn == nil {
		return 0, nil
	}
	return s.countByTagFn(ctx, name)
}
func (s *postRepoStub) Count(ctx context.Context) (int64, error) {
	if s.countFn == nil {
		return 0, nil
	}
	return s.countFn(ctx)
}

// memUsers is a small in-memory repository.UserRepository keyed by email.
type memUsers struct {
	byEmail map[string]*models.User
	listFn  func(context.Context, repository.UserListOptions) ([]*models.User, int64, error)
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{byEmail: map[string]*models.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = bson.NewObjectID()
		}
		m.byEmail[u.Email] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return repository.ErrDuplicate
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}
func (m *memUsers) FindOrCreate(ctx context.Context, u *models.User) (*models.User, bool, error) {
	if existing, ok := m.byEmail[u.Email]; ok {
		cp := *existing
		return &cp, false, nil
	}
	if err := m.Create(ctx, u); err != nil {
		return nil, false, err
	}
	cp := *m.byEmail[u.Email]
	return &cp, true, nil
}
func (m *memUsers) byID(id bson.ObjectID) *models.User {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u
		}
	}
	return nil
}
func (m *memUsers) GetByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	if u := m.byID(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}
func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}
func (m *memUsers) List(ctx context.Context, o repository.UserListOptions) ([]*models.User, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, o)
	}
	out := []*models.User{}
	for _, u := range m.byEmail {
		cp := *u
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}
func (m *memUsers) Delete(_ context.Context, id bson.ObjectID) error {
	u := m.byID(id)
	if u == nil {
		return repository.ErrNotFound
	}
	delete(m.byEmail, u.Email)
	return nil
}
func (m *memUsers) mutate(u *models.User, fn func(*models.User)) (*models.User, error) {
	if u == nil {
		return nil, repository.ErrNotFound
	}
	fn(u)
	cp := *u
	return &cp, nil
}
func (m *memUsers) SetRole(_ context.Context, id bson.ObjectID, role string) (*models.User, error) {
	return m.mutate(m.byID(id), func(u *models.User) { u.Role = role })
}
func (m *memUsers) SetMembershipByID(_ context.Context, id bson.ObjectID, t models.MembershipTier) (*models.User, error) {
	return m.mutate(m.byID(id), func(u *models.User) { u.Membership, u.IsMember = t, t.IsMember() })
}
func (m *memUsers) SetMembershipByEmail(_ context.Context, email string, t models.MembershipTier) (*models.User, error) {
	return m.mutate(m.byEmail[email], func(u *models.User) { u.Membership, u.IsMember = t, t.IsMember() })
}
func (m *memUsers) AddWarning(_ context.Context, id bson.ObjectID, w models.Warning) (*models.User, error) {
	return m.mutate(m.byID(id), func(u *models.User) { u.Warnings = append(u.Warnings, w) })
}
func (m *memUsers) Leaderboard(context.Context, int64) ([]models.LeaderboardEntry, error) {
	return []models.LeaderboardEntry{}, nil
}
func (m *memUsers) Count(context.Context) (int64, error) {
	return int64(len(m.byEmail)), nil
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	comments map[bson.ObjectID]*models.Comment
	deleted  []bson.ObjectID
}

func newCommentRepoStub(comments ...*models.Comment) *commentRepoStub {
	s := &commentRepoStub{comments: map[bson.ObjectID]*models.Comment{}}
	for _, c := range comments {
		s.comments[c.ID] = c
	}
	return s
}

func (s *commentRepoStub) Create(_ context.Context, c *models.Comment) error {
	c.ID = bson.NewObjectID()
	s.comments[c.ID] = c
	return nil
}
func (s *commentRepoStub) GetByID(_ context.Context, id bson.ObjectID) (*models.Comment, error) {
	if c, ok := s.comments[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}
func (s *commentRepoStub) ListByPost(context.Context, bson.ObjectID) ([]*models.Comment, error) {
	return []*models.Comment{}, nil
}
func (s *commentRepoStub) CountByPost(context.Context, bson.ObjectID) (int64, error) { return 0, nil }
func (s *commentRepoStub) Delete(_ context.Context, id bson.ObjectID) error {
	if _, ok := s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.comments, id)
	s.deleted = append(s.deleted, id)
	return nil
}
func (s *commentRepoStub) Count(context.Context) (int64, error) { return int64(len(s.comments)), nil }

// reportRepoStub is a stub for repository.ReportRepository.
type reportRepoStub struct {
	reports           []*models.Report
	deleteByCommentFn func(context.Context, bson.ObjectID) (int64, error)
	calls             []string
}

func (s *reportRepoStub) Create(_ context.Context, r *models.Report) error {
	r.ID = bson.NewObjectID()
	s.reports = append(s.reports, r)
	return nil
}
func (s *reportRepoStub) Delete(_ context.Context, id bson.ObjectID) error {
	for i, r := range s.reports {
		if r.ID == id {
			s.reports = append(s.reports[:i], s.reports[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
func (s *reportRepoStub) DeleteByComment(ctx context.Context, commentID bson.ObjectID) (int64, error) {
	s.calls = append(s.calls, "DeleteByComment")
	if s.deleteByCommentFn != nil {
		return s.deleteByCommentFn(ctx, commentID)
	}
	kept := s.reports[:0]
	var n int64
	for _, r := range s.reports {
		if r.CommentID == commentID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.reports = kept
	return n, nil
}
func (s *reportRepoStub) ListEnriched(context.Context) ([]models.ReportedComment, error) {
	return []models.ReportedComment{}, nil
}
func (s *reportRepoStub) Count(context.Context) (int64, error) { return int64(len(s.reports)), nil }

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	tags []*models.Tag
}

func (s *tagRepoStub) Create(_ context.Context, t *models.Tag) error {
	t.ID = bson.NewObjectID()
	s.tags = append(s.tags, t)
	return nil
}
func (s *tagRepoStub) GetByID(_ context.Context, id bson.ObjectID) (*models.Tag, error) {
	for _, t := range s.tags {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}
func (s *tagRepoStub) FindByName(_ context.Context, name string) (*models.Tag, error) {
	for _, t := range s.tags {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}
func (s *tagRepoStub) List(context.Context) ([]*models.Tag, error) { return s.tags, nil }
func (s *tagRepoStub) Delete(_ context.Context, id bson.ObjectID) error {
	for i, t := range s.tags {
		if t.ID == id {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
func (s *tagRepoStub) Count(context.Context) (int64, error) { return int64(len(s.tags)), nil }

type countStub int64

func (c countStub) Count(context.Context) (int64, error) { return int64(c), nil }
