package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"forumhub/internal/models"
	"forumhub/internal/observability"
	"forumhub/internal/repository"
	"forumhub/internal/validation"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PostsPageSize is the fixed page size of the post listings.
const PostsPageSize = 6

// Highlight view sizes.
const (
	highlightSize = 4
	popularSize   = 10
)

type PostService struct {
	posts repository.PostRepository
}

func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

type CreatePostInput struct {
	Title       string   `json:"title" validate:"notblank,max=200"`
	Description string   `json:"description" validate:"notblank,max=20000"`
	Tags        []string `json:"tags" validate:"max=10,dive,notblank,max=40"`
	AuthorName  string   `json:"authorName" validate:"max=100"`
	AuthorPhoto string   `json:"authorPhoto" validate:"omitempty,url"`
}

// VoteInput accepts either signed deltas or the legacy voteType.
type VoteInput struct {
	UpVote   *int64 `json:"upVote"`
	DownVote *int64 `json:"downVote"`
	VoteType string `json:"voteType"`
}

// Delta resolves the input to the counter adjustment it asks for.
func (in VoteInput) Delta() (models.VoteDelta, error) {
	if in.VoteType != "" {
		switch strings.ToLower(in.VoteType) {
		case models.VoteTypeUp:
			return models.VoteDelta{TotalLiked: 1}, nil
		case models.VoteTypeDown:
			return models.VoteDelta{TotalLiked: -1}, nil
		default:
			return models.VoteDelta{}, models.NewValidationError("voteType must be upvote or downvote")
		}
	}
	if in.UpVote == nil && in.DownVote == nil {
		return models.VoteDelta{}, models.NewValidationError("upVote or downVote is required")
	}
	var d models.VoteDelta
	if in.UpVote != nil {
		d.UpVote = *in.UpVote
	}
	if in.DownVote != nil {
		d.DownVote = *in.DownVote
	}
	return d, nil
}

// Create stores a new post authored by actor. Counters start at zero.
func (s *PostService) Create(ctx context.Context, actor *models.User, in CreatePostInput) (*models.Post, error) {
	if err := validation.Check(in); err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		tags = append(tags, strings.TrimSpace(t))
	}

	post := &models.Post{
		AuthorEmail: actor.Email,
		AuthorName:  in.AuthorName,
		AuthorPhoto: in.AuthorPhoto,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Tags:        tags,
		CreatedAt:   time.Now().UTC(),
	}
	if post.AuthorName == "" {
		post.AuthorName = actor.Name
	}
	if post.AuthorPhoto == "" {
		post.AuthorPhoto = actor.PhotoURL
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// List returns one page of posts in the requested order. Unknown sorts fall back to newest.
func (s *PostService) List(ctx context.Context, page int, sort string) (models.Page[*models.Post], error) {
	page = normalizePage(page)
	if sort != models.SortPopularity {
		sort = models.SortNewest
	}
	posts, total, err := s.posts.List(ctx, repository.PostListOptions{
		Sort:  sort,
		Skip:  skipFor(page, PostsPageSize),
		Limit: PostsPageSize,
	})
	if err != nil {
		return models.Page[*models.Post]{}, err
	}
	return models.NewPage(posts, total, page, PostsPageSize), nil
}

func (s *PostService) Get(ctx context.Context, id bson.ObjectID) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Post", id.Hex())
	}
	return post, nil
}

// SearchByTag finds posts having a tag that contains tag, ignoring case.
func (s *PostService) SearchByTag(ctx context.Context, tag string) ([]*models.Post, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, models.NewValidationError("Tag is required")
	}
	return s.posts.SearchByTag(ctx, tag)
}

// Highlights returns one of the fixed-size highlight views.
func (s *PostService) Highlights(ctx context.Context, view repository.PostView) ([]*models.Post, error) {
	n := int64(highlightSize)
	if view == repository.ViewPopular {
		n = popularSize
	}
	return s.posts.Top(ctx, view, n)
}

// Vote applies the requested counter adjustment atomically and returns the updated post.
func (s *PostService) Vote(ctx context.Context, id bson.ObjectID, in VoteInput) (*models.Post, error) {
	delta, err := in.Delta()
	if err != nil {
		return nil, err
	}

	post, err := s.posts.ApplyVote(ctx, id, delta)
	if err != nil {
		if errors.Is(err, repository.ErrCounterUnderflow) {
			return nil, models.NewConflictError("Vote would make a counter negative")
		}
		return nil, notFoundOr(err, "Post", id.Hex())
	}

	kind := "delta"
	if in.VoteType != "" {
		kind = "legacy"
	}
	observability.VotesTotal.WithLabelValues(kind).Inc()
	return post, nil
}

// AddLegacyComment appends text to the post's embedded comment list.
func (s *PostService) AddLegacyComment(ctx context.Context, id bson.ObjectID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.NewValidationError("comment is required")
	}
	if err := s.posts.PushComment(ctx, id, text); err != nil {
		return notFoundOr(err, "Post", id.Hex())
	}
	return nil
}

func (s *PostService) LegacyComments(ctx context.Context, id bson.ObjectID) ([]string, error) {
	comments, err := s.posts.Comments(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Post", id.Hex())
	}
	return comments, nil
}

// Delete removes a post. Only its author or an admin may do so.
func (s *PostService) Delete(ctx context.Context, actor *models.User, id bson.ObjectID) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Post", id.Hex())
	}
	if post.AuthorEmail != actor.Email && !actor.IsAdmin() {
		return models.NewForbiddenError("Only the author or an admin can delete this post")
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Post", id.Hex())
	}
	return nil
}

func (s *PostService) SetFeatured(ctx context.Context, id bson.ObjectID, featured bool) (*models.Post, error) {
	post, err := s.posts.SetFeatured(ctx, id, featured)
	if err != nil {
		return nil, notFoundOr(err, "Post", id.Hex())
	}
	return post, nil
}

// ListByAuthor pages through the posts written by email, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, email string, page int) (models.Page[*models.Post], error) {
	page = normalizePage(page)
	posts, total, err := s.posts.ListByAuthor(ctx, email, skipFor(page, PostsPageSize), PostsPageSize)
	if err != nil {
		return models.Page[*models.Post]{}, err
	}
	return models.NewPage(posts, total, page, PostsPageSize), nil
}

func (s *PostService) CountByAuthor(ctx context.Context, email string) (int64, error) {
	return s.posts.CountByAuthor(ctx, email)
}
