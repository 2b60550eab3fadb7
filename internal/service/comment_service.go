package service

import (
	"context"
	"strings"

	"forumhub/internal/middleware"
	"forumhub/internal/models"
	"forumhub/internal/repository"
	"forumhub/internal/validation"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CommentService struct {
	comments repository.CommentRepository
	reports  repository.ReportRepository
	posts    repository.PostRepository
}

func NewCommentService(comments repository.CommentRepository, reports repository.ReportRepository, posts repository.PostRepository) *CommentService {
	return &CommentService{comments: comments, reports: reports, posts: posts}
}

type CreateCommentInput struct {
	PostID string `json:"postId" validate:"required"`
	Text   string `json:"text" validate:"notblank,max=5000"`
}

// Create adds a comment by actor to an existing post.
func (s *CommentService) Create(ctx context.Context, actor *models.User, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.Check(in); err != nil {
		return nil, err
	}
	postID, err := bson.ObjectIDFromHex(in.PostID)
	if err != nil {
		return nil, models.NewValidationError("postId is not a valid id")
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "Post", postID.Hex())
	}

	comment := &models.Comment{
		PostID:      postID,
		AuthorEmail: actor.Email,
		AuthorName:  actor.Name,
		Text:        strings.TrimSpace(in.Text),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListByPost(ctx context.Context, postID bson.ObjectID) ([]*models.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

func (s *CommentService) CountByPost(ctx context.Context, postID bson.ObjectID) (int64, error) {
	return s.comments.CountByPost(ctx, postID)
}

// Delete removes a comment and then every report filed against it. Only the
// comment's author or an admin may delete it.
func (s *CommentService) Delete(ctx context.Context, actor *models.User, id bson.ObjectID) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Comment", id.Hex())
	}
	if comment.AuthorEmail != actor.Email && !actor.IsAdmin() {
		return models.NewForbiddenError("Only the author or an admin can delete this comment")
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Comment", id.Hex())
	}
	removed, err := s.reports.DeleteByComment(ctx, id)
	if err != nil {
		// The comment is gone; leftover reports are excluded from the enriched view.
		middleware.Logger.WarnContext(ctx, "failed to delete reports for comment",
			"comment_id", id.Hex(), "error", err)
		return nil
	}
	if removed > 0 {
		middleware.Logger.InfoContext(ctx, "deleted reports with comment",
			"comment_id", id.Hex(), "reports", removed)
	}
	return nil
}
