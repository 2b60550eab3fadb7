package service

import (
	"context"
	"strings"

	"forumhub/internal/models"
	"forumhub/internal/repository"
	"forumhub/internal/validation"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ReportService struct {
	reports  repository.ReportRepository
	comments repository.CommentRepository
}

func NewReportService(reports repository.ReportRepository, comments repository.CommentRepository) *ReportService {
	return &ReportService{reports: reports, comments: comments}
}

type CreateReportInput struct {
	CommentID string `json:"commentId" validate:"required"`
	Feedback  string `json:"feedback" validate:"notblank,max=1000"`
}

// Create files a report by actor against an existing comment.
func (s *ReportService) Create(ctx context.Context, actor *models.User, in CreateReportInput) (*models.Report, error) {
	if err := validation.Check(in); err != nil {
		return nil, err
	}
	commentID, err := bson.ObjectIDFromHex(in.CommentID)
	if err != nil {
		return nil, models.NewValidationError("commentId is not a valid id")
	}
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return nil, notFoundOr(err, "Comment", in.CommentID)
	}

	report := &models.Report{
		CommentID:     commentID,
		ReporterEmail: actor.Email,
		Feedback:      strings.TrimSpace(in.Feedback),
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ReportedComments is the admin moderation queue, newest report first.
func (s *ReportService) ReportedComments(ctx context.Context) ([]models.ReportedComment, error) {
	return s.reports.ListEnriched(ctx)
}

// Dismiss deletes a single report.
func (s *ReportService) Dismiss(ctx context.Context, id bson.ObjectID) error {
	if err := s.reports.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Report", id.Hex())
	}
	return nil
}
