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

// AnnouncementPublisher delivers new announcements to live subscribers.
type AnnouncementPublisher interface {
	PublishAnnouncement(ctx context.Context, a *models.Announcement) error
}

type AnnouncementService struct {
	announcements repository.AnnouncementRepository
	publisher     AnnouncementPublisher
}

// NewAnnouncementService wires the store and an optional publisher.
func NewAnnouncementService(announcements repository.AnnouncementRepository, publisher AnnouncementPublisher) *AnnouncementService {
	return &AnnouncementService{announcements: announcements, publisher: publisher}
}

type CreateAnnouncementInput struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"notblank,max=5000"`
}

// Create stores an announcement authored by actor and publishes it.
// Publishing is best effort.
func (s *AnnouncementService) Create(ctx context.Context, actor *models.User, in CreateAnnouncementInput) (*models.Announcement, error) {
	if err := validation.Check(in); err != nil {
		return nil, err
	}

	a := &models.Announcement{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Author:      models.ProfileOf(actor),
	}
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAnnouncement(ctx, a); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish announcement",
				"announcement_id", a.ID.Hex(), "error", err)
		}
	}
	return a, nil
}

func (s *AnnouncementService) List(ctx context.Context) ([]*models.Announcement, error) {
	return s.announcements.List(ctx)
}

func (s *AnnouncementService) Count(ctx context.Context) (int64, error) {
	return s.announcements.Count(ctx)
}

func (s *AnnouncementService) Delete(ctx context.Context, id bson.ObjectID) error {
	if err := s.announcements.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Announcement", id.Hex())
	}
	return nil
}
