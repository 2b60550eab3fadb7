package service

import (
	"context"

	"forumhub/internal/models"
)

// Counter is implemented by every repository.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// AdminService aggregates dashboard figures across collections.
type AdminService struct {
	posts, users, comments, reports, tags, announcements Counter
}

func NewAdminService(posts, users, comments, reports, tags, announcements Counter) *AdminService {
	return &AdminService{
		posts:         posts,
		users:         users,
		comments:      comments,
		reports:       reports,
		tags:          tags,
		announcements: announcements,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	for _, c := range []struct {
		src Counter
		dst *int64
	}{
		{s.posts, &stats.Posts},
		{s.users, &stats.Users},
		{s.comments, &stats.Comments},
		{s.reports, &stats.Reports},
		{s.tags, &stats.Tags},
		{s.announcements, &stats.Announcements},
	} {
		n, err := c.src.Count(ctx)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return &stats, nil
}
