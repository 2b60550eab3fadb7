package service

import (
	"context"
	"errors"
	"strings"

	"forumhub/internal/models"
	"forumhub/internal/repository"
	"forumhub/internal/validation"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type TagService struct {
	tags  repository.TagRepository
	posts repository.PostRepository
}

func NewTagService(tags repository.TagRepository, posts repository.PostRepository) *TagService {
	return &TagService{tags: tags, posts: posts}
}

type CreateTagInput struct {
	Name string `json:"name" validate:"notblank,max=40"`
}

// Create adds a tag. Names are unique ignoring case.
func (s *TagService) Create(ctx context.Context, actor *models.User, in CreateTagInput) (*models.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Check(in); err != nil {
		return nil, err
	}

	if _, err := s.tags.FindByName(ctx, in.Name); err == nil {
		return nil, models.NewConflictError("Tag already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	tag := &models.Tag{Name: in.Name, CreatedBy: actor.ID}
	if err := s.tags.Create(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewConflictError("Tag already exists")
		}
		return nil, err
	}
	return tag, nil
}

func (s *TagService) List(ctx context.Context) ([]*models.Tag, error) {
	return s.tags.List(ctx)
}

// Derived returns the distinct tag strings used on posts.
func (s *TagService) Derived(ctx context.Context) ([]string, error) {
	return s.posts.DistinctTags(ctx)
}

// Delete removes a tag unless a post still uses its name.
func (s *TagService) Delete(ctx context.Context, id bson.ObjectID) error {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Tag", id.Hex())
	}
	inUse, err := s.posts.CountByTag(ctx, tag.Name)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return models.NewConflictError("Tag is still used by posts")
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Tag", id.Hex())
	}
	return nil
}
