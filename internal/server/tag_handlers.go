package server

import (
	"forumhub/internal/models"
	"forumhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTags handles GET /api/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	tags, err := s.tagService.List(ctx)
	if err != nil {
		return s.respondError(c, err)
	}
	if tags == nil {
		tags = []*models.Tag{}
	}
	return c.JSON(tags)
}

// GetDerivedTags handles GET /api/tags/derived, the distinct tags used on posts.
func (s *Server) GetDerivedTags(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	tags, err := s.tagService.Derived(ctx)
	if err != nil {
		return s.respondError(c, err)
	}
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(tags)
}

// CreateTag handles POST /api/tags
// @Summary Create tag
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateTagInput true "Tag"
// @Success 201 {object} models.Tag
// @Failure 409 {object} models.ErrorResponse
// @Router /tags [post]
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var in service.CreateTagInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	tag, err := s.tagService.Create(ctx, currentUser(c), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// DeleteTag handles DELETE /api/tags/:id. Tags still used by a post are kept.
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := s.tagService.Delete(ctx, id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tag deleted"})
}
