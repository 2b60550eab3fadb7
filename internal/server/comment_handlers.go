package server

import (
	"forumhub/internal/models"
	"forumhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateCommentInput true "Comment"
// @Success 201 {object} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var in service.CreateCommentInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	comment, err := s.commentService.Create(ctx, currentUser(c), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/comments/post/:postId
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	comments, err := s.commentService.ListByPost(ctx, postID)
	if err != nil {
		return s.respondError(c, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return c.JSON(comments)
}

// CountComments handles GET /api/comments/count/:postId
func (s *Server) CountComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := s.commentService.CountByPost(ctx, postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// DeleteComment handles DELETE /api/comments/:id. Reports against the
// comment are removed with it.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := s.commentService.Delete(ctx, currentUser(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// CreateReport handles POST /api/reports
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var in service.CreateReportInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	report, err := s.reportService.Create(ctx, currentUser(c), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}
