package server

import (
	"forumhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AdminStats handles GET /api/admin/stats
// @Summary Dashboard counts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AdminStats
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/stats [get]
func (s *Server) AdminStats(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	stats, err := s.adminService.Stats(ctx)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(stats)
}

// ReportedComments handles GET /api/admin/reported-comments
func (s *Server) ReportedComments(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := s.reportService.ReportedComments(ctx)
	if err != nil {
		return s.respondError(c, err)
	}
	if items == nil {
		items = []models.ReportedComment{}
	}
	return c.JSON(items)
}

// DismissReport handles DELETE /api/admin/reports/:id
func (s *Server) DismissReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := s.reportService.Dismiss(ctx, id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Report dismissed"})
}
