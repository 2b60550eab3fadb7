package server

import (
	"forumhub/internal/middleware"
	"forumhub/internal/models"
	"forumhub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// CreateAnnouncement handles POST /api/announcements
// @Summary Publish announcement
// @Description Stores the announcement and pushes it to live subscribers.
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateAnnouncementInput true "Announcement"
// @Success 201 {object} models.Announcement
// @Router /announcements [post]
func (s *Server) CreateAnnouncement(c *fiber.Ctx) error {
	var in service.CreateAnnouncementInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	a, err := s.announcementService.Create(ctx, currentUser(c), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// GetAnnouncements handles GET /api/announcements
func (s *Server) GetAnnouncements(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := s.announcementService.List(ctx)
	if err != nil {
		return s.respondError(c, err)
	}
	if items == nil {
		items = []*models.Announcement{}
	}
	return c.JSON(items)
}

// CountAnnouncements handles GET /api/announcements/count
func (s *Server) CountAnnouncements(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := s.announcementService.Count(ctx)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// DeleteAnnouncement handles DELETE /api/announcements/:id
func (s *Server) DeleteAnnouncement(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := s.announcementService.Delete(ctx, id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Announcement deleted"})
}

// requireUpgrade rejects plain HTTP requests to websocket routes.
func (s *Server) requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.Status(fiber.StatusUpgradeRequired).JSON(models.ErrorResponse{
		Error: "WebSocket upgrade required",
	})
}

// AnnouncementStream handles GET /api/ws/announcements. Each new
// announcement is written to the socket as a JSON event.
func (s *Server) AnnouncementStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		subscriber := conn.RemoteAddr().String()

		client, err := s.hub.Register(subscriber, conn)
		if err != nil {
			middleware.Logger.Warn("announcement stream rejected", "subscriber", subscriber, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		middleware.Logger.Info("announcement stream opened", "subscriber", subscriber)

		go client.WritePump()
		client.ReadPump()
	})
}
