package server

import (
	"forumhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpsertUser handles POST /api/users. The first call for an email creates
// the account (201); later calls return the existing one (200).
// @Summary Upsert user
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.UpsertUserInput true "User"
// @Success 201 {object} object{created=bool,user=models.User}
// @Success 200 {object} object{created=bool,user=models.User,message=string}
// @Router /users [post]
func (s *Server) UpsertUser(c *fiber.Ctx) error {
	var in service.UpsertUserInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, created, err := s.userService.Upsert(ctx, in)
	if err != nil {
		return s.respondError(c, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"created": true, "user": user})
	}
	return c.JSON(fiber.Map{"created": false, "user": user, "message": "User already exists"})
}

// GetMembership handles GET /api/users/membership/:email
func (s *Server) GetMembership(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	member, err := s.userService.IsMember(ctx, emailParam(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"isMember": member})
}

// AdminCheck handles GET /api/users/admin-check/:email
func (s *Server) AdminCheck(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	admin, err := s.userService.IsAdmin(ctx, emailParam(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"admin": admin})
}

// Leaderboard handles GET /api/users/leaderboard
// @Summary Top posters
// @Tags users
// @Produce json
// @Success 200 {array} models.LeaderboardEntry
// @Router /users/leaderboard [get]
func (s *Server) Leaderboard(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	entries, err := s.userService.Leaderboard(ctx)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(entries)
}

// GetProfile handles GET /api/users/profile/:email
func (s *Server) GetProfile(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := s.userService.Profile(ctx, emailParam(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// ListUsers handles GET /api/users?page=&limit=&search= and its
// /api/admin/users alias.
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number, from 1"
// @Param limit query int false "Page size, default 10, max 100"
// @Param search query string false "Name or email substring"
// @Success 200 {object} models.Page[models.User]
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	page, err := s.userService.List(ctx, c.QueryInt("page", 1), c.QueryInt("limit", service.UsersPageSize), c.Query("search"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// DeleteUser handles DELETE /api/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := s.userService.Delete(ctx, id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}

// PromoteUser handles PATCH /api/users/:id/admin
func (s *Server) PromoteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := s.userService.Promote(ctx, id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// GrantMembership handles PATCH /api/users/:id/membership
func (s *Server) GrantMembership(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := s.userService.GrantMembership(ctx, id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// GrantMembershipByEmail handles PATCH /api/users/membership/:email after
// a successful payment.
func (s *Server) GrantMembershipByEmail(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := s.userService.GrantMembershipByEmail(ctx, currentUser(c), emailParam(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// WarnUser handles PATCH /api/users/:id/warn
func (s *Server) WarnUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.WarnInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := s.userService.Warn(ctx, id, in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}
