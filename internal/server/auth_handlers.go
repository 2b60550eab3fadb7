package server

import (
	"forumhub/internal/models"
	"forumhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
// @Summary User registration
// @Description Create a password account and return a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration request"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	res, err := s.authService.Register(ctx, in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login credentials"
// @Success 200 {object} service.AuthResult
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	res, err := s.authService.Login(ctx, in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(res)
}

// SocialLogin handles POST /api/auth/social
// @Summary Social login
// @Description Find or create a passwordless account and return a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SocialLoginInput true "Identity from the social provider"
// @Success 200 {object} service.AuthResult
// @Router /auth/social [post]
func (s *Server) SocialLogin(c *fiber.Ctx) error {
	var in service.SocialLoginInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	res, err := s.authService.SocialLogin(ctx, in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(res)
}

// Logout handles POST /api/auth/logout by revoking the presented token
// until it would have expired anyway.
// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims := tokenClaims(c)
	if claims == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c).Sanitized())
}
