package server

import (
	"strings"

	"forumhub/internal/auth"
	"forumhub/internal/middleware"
	"forumhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// bearerToken returns the token from an "Authorization: Bearer <token>"
// header, or "" when the header is absent or uses another scheme.
func bearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthRequired verifies the bearer token and rejects revoked tokens.
// It stores userID, email and claims in locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := s.authService.Verify(bearerToken(c))
		if err != nil {
			return s.respondError(c, err)
		}

		revoked, err := s.revocations.IsRevoked(c.UserContext(), claims.TokenID)
		if err != nil {
			// Redis trouble must not lock every user out.
			middleware.Logger.WarnContext(c.UserContext(), "revocation check failed", "error", err)
		}
		if revoked {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("claims", claims)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), claims.UserID))

		return c.Next()
	}
}

// Authorize re-fetches the caller and checks that their role may perform
// action on object. Must be placed after AuthRequired. The resolved user is
// stored in locals under "user".
func (s *Server) Authorize(object, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, _ := c.Locals("userID").(string)
		id, err := bson.ObjectIDFromHex(uid)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		ctx, cancel := withTimeout(c)
		defer cancel()

		user, err := s.userService.GetByID(ctx, id)
		if err != nil {
			if models.StatusFor(err) == fiber.StatusNotFound {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("User no longer exists"))
			}
			return s.respondError(c, err)
		}

		allowed, err := s.enforcer.Can(user.Role, object, action)
		if err != nil {
			return s.respondError(c, models.NewInternalError(err))
		}
		if !allowed {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Insufficient permissions"))
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// tokenClaims returns the claims stored by AuthRequired.
func tokenClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals("claims").(*auth.Claims)
	return claims
}
