package server

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"forumhub/internal/middleware"
	"forumhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// requestTimeout bounds the store calls made by a single handler.
const requestTimeout = 10 * time.Second

func withTimeout(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

// parseID extracts a route parameter as an ObjectID.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(c.Params(param))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return bson.ObjectID{}, errResponseWritten
	}
	return id, nil
}

// humanizeParam converts a route param name into a label:
// "id" -> "ID", "postId" -> "post ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "Id"); ok {
		return strings.ToLower(prefix) + " ID"
	}
	return param
}

// emailParam returns the :email route parameter, percent-decoded.
func emailParam(c *fiber.Ctx) string {
	raw := c.Params("email")
	if email, err := url.PathUnescape(raw); err == nil {
		return email
	}
	return raw
}

// parseBody decodes the request body into out.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// respondError writes err with the status its code maps to.
// Server-side failures are logged with the request context.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
	}
	return models.RespondWithError(c, status, err)
}

// currentUser is the user resolved by Authorize.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// errorHandler renders errors that escape handlers, such as unmatched routes.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}
