package middleware

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the process-wide structured logger.
var Logger = NewLogger(os.Stdout, os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

type contextKey string

// Context keys read by the logger.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

// requestAttrs maps context keys to the attribute names they are logged under.
var requestAttrs = []struct {
	key  contextKey
	attr string
}{
	{RequestIDKey, "request_id"},
	{UserIDKey, "user_id"},
	{TraceIDKey, "trace_id"},
}

// requestHandler decorates records with the request-scoped values in ctx.
type requestHandler struct {
	slog.Handler
}

func (h requestHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, ra := range requestAttrs {
		if v, ok := ctx.Value(ra.key).(string); ok && v != "" {
			r.AddAttrs(slog.String(ra.attr, v))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h requestHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return requestHandler{h.Handler.WithAttrs(attrs)}
}

func (h requestHandler) WithGroup(name string) slog.Handler {
	return requestHandler{h.Handler.WithGroup(name)}
}

// NewLogger builds a JSON logger in production and a text logger elsewhere.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var base slog.Handler
	if env == "production" {
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = slog.NewTextHandler(w, opts)
	}
	return slog.New(requestHandler{base})
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextMiddleware moves the request id, caller id and trace id from Fiber
// locals into the user context.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		for local, key := range map[string]contextKey{
			"requestid": RequestIDKey,
			"userID":    UserIDKey,
			"traceID":   TraceIDKey,
		} {
			if v, ok := c.Locals(local).(string); ok {
				ctx = context.WithValue(ctx, key, v)
			}
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// WithUserID returns ctx annotated with the authenticated caller's id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// StructuredLogger logs one record per request. Health probes are skipped.
// 5xx responses log at error level and 4xx at warn.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/health/") {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		attrs := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		ctx := c.UserContext()
		switch {
		case err != nil && status < fiber.StatusBadRequest, status >= fiber.StatusInternalServerError:
			Logger.ErrorContext(ctx, "request failed", attrs...)
		case status >= fiber.StatusBadRequest:
			Logger.WarnContext(ctx, "request rejected", attrs...)
		default:
			Logger.InfoContext(ctx, "request handled", attrs...)
		}
		return err
	}
}
