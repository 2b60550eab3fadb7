// Package middleware provides request-scoped logging, tracing, metrics and rate limiting.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"forumhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Quota caps how often one caller may perform a named action.
type Quota struct {
	Name   string
	Max    int
	Window time.Duration
}

// Per-action quotas for the write endpoints.
var (
	QuotaRegister      = Quota{Name: "register", Max: 5, Window: 10 * time.Minute}
	QuotaLogin         = Quota{Name: "login", Max: 10, Window: 5 * time.Minute}
	QuotaSocialLogin   = Quota{Name: "social_login", Max: 10, Window: 5 * time.Minute}
	QuotaUpsertUser    = Quota{Name: "upsert_user", Max: 10, Window: 5 * time.Minute}
	QuotaCreatePost    = Quota{Name: "create_post", Max: 5, Window: 5 * time.Minute}
	QuotaCreateComment = Quota{Name: "create_comment", Max: 10, Window: time.Minute}
	QuotaCreateReport  = Quota{Name: "create_report", Max: 5, Window: 10 * time.Minute}
)

// FailPolicy defines the behavior when the counter store is unavailable.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

var errNoRedis = errors.New("redis client is nil")

// Decision is the outcome of one quota check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts actions per caller in fixed Redis windows.
type Limiter struct {
	rdb     *redis.Client
	policy  FailPolicy
	enabled bool
}

// NewLimiter returns a fail-open limiter. Quotas are not enforced in the
// development and test environments.
func NewLimiter(rdb *redis.Client, env string) *Limiter {
	switch env {
	case "", "development", "test":
		return &Limiter{rdb: rdb, policy: FailOpen}
	}
	return &Limiter{rdb: rdb, policy: FailOpen, enabled: true}
}

// WithPolicy returns a copy of l using policy when Redis fails.
func (l *Limiter) WithPolicy(policy FailPolicy) *Limiter {
	cp := *l
	cp.policy = policy
	return &cp
}

// Allow records one action by caller against q.
func (l *Limiter) Allow(ctx context.Context, q Quota, caller string) (Decision, error) {
	if !l.enabled {
		return Decision{Allowed: true, Remaining: q.Max}, nil
	}
	if l.rdb == nil {
		return Decision{}, errNoRedis
	}

	key := "rl:" + q.Name + ":" + caller
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, err
	}
	if count == 1 {
		if err := l.rdb.PExpire(ctx, key, q.Window).Err(); err != nil {
			return Decision{}, err
		}
	}

	if count <= int64(q.Max) {
		return Decision{Allowed: true, Remaining: q.Max - int(count)}, nil
	}

	retry, err := l.rdb.PTTL(ctx, key).Result()
	if err != nil || retry < 0 {
		retry = q.Window
	}
	return Decision{Allowed: false, RetryAfter: retry}, nil
}

// Handler enforces q, keyed by the authenticated user id or the remote IP.
func (l *Limiter) Handler(q Quota) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(string); ok && uid != "" {
			caller = "user:" + uid
		}

		d, err := l.Allow(c.UserContext(), q, caller)
		if err != nil {
			if l.policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, rejecting",
					"quota", q.Name, "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "Rate limiting unavailable",
					Code:  models.CodeUnavailable,
				})
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(q.Max))
		if !d.Allowed {
			c.Set("X-RateLimit-Remaining", "0")
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int((d.RetryAfter+time.Second-1)/time.Second)))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many " + q.Name + " requests, please try again later.",
				Code:  models.CodeRateLimited,
			})
		}
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		return c.Next()
	}
}
