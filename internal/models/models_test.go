package models

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTier(t *testing.T) {
	tests := []struct {
		name       string
		membership MembershipTier
		legacy     bool
		want       MembershipTier
	}{
		{"premium string", TierPremium, false, TierPremium},
		{"premium mixed case", "Premium", false, TierPremium},
		{"legacy flag only", "", true, TierPremium},
		{"free with legacy grant", TierFree, true, TierPremium},
		{"free", TierFree, false, TierFree},
		{"nothing stored", "", false, TierFree},
		{"unknown string", "gold", false, TierFree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTier(tt.membership, tt.legacy))
		})
	}
}

func TestNewUser_Defaults(t *testing.T) {
	u := NewUser("Ada", "ada@example.com", "")
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, TierFree, u.Tier())
	assert.False(t, u.IsMember)
	assert.Equal(t, []string{DefaultBadge}, u.Badges)
	assert.False(t, u.CreatedAt.IsZero())
	assert.False(t, u.IsAdmin())
}

func TestUser_Sanitized(t *testing.T) {
	u := NewUser("Ada", "ada@example.com", "")
	u.PasswordHash = "hash"
	s := u.Sanitized()
	assert.Empty(t, s.PasswordHash)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestNewPage(t *testing.T) {
	p := NewPage[int](nil, 13, 3, 6)
	assert.Equal(t, 3, p.TotalPages)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)

	p = NewPage([]int{1}, 0, 1, 6)
	assert.Equal(t, 0, p.TotalPages)

	p = NewPage([]int{1, 2}, 12, 2, 6)
	assert.Equal(t, 2, p.TotalPages)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidationError("bad"), fiber.StatusBadRequest},
		{NewNotFoundError("post", "x"), fiber.StatusNotFound},
		{NewConflictError("dup"), fiber.StatusConflict},
		{NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{NewInvalidTokenError(errors.New("sig")), fiber.StatusUnauthorized},
		{NewTokenExpiredError(), fiber.StatusUnauthorized},
		{NewBadCredentialsError(), fiber.StatusUnauthorized},
		{NewForbiddenError("no"), fiber.StatusForbidden},
		{fmt.Errorf("wrapped: %w", NewConflictError("dup")), fiber.StatusConflict},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestRespondWithError_HidesInternalCause(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, NewInternalError(errors.New("mongo exploded")))
	})
	app.Get("/token", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusUnauthorized, NewInvalidTokenError(errors.New("signature is invalid")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"Internal server error","code":"INTERNAL_ERROR"}`, string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/token", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"Invalid token","code":"INVALID_TOKEN","details":"signature is invalid"}`, string(body))
}
