package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"forumhub/internal/auth"
	"forumhub/internal/models"
	"forumhub/internal/observability"
	"forumhub/internal/repository"
	"forumhub/internal/validation"
)

// AuthService registers accounts and issues tokens.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SocialLoginInput struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

// AuthResult is a freshly issued token and the account it belongs to.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (res *AuthResult, err error) {
	defer func() { observability.RecordAuth("register", err) }()

	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Check(in); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, models.NewConflictError("User already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(in.Name, in.Email, in.PhotoURL)
	user.PasswordHash = hash
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewConflictError("User already exists")
		}
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (res *AuthResult, err error) {
	defer func() { observability.RecordAuth("login", err) }()

	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Check(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, notFoundOr(err, "User", in.Email)
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, models.NewBadCredentialsError()
	}
	return s.issue(user)
}

// SocialLogin signs in an externally authenticated identity, creating the
// account on first use.
func (s *AuthService) SocialLogin(ctx context.Context, in SocialLoginInput) (res *AuthResult, err error) {
	defer func() { observability.RecordAuth("social", err) }()

	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Check(in); err != nil {
		return nil, err
	}

	user, _, err := s.users.FindOrCreate(ctx, models.NewUser(in.Name, in.Email, in.PhotoURL))
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Verify checks a bearer token and maps failures onto the error taxonomy.
func (s *AuthService) Verify(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, auth.ErrMissingToken):
		return nil, models.NewUnauthorizedError("Authorization required")
	case errors.Is(err, auth.ErrTokenExpired):
		return nil, models.NewTokenExpiredError()
	default:
		return nil, models.NewInvalidTokenError(err)
	}
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, claims, err := s.tokens.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user.Sanitized()}, nil
}
