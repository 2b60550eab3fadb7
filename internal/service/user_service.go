package service

import (
	"context"
	"strings"
	"time"

	"forumhub/internal/models"
	"forumhub/internal/repository"
	"forumhub/internal/validation"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User list paging.
const (
	UsersPageSize    = 10
	MaxUsersPageSize = 100
	leaderboardSize  = 10
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

type UpsertUserInput struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

type WarnInput struct {
	Message string `json:"message" validate:"notblank,max=1000"`
	Type    string `json:"type" validate:"omitempty,max=40"`
}

// Upsert creates the account unless one with the same email exists.
func (s *UserService) Upsert(ctx context.Context, in UpsertUserInput) (*models.User, bool, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Check(in); err != nil {
		return nil, false, err
	}
	user, created, err := s.users.FindOrCreate(ctx, models.NewUser(in.Name, in.Email, in.PhotoURL))
	if err != nil {
		return nil, false, err
	}
	return user.Sanitized(), created, nil
}

func (s *UserService) GetByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User", id.Hex())
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, "User", email)
	}
	return user, nil
}

// Profile returns the sanitized account for email.
func (s *UserService) Profile(ctx context.Context, email string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// IsMember reads the membership tier through the compatibility path.
func (s *UserService) IsMember(ctx context.Context, email string) (bool, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return user.Tier().IsMember(), nil
}

func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

func (s *UserService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return s.users.Leaderboard(ctx, leaderboardSize)
}

// List pages through accounts. limit defaults to 10 and is capped at 100.
func (s *UserService) List(ctx context.Context, page, limit int, search string) (models.Page[*models.User], error) {
	page = normalizePage(page)
	if limit < 1 {
		limit = UsersPageSize
	}
	if limit > MaxUsersPageSize {
		limit = MaxUsersPageSize
	}
	users, total, err := s.users.List(ctx, repository.UserListOptions{
		Search: strings.TrimSpace(search),
		Skip:   skipFor(page, limit),
		Limit:  int64(limit),
	})
	if err != nil {
		return models.Page[*models.User]{}, err
	}
	for i, u := range users {
		users[i] = u.Sanitized()
	}
	return models.NewPage(users, total, page, limit), nil
}

func (s *UserService) Delete(ctx context.Context, id bson.ObjectID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return notFoundOr(err, "User", id.Hex())
	}
	return nil
}

// Promote grants the admin role.
func (s *UserService) Promote(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	user, err := s.users.SetRole(ctx, id, models.RoleAdmin)
	if err != nil {
		return nil, notFoundOr(err, "User", id.Hex())
	}
	return user.Sanitized(), nil
}

// GrantMembership upgrades the account with id to premium.
func (s *UserService) GrantMembership(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	user, err := s.users.SetMembershipByID(ctx, id, models.TierPremium)
	if err != nil {
		return nil, notFoundOr(err, "User", id.Hex())
	}
	return user.Sanitized(), nil
}

// GrantMembershipByEmail is the post-payment upgrade. Members may only upgrade
// themselves; admins may upgrade anyone.
func (s *UserService) GrantMembershipByEmail(ctx context.Context, actor *models.User, email string) (*models.User, error) {
	if actor.Email != email && !actor.IsAdmin() {
		return nil, models.NewForbiddenError("You can only update your own membership")
	}
	user, err := s.users.SetMembershipByEmail(ctx, email, models.TierPremium)
	if err != nil {
		return nil, notFoundOr(err, "User", email)
	}
	return user.Sanitized(), nil
}

// Warn appends a moderation warning. Type defaults to "warning".
func (s *UserService) Warn(ctx context.Context, id bson.ObjectID, in WarnInput) (*models.User, error) {
	if err := validation.Check(in); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = "warning"
	}
	user, err := s.users.AddWarning(ctx, id, models.Warning{
		Message: strings.TrimSpace(in.Message),
		Type:    in.Type,
		Date:    time.Now().UTC(),
	})
	if err != nil {
		return nil, notFoundOr(err, "User", id.Hex())
	}
	return user.Sanitized(), nil
}
