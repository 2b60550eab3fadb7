package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultBadge is granted to every new account.
const DefaultBadge = "bronze"

// Warning is a moderation notice attached to a user.
type Warning struct {
	Message string    `bson:"message" json:"message"`
	Type    string    `bson:"type" json:"type"`
	Date    time.Time `bson:"date" json:"date"`
}

// User is an account in the users collection.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PhotoURL     string        `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	PasswordHash string        `bson:"password,omitempty" json:"-"`
	Role         string        `bson:"role" json:"role"`
	// Membership and IsMember are the two stored representations of the tier; read through Tier().
	Membership MembershipTier `bson:"membership,omitempty" json:"membership,omitempty"`
	IsMember   bool           `bson:"isMember" json:"isMember"`
	Badges     []string       `bson:"badges" json:"badges"`
	Warnings   []Warning      `bson:"warnings,omitempty" json:"warnings,omitempty"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt"`
}

// NewUser returns a user with the defaults every fresh account gets.
func NewUser(name, email, photoURL string) *User {
	return &User{
		Name:       name,
		Email:      email,
		PhotoURL:   photoURL,
		Role:       RoleUser,
		Membership: TierFree,
		IsMember:   false,
		Badges:     []string{DefaultBadge},
		CreatedAt:  time.Now().UTC(),
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Tier resolves the user's membership tier from whichever representation is stored.
func (u *User) Tier() MembershipTier {
	return ResolveTier(u.Membership, u.IsMember)
}

// Sanitized returns a copy without the password hash.
func (u *User) Sanitized() *User {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

// Profile is the public snapshot of a user embedded in read models.
type Profile struct {
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	PhotoURL string `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
}

// ProfileOf builds a Profile from a user.
func ProfileOf(u *User) Profile {
	return Profile{Name: u.Name, Email: u.Email, PhotoURL: u.PhotoURL}
}
