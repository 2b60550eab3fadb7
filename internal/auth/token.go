// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer   = "forumhub-api"
	audience = "forumhub-client"
)

var (
	// ErrMissingToken is returned when no token was presented.
	ErrMissingToken = errors.New("token missing")
	// ErrInvalidToken covers bad signatures, malformed tokens and bad claims.
	ErrInvalidToken = errors.New("token invalid")
	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the identity carried by a verified token.
type Claims struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// TokenManager signs and verifies HS256 tokens with a shared secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager issuing tokens valid for ttl.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token whose subject is userID.
func (m *TokenManager) Issue(userID, email string) (string, *Claims, error) {
	if len(m.secret) == 0 {
		return "", nil, errors.New("JWT secret not configured")
	}

	now := m.now()
	exp := now.Add(m.ttl)
	jti := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iss":   issuer,
		"aud":   audience,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   jti,
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, &Claims{UserID: userID, Email: email, TokenID: jti, ExpiresAt: time.Unix(exp.Unix(), 0)}, nil
}

// Verify checks the signature and registered claims of tokenString.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	jti, _ := claims["jti"].(string)

	return &Claims{UserID: sub, Email: email, TokenID: jti, ExpiresAt: exp.Time}, nil
}
