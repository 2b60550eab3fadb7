package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "blacklist:"

// RevocationStore remembers revoked token ids in Redis until they expire.
// With a nil client revocation is disabled.
type RevocationStore struct {
	rdb *redis.Client
}

// NewRevocationStore wraps rdb, which may be nil.
func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb}
}

// Enabled reports whether revocations are persisted.
func (s *RevocationStore) Enabled() bool {
	return s != nil && s.rdb != nil
}

// Revoke marks tokenID as revoked until expiresAt.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if !s.Enabled() || tokenID == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

// IsRevoked reports whether tokenID was revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !s.Enabled() || tokenID == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
