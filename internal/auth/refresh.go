package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const refreshPrefix = "refresh:"

// RefreshStore keeps opaque refresh credentials in Redis. Each credential
// maps to the username it was issued for and expires with the store TTL.
type RefreshStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRefreshStore(rdb *redis.Client, ttl time.Duration) *RefreshStore {
	return &RefreshStore{rdb: rdb, ttl: ttl}
}

// Create issues a new refresh credential for the user.
func (s *RefreshStore) Create(ctx context.Context, username string) (string, error) {
	token := uuid.New().String()
	err := s.rdb.Set(ctx, refreshPrefix+token, username, s.ttl).Err()
	return token, err
}

// Get returns the username a credential was issued for, or "" if it is
// unknown or expired.
func (s *RefreshStore) Get(ctx context.Context, token string) (string, error) {
	val, err := s.rdb.Get(ctx, refreshPrefix+token).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Delete revokes a refresh credential.
func (s *RefreshStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, refreshPrefix+token).Err()
}
