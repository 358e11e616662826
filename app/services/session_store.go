package services

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStore looks up active admin sessions by their raw bearer token.
type SessionStore interface {
	Exists(ctx context.Context, token string) (bool, error)
}

type redisSessionStore struct {
	rc *redis.Client
}

// NewRedisSessionStore returns a SessionStore backed by redis. Sessions
// are written by the phish server under "session:<token>" keys with a TTL,
// so presence of the key is the liveness check.
func NewRedisSessionStore(rc *redis.Client) SessionStore {
	return &redisSessionStore{rc: rc}
}

func (s *redisSessionStore) Exists(ctx context.Context, token string) (bool, error) {
	if s.rc == nil {
		return false, errors.New("session store not configured")
	}
	n, err := s.rc.Exists(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
