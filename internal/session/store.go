// Package session persists authenticated principals and short-lived login
// state in Redis, keyed by opaque tokens handed to clients as HttpOnly
// cookies.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/acadex/acadex-api/internal/policy"
)

// ErrNotFound is returned when a token resolves to no live session.
var ErrNotFound = errors.New("session not found")

// Store manages principal sessions and the pre-selected login role.
type Store interface {
	Create(ctx context.Context, principal policy.Principal) (string, error)
	Get(ctx context.Context, token string) (policy.Principal, error)
	Destroy(ctx context.Context, token string) error
	// StashRole records the role picked before the identity-provider
	// round-trip; ConsumeRole returns it exactly once.
	StashRole(ctx context.Context, state, role string) error
	ConsumeRole(ctx context.Context, state string) (string, error)
}

type redisStore struct {
	client  *redis.Client
	ttl     time.Duration
	roleTTL time.Duration
	logger  zerolog.Logger
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &redisStore{
		client:  client,
		ttl:     ttl,
		roleTTL: 10 * time.Minute,
		logger:  logger.With().Str("component", "session_store").Logger(),
	}
}

func sessionKey(token string) string {
	return "session:" + token
}

func roleKey(state string) string {
	return "session:role:" + state
}

func (s *redisStore) Create(ctx context.Context, principal policy.Principal) (string, error) {
	payload, err := json.Marshal(principal)
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(token), payload, s.ttl).Err(); err != nil {
		return "", err
	}

	s.logger.Debug().Uint("user_id", principal.UserID).Msg("session created")

	return token, nil
}

func (s *redisStore) Get(ctx context.Context, token string) (policy.Principal, error) {
	raw, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return policy.Principal{}, ErrNotFound
		}
		return policy.Principal{}, err
	}

	var principal policy.Principal
	if err := json.Unmarshal([]byte(raw), &principal); err != nil {
		return policy.Principal{}, err
	}

	return principal, nil
}

func (s *redisStore) Destroy(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

func (s *redisStore) StashRole(ctx context.Context, state, role string) error {
	return s.client.Set(ctx, roleKey(state), role, s.roleTTL).Err()
}

func (s *redisStore) ConsumeRole(ctx context.Context, state string) (string, error) {
	key := roleKey(state)
	role, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear consumed login role")
	}

	return role, nil
}
