package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/acadex/acadex-api/internal/policy"
)

func setupStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, NewRedisStore(client, ttl, zerolog.Nop())
}

func TestSessionRoundTrip(t *testing.T) {
	_, store := setupStore(t, time.Hour)

	principal := policy.Principal{UserID: 7, Role: "teacher"}
	token, err := store.Create(context.Background(), principal)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := store.Get(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, principal, got)
}

func TestSessionExpires(t *testing.T) {
	mr, store := setupStore(t, time.Minute)

	token, err := store.Create(context.Background(), policy.Principal{UserID: 7, Role: "student"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(context.Background(), token)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDestroyInvalidatesToken(t *testing.T) {
	_, store := setupStore(t, time.Hour)

	token, err := store.Create(context.Background(), policy.Principal{UserID: 7, Role: "student"})
	require.NoError(t, err)

	require.NoError(t, store.Destroy(context.Background(), token))

	_, err = store.Get(context.Background(), token)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUnknownTokenNotFound(t *testing.T) {
	_, store := setupStore(t, time.Hour)

	_, err := store.Get(context.Background(), "no-such-token")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRoleStashConsumedExactlyOnce(t *testing.T) {
	_, store := setupStore(t, time.Hour)

	require.NoError(t, store.StashRole(context.Background(), "state-1", "teacher"))

	role, err := store.ConsumeRole(context.Background(), "state-1")
	require.NoError(t, err)
	require.Equal(t, "teacher", role)

	_, err = store.ConsumeRole(context.Background(), "state-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRoleStashExpires(t *testing.T) {
	mr, store := setupStore(t, time.Hour)

	require.NoError(t, store.StashRole(context.Background(), "state-1", "student"))

	mr.FastForward(11 * time.Minute)

	_, err := store.ConsumeRole(context.Background(), "state-1")
	require.ErrorIs(t, err, ErrNotFound)
}
