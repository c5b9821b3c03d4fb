package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/ports"
	"github.com/target/storefront-web/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(SessionStoreOptions{Client: client})
	ctx := context.Background()

	user := domainauth.User{ID: "u1", Email: "a@b.com", Name: "A"}
	session := domainauth.Session{
		ID:          "test-session-1",
		State:       domainauth.State{User: &user},
		Credentials: domainauth.Credentials{{Name: "token", Value: "jwt"}},
		UpdatedAt:   testutil.TestTime(),
	}

	require.NoError(t, store.Save(ctx, session))

	retrieved, err := store.Get(ctx, "test-session-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	require.NotNil(t, retrieved.State.User)
	assert.Equal(t, "u1", retrieved.State.User.ID)
	assert.False(t, retrieved.State.IsLoadingUser)
	assert.Equal(t, session.Credentials, retrieved.Credentials)
	assert.True(t, session.UpdatedAt.Equal(retrieved.UpdatedAt))

	ttl := client.TTL(ctx, DefaultSessionPrefix+"test-session-1").Val()
	assert.True(t, ttl > 0 && ttl <= 30*time.Minute)
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(SessionStoreOptions{Client: client})

	_, err := store.Get(context.Background(), "non-existent")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	_, err = store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(SessionStoreOptions{Client: client})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "del", State: domainauth.InitialState()}))
	require.NoError(t, store.Delete(ctx, "del"))

	_, err := store.Get(ctx, "del")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestSessionStore_IdleExpiry(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(SessionStoreOptions{Client: client, IdleTTL: 100 * time.Millisecond})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "ttl", State: domainauth.InitialState()}))
	time.Sleep(250 * time.Millisecond)

	_, err := store.Get(ctx, "ttl")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(SessionStoreOptions{Client: client, Prefix: "test-prefix:"})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "prefix-test"}))
	assert.Equal(t, int64(1), client.Exists(ctx, "test-prefix:prefix-test").Val())
}

func TestSessionStore_SaveEmptyID(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(SessionStoreOptions{Client: client})
	err := store.Save(context.Background(), domainauth.Session{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session ID cannot be empty")
}

func TestSessionStore_GetRefreshesIdleTTL(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(SessionStoreOptions{Client: client, IdleTTL: 300 * time.Millisecond})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "browse", State: domainauth.InitialState()}))
	for range 4 {
		time.Sleep(150 * time.Millisecond)
		_, err := store.Get(ctx, "browse")
		require.NoError(t, err, "reads keep the session alive")
	}

	time.Sleep(500 * time.Millisecond)
	_, err := store.Get(ctx, "browse")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_Update(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(SessionStoreOptions{Client: client, IdleTTL: time.Minute})
	ctx := context.Background()

	t.Run("applies fn and saves", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domainauth.Session{ID: "upd-1", State: domainauth.InitialState()}))

		got, err := store.Update(ctx, "upd-1", func(sess *domainauth.Session) {
			sess.State = domainauth.Reduce(sess.State, domainauth.FetchFulfilled(domainauth.User{ID: "u1"}))
		})
		require.NoError(t, err)
		require.NotNil(t, got.State.User)

		stored, err := store.Get(ctx, "upd-1")
		require.NoError(t, err)
		require.NotNil(t, stored.State.User)
		assert.Equal(t, "u1", stored.State.User.ID)
		assert.Positive(t, client.TTL(ctx, DefaultSessionPrefix+"upd-1").Val())
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := store.Update(ctx, "upd-missing", func(*domainauth.Session) {})
		assert.ErrorIs(t, err, ports.ErrSessionNotFound)

		_, err = store.Update(ctx, "", func(*domainauth.Session) {})
		assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	})

	t.Run("write from another instance retries instead of being lost", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domainauth.Session{ID: "upd-2", State: domainauth.InitialState()}))
		other := NewSessionStore(SessionStoreOptions{Client: client, IdleTTL: time.Minute})

		runs := 0
		got, err := store.Update(ctx, "upd-2", func(sess *domainauth.Session) {
			runs++
			if runs == 1 {
				// Lands after this WATCH, before EXEC.
				require.NoError(t, other.Save(ctx, domainauth.Session{
					ID:          "upd-2",
					State:       domainauth.Reduce(domainauth.InitialState(), domainauth.Logout()),
					Credentials: domainauth.Credentials{{Name: "token", Value: "b"}},
				}))
			}
			sess.State = domainauth.Reduce(sess.State, domainauth.FetchRejected(domainauth.NotAuthenticatedMessage))
		})
		require.NoError(t, err)
		assert.Equal(t, 2, runs)
		assert.Equal(t, domainauth.Credentials{{Name: "token", Value: "b"}}, got.Credentials)
	})

	t.Run("gives up when every attempt conflicts", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domainauth.Session{ID: "upd-3"}))
		other := NewSessionStore(SessionStoreOptions{Client: client, IdleTTL: time.Minute})

		runs := 0
		_, err := store.Update(ctx, "upd-3", func(*domainauth.Session) {
			runs++
			require.NoError(t, other.Save(ctx, domainauth.Session{ID: "upd-3"}))
		})
		assert.ErrorIs(t, err, ports.ErrSessionConflict)
		assert.Equal(t, maxUpdateAttempts, runs)
	})
}
