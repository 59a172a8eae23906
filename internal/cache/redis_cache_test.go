package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return server, client
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRedisCache_SetGetTake(t *testing.T) {
	server, client := newTestRedis(t)
	cache := NewRedisCache(client, discardLogger())
	ctx := context.Background()

	type payload struct {
		Email string `json:"email"`
	}

	require.NoError(t, cache.Set(ctx, "code:abc", payload{Email: "a@b.c"}, time.Minute))

	var got payload
	require.NoError(t, cache.Get(ctx, "code:abc", &got))
	assert.Equal(t, "a@b.c", got.Email)

	got = payload{}
	require.NoError(t, cache.Take(ctx, "code:abc", &got))
	assert.Equal(t, "a@b.c", got.Email)

	// one-time read
	assert.ErrorIs(t, cache.Take(ctx, "code:abc", &got), ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "code:ttl", payload{}, time.Minute))
	server.FastForward(2 * time.Minute)
	assert.ErrorIs(t, cache.Get(ctx, "code:ttl", &got), ErrCacheMiss)
}

func TestRedisCache_ExistsAndDelete(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisCache(client, discardLogger())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "revoked:1", true, 0))

	ok, err := cache.Exists(ctx, "revoked:1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, cache.Delete(ctx, "revoked:1"))
	ok, err = cache.Exists(ctx, "revoked:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoundStores_RejectStaleRounds(t *testing.T) {
	_, client := newTestRedis(t)

	stores := map[string]RoundStore{
		"redis":  NewRedisRoundStore(client, time.Hour, discardLogger()),
		"memory": NewMemoryRoundStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userID := "user-" + name

			_, err := store.Load(ctx, userID)
			assert.ErrorIs(t, err, ErrRoundStateNotFound)

			newer := models.NewRoundState(userID)
			newer.Round = 2
			newer.Phase = models.PhasePresenting
			require.NoError(t, store.Save(ctx, newer))

			older := models.NewRoundState(userID)
			older.Round = 1
			older.Phase = models.PhaseEmpty
			assert.ErrorIs(t, store.Save(ctx, older), ErrStaleRound)

			same := *newer
			same.Phase = models.PhaseGraded
			require.NoError(t, store.Save(ctx, &same))

			loaded, err := store.Load(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), loaded.Round)
			assert.Equal(t, models.PhaseGraded, loaded.Phase)
		})
	}
}

func TestRoundSequencers_Increase(t *testing.T) {
	_, client := newTestRedis(t)

	sequencers := map[string]RoundSequencer{
		"redis":  NewRedisRoundSequencer(client, time.Hour),
		"memory": NewMemoryRoundStore(),
	}

	for name, seq := range sequencers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := seq.NextRound(ctx, "u1")
			require.NoError(t, err)
			second, err := seq.NextRound(ctx, "u1")
			require.NoError(t, err)
			other, err := seq.NextRound(ctx, "u2")
			require.NoError(t, err)

			assert.Greater(t, second, first)
			assert.Equal(t, int64(1), other)
		})
	}
}

func TestRoundStores_RejectConcurrentSaveOfSameRound(t *testing.T) {
	_, client := newTestRedis(t)

	stores := map[string]RoundStore{
		"redis":  NewRedisRoundStore(client, time.Hour, discardLogger()),
		"memory": NewMemoryRoundStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userID := "user-" + name

			state := models.NewRoundState(userID)
			state.Round = 1
			state.Phase = models.PhasePresenting
			require.NoError(t, store.Save(ctx, state))

			first, err := store.Load(ctx, userID)
			require.NoError(t, err)
			second, err := store.Load(ctx, userID)
			require.NoError(t, err)

			first.Phase = models.PhaseGraded
			require.NoError(t, store.Save(ctx, first))
			assert.Equal(t, second.Version+1, first.Version)

			second.Favorited = true
			assert.ErrorIs(t, store.Save(ctx, second), ErrRoundConflict)

			loaded, err := store.Load(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, models.PhaseGraded, loaded.Phase)
			assert.False(t, loaded.Favorited)
			assert.Equal(t, first.Version, loaded.Version)
		})
	}
}

func TestRoundSequencers_ContinueFromStoredRound(t *testing.T) {
	_, client := newTestRedis(t)
	memory := NewMemoryRoundStore()

	pairs := map[string]struct {
		store RoundStore
		seq   RoundSequencer
	}{
		"redis":  {NewRedisRoundStore(client, time.Hour, discardLogger()), NewRedisRoundSequencer(client, time.Hour)},
		"memory": {memory, memory},
	}

	for name, pair := range pairs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userID := "user-" + name

			// the counter is gone but the round it fenced is still stored
			state := models.NewRoundState(userID)
			state.Round = 7
			state.Phase = models.PhaseGraded
			require.NoError(t, pair.store.Save(ctx, state))

			next, err := pair.seq.NextRound(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, int64(8), next)

			state.Round = next
			state.Phase = models.PhaseLoading
			assert.NoError(t, pair.store.Save(ctx, state), "the new round is not stale")
		})
	}
}

func TestRedisRoundStore_SaveKeepsCounterAlive(t *testing.T) {
	server, client := newTestRedis(t)
	store := NewRedisRoundStore(client, time.Hour, discardLogger())
	seq := NewRedisRoundSequencer(client, time.Hour)
	ctx := context.Background()

	round, err := seq.NextRound(ctx, "u1")
	require.NoError(t, err)
	server.FastForward(90 * time.Minute)

	state := models.NewRoundState("u1")
	state.Round = round
	require.NoError(t, store.Save(ctx, state))
	assert.Equal(t, 2*time.Hour, server.TTL(roundSeqKey("u1")))

	// the counter now outlives the stored round
	server.FastForward(90 * time.Minute)
	next, err := seq.NextRound(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, round+1, next)
}
