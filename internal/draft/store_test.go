package draft

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("one")))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("one"), got)

	require.NoError(t, s.Set(ctx, "k", []byte("two")))
	got, _, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func exerciseClaim(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	release, ok, err := s.Claim(ctx, "k:completing", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = s.Claim(ctx, "k:completing", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "claim must be exclusive while held")

	_, ok, err = s.Claim(ctx, "other:completing", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "claims on other keys are independent")

	require.NoError(t, release(ctx))
	release, ok, err = s.Claim(ctx, "k:completing", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, release(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
	exerciseClaim(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreClaimLapses(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0)
	s.now = func() time.Time { return now }

	staleRelease, ok, err := s.Claim(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok, err = s.Claim(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok, "lapsed claim can be retaken")

	// The first holder's late release must not free the new claim.
	require.NoError(t, staleRelease(ctx))
	_, ok, err = s.Claim(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	now = now.Add(59 * time.Minute)
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", 0, 30*time.Minute)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Ping(context.Background()))
	exerciseStore(t, s)
	exerciseClaim(t, s)
}

func TestRedisStoreClaimLapses(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", 0, time.Hour)
	t.Cleanup(func() { _ = s.Close() })

	staleRelease, ok, err := s.Claim(ctx, "k:completing", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)
	_, ok, err = s.Claim(ctx, "k:completing", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, staleRelease(ctx))
	assert.True(t, mr.Exists("k:completing"), "late release must not drop the new holder's claim")
}

func TestRedisStoreRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", 0, 30*time.Minute)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	mr.FastForward(20 * time.Minute)
	require.NoError(t, s.Set(ctx, "k", []byte("v2")))
	mr.FastForward(20 * time.Minute)

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", string(got))

	mr.FastForward(11 * time.Minute)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerOverRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), "", 0, time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	rec := &fakeRecorder{}
	m := NewManager(store, rec)

	s := m.Session(primitive.NewObjectID(), "tab")
	_, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.AddExercise(ctx, ref("Hip Thrust", "glutes"))
	require.NoError(t, err)
	_, err = s.AddSet(ctx, DraftSet{Weight: 185, Reps: 8})
	require.NoError(t, err)

	require.True(t, mr.Exists(s.Key()))
	require.NoError(t, mr.Set(s.Key(), "{broken"))
	d, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)
}
