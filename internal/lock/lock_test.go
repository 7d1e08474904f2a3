package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mauv0809/matchmaker/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGuard(t *testing.T) {
	db := testutils.NewDB(t)
	runGuardSuite(t, func(t *testing.T) Guard {
		_, err := db.Exec("DELETE FROM leases")
		require.NoError(t, err)
		return NewStore(db, time.Second)
	})
}

func TestRedisGuard(t *testing.T) {
	client := testutils.NewRedis(t)
	runGuardSuite(t, func(t *testing.T) Guard {
		require.NoError(t, client.FlushDB(context.Background()).Err())
		return NewRedis(client, time.Second)
	})
}

func TestMockGuard(t *testing.T) {
	runGuardSuite(t, func(t *testing.T) Guard { return NewMock() })
}

func runGuardSuite(t *testing.T, newGuard func(t *testing.T) Guard) {
	ctx := context.Background()

	t.Run("single owner", func(t *testing.T) {
		g := newGuard(t)
		lease, ok, err := g.Acquire(ctx, "matchmaking-process")
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = g.Acquire(ctx, "matchmaking-process")
		require.NoError(t, err)
		assert.False(t, ok, "second acquire must fail while the lease is held")

		released, err := g.Release(ctx, lease)
		require.NoError(t, err)
		assert.True(t, released)

		_, ok, err = g.Acquire(ctx, "matchmaking-process")
		require.NoError(t, err)
		assert.True(t, ok, "lease is free again after release")
	})

	t.Run("release never clears another owner", func(t *testing.T) {
		g := newGuard(t)
		lease, ok, err := g.Acquire(ctx, "job")
		require.NoError(t, err)
		require.True(t, ok)

		stranger := Lease{Name: "job", Token: "someone-else", TTL: lease.TTL}
		released, err := g.Release(ctx, stranger)
		require.NoError(t, err)
		assert.False(t, released)

		renewed, err := g.Renew(ctx, stranger)
		require.NoError(t, err)
		assert.False(t, renewed)

		renewed, err = g.Renew(ctx, lease)
		require.NoError(t, err)
		assert.True(t, renewed)
	})

	t.Run("independent names", func(t *testing.T) {
		g := newGuard(t)
		_, ok, err := g.Acquire(ctx, "a")
		require.NoError(t, err)
		require.True(t, ok)
		_, ok, err = g.Acquire(ctx, "b")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("concurrent acquirers", func(t *testing.T) {
		g := newGuard(t)
		var winners atomic.Int32
		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, ok, err := g.Acquire(ctx, "race")
				assert.NoError(t, err)
				if ok {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), winners.Load())
	})
}

func TestStoreGuard_ExpiredLeaseCanBeTaken(t *testing.T) {
	db := testutils.NewDB(t)
	now := time.UnixMilli(1_700_000_000_000)
	g := &store{db: db, ttl: time.Second, now: func() time.Time { return now }}
	ctx := context.Background()

	first, ok, err := g.Acquire(ctx, "job")
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	second, ok, err := g.Acquire(ctx, "job")
	require.NoError(t, err)
	require.True(t, ok, "an expired lease is free")

	// The stale owner can neither renew nor release the new owner's lease.
	renewed, err := g.Renew(ctx, first)
	require.NoError(t, err)
	assert.False(t, renewed)
	released, err := g.Release(ctx, first)
	require.NoError(t, err)
	assert.False(t, released)

	released, err = g.Release(ctx, second)
	require.NoError(t, err)
	assert.True(t, released)
}

func TestWithLock(t *testing.T) {
	ctx := context.Background()

	t.Run("runs fn and releases", func(t *testing.T) {
		g := NewMock()
		got, err := WithLock(ctx, g, "job", func(ctx context.Context) (int, error) {
			assert.True(t, g.Held("job"))
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.False(t, g.Held("job"))
		assert.Equal(t, 1, g.Released())
	})

	t.Run("releases when fn fails", func(t *testing.T) {
		g := NewMock()
		boom := errors.New("boom")
		_, err := WithLock(ctx, g, "job", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.False(t, g.Held("job"))
	})

	t.Run("releases when fn panics", func(t *testing.T) {
		g := NewMock()
		assert.Panics(t, func() {
			_, _ = WithLock(ctx, g, "job", func(ctx context.Context) (struct{}, error) {
				panic("boom")
			})
		})
		assert.False(t, g.Held("job"))
	})

	t.Run("not acquired", func(t *testing.T) {
		g := NewMock()
		g.DenyAcquire = true
		called := false
		_, err := WithLock(ctx, g, "job", func(ctx context.Context) (struct{}, error) {
			called = true
			return struct{}{}, nil
		})
		assert.ErrorIs(t, err, ErrNotAcquired)
		assert.False(t, called)
	})

	t.Run("lost lease cancels fn", func(t *testing.T) {
		g := NewMock()
		g.FailRenew = true
		_, err := WithLock(ctx, g, "job", func(ctx context.Context) (struct{}, error) {
			select {
			case <-ctx.Done():
				return struct{}{}, context.Cause(ctx)
			case <-time.After(2 * time.Second):
				return struct{}{}, nil
			}
		})
		assert.ErrorIs(t, err, errLeaseLost)
	})

	t.Run("renews while fn runs", func(t *testing.T) {
		g := NewMock()
		_, err := WithLock(ctx, g, "job", func(ctx context.Context) (struct{}, error) {
			time.Sleep(50 * time.Millisecond)
			return struct{}{}, ctx.Err()
		})
		assert.NoError(t, err)
	})
}
