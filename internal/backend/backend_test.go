package backend

import (
	"context"
	"testing"

	"github.com/mauv0809/matchmaker/internal/config"
	"github.com/mauv0809/matchmaker/internal/model"
	"github.com/mauv0809/matchmaker/internal/notifier"
	"github.com/mauv0809/matchmaker/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, vars map[string]string) config.Config {
	t.Helper()
	cfg, err := config.FromEnv(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
	require.NoError(t, err)
	return cfg
}

func exercise(t *testing.T, stores Stores) {
	t.Helper()
	ctx := context.Background()
	player := model.Player{ID: "p1", Username: "Alice", SkillRating: 1500, Latency: 40, Region: "us-east"}

	require.NoError(t, stores.Pool.Enqueue(ctx, player))
	size, err := stores.Pool.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	lease, ok, err := stores.Guard.Acquire(ctx, "backend-test")
	require.NoError(t, err)
	require.True(t, ok)
	released, err := stores.Guard.Release(ctx, lease)
	require.NoError(t, err)
	assert.True(t, released)

	require.NoError(t, stores.Counter.Increment(ctx, "backend_test"))
	n, err := stores.Counter.Get(ctx, "backend_test")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, found, err := stores.Matches.Lookup(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, found)
	require.NotNil(t, stores.Events)
}

func TestOpen_SQLite(t *testing.T) {
	cfg := testConfig(t, map[string]string{"DB_NAME": ":memory:"})
	stores, teardown, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(teardown)
	exercise(t, stores)
	assert.False(t, stores.Shared)
	assert.NotNil(t, stores.RelayTarget(), "local events need pushes from other instances")
}

func TestOpen_Redis(t *testing.T) {
	client := testutils.NewRedis(t)
	cfg := testConfig(t, map[string]string{"STORE_BACKEND": "redis", "REDIS_ADDR": client.Options().Addr})
	stores, teardown, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(teardown)
	exercise(t, stores)
	assert.True(t, stores.Shared)
	assert.Nil(t, stores.RelayTarget(), "shared streams must not be appended to twice")
}

func TestRelayTarget(t *testing.T) {
	local := Stores{Events: notifier.NewMock()}
	assert.NotNil(t, local.RelayTarget())

	shared := Stores{Events: notifier.NewMock(), Shared: true}
	assert.Nil(t, shared.RelayTarget())
}

func TestOpen_RedisUnreachable(t *testing.T) {
	cfg := testConfig(t, map[string]string{"STORE_BACKEND": "redis", "REDIS_ADDR": "127.0.0.1:1"})
	_, _, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}
