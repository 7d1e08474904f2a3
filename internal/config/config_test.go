package config

import (
	"testing"
	"time"

	"github.com/mauv0809/matchmaker/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.NotEmpty(t, cfg.Server.InstanceID)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "matchmaker.db", cfg.Store.DBName)

	mm := cfg.Matchmaking
	assert.Equal(t, 2, mm.MatchSize)
	assert.Equal(t, 200, mm.MaxSkillGap)
	assert.Equal(t, 100, mm.MaxLatency)
	assert.Equal(t, 2*time.Second, mm.Interval)
	assert.Equal(t, 5*time.Second, mm.LockTTL)
	assert.Equal(t, 5*time.Minute, mm.RecordTTL)
	assert.Equal(t, 10*time.Minute, mm.MatchRetention)
	assert.Equal(t, queue.FIFO, mm.Ordering)

	assert.False(t, cfg.Slack.Enabled())
	assert.False(t, cfg.PubSub.Enabled())
	assert.False(t, cfg.Inngest.Enabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"STORE_BACKEND":          "redis",
		"REDIS_ADDR":             "localhost:6379",
		"REDIS_DB":               "3",
		"MATCHMAKING_ORDERING":   "Priority",
		"MATCHMAKING_MATCH_SIZE": "4",
		"MATCHMAKING_INTERVAL":   "500ms",
		"SLACK_BOT_TOKEN":        "xoxb-test",
		"SLACK_CHANNEL_ID":       "C123",
		"SLACK_DRY_RUN":          "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, queue.Priority, cfg.Matchmaking.Ordering)
	assert.Equal(t, 4, cfg.Matchmaking.MatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Matchmaking.Interval)
	assert.True(t, cfg.Slack.Enabled())
	assert.True(t, cfg.Slack.DryRun)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"redis without address", map[string]string{"STORE_BACKEND": "redis"}, "REDIS_ADDR"},
		{"unknown backend", map[string]string{"STORE_BACKEND": "mongo"}, "STORE_BACKEND"},
		{"bad ordering", map[string]string{"MATCHMAKING_ORDERING": "random"}, "MATCHMAKING_ORDERING"},
		{"bad duration", map[string]string{"MATCHMAKING_INTERVAL": "soon"}, "MATCHMAKING_INTERVAL"},
		{"match size too small", map[string]string{"MATCHMAKING_MATCH_SIZE": "1"}, "MATCHMAKING_MATCH_SIZE"},
		{"slack without channel", map[string]string{"SLACK_BOT_TOKEN": "xoxb"}, "SLACK_CHANNEL_ID"},
		{"pubsub without topic", map[string]string{"GCP_PROJECT": "proj"}, "PUBSUB_TOPIC"},
		{"inngest without key", map[string]string{"INNGEST_APP_ID": "mm"}, "INNGEST_SIGNING_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(tt.vars))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
