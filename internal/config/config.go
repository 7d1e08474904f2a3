package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/matchmaker/internal/queue"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	return cfg
}

// FromEnv builds a Config from lookup. Unset tunables fall back to defaults;
// variables required by an enabled integration are reported as errors.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	e := env{lookup: lookup}

	cfg := Config{
		Server: ServerConfig{
			Port:       e.get("PORT", "8080"),
			LogLevel:   e.get("LOG_LEVEL", "info"),
			InstanceID: e.get("INSTANCE_ID", uuid.NewString()),
		},
		Store: StoreConfig{
			Backend: Backend(e.get("STORE_BACKEND", string(BackendSQLite))),
			DBName:  e.get("DB_NAME", "matchmaker.db"),
		},
		Turso: TursoConfig{
			PrimaryURL: e.get("TURSO_PRIMARY_URL", ""),
			AuthToken:  e.get("TURSO_AUTH_TOKEN", ""),
		},
		Redis: RedisConfig{
			Addr:         e.get("REDIS_ADDR", ""),
			Password:     e.get("REDIS_PASSWORD", ""),
			DB:           e.integer("REDIS_DB", 0),
			DialTimeout:  e.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  e.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: e.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Matchmaking: MatchmakingConfig{
			MatchSize:       e.integer("MATCHMAKING_MATCH_SIZE", 2),
			MaxSkillGap:     e.integer("MATCHMAKING_MAX_SKILL_GAP", 200),
			MaxLatency:      e.integer("MATCHMAKING_MAX_LATENCY", 100),
			Interval:        e.duration("MATCHMAKING_INTERVAL", 2*time.Second),
			LockTTL:         e.duration("MATCHMAKING_LOCK_TTL", 5*time.Second),
			RecordTTL:       e.duration("MATCHMAKING_RECORD_TTL", 5*time.Minute),
			MatchRetention:  e.duration("MATCHMAKING_MATCH_RETENTION", 10*time.Minute),
			StreamMaxLen:    int64(e.integer("MATCHMAKING_STREAM_MAXLEN", 1000)),
			EventsRetention: e.duration("MATCHMAKING_EVENTS_RETENTION", 10*time.Minute),
		},
		PubSub: PubSubConfig{
			ProjectID: e.get("GCP_PROJECT", ""),
			TopicID:   e.get("PUBSUB_TOPIC", ""),
		},
		Slack: SlackConfig{
			Token:     e.get("SLACK_BOT_TOKEN", ""),
			ChannelID: e.get("SLACK_CHANNEL_ID", ""),
			DryRun:    e.boolean("SLACK_DRY_RUN", false),
		},
		Inngest: InngestConfig{
			AppID:      e.get("INNGEST_APP_ID", ""),
			SigningKey: e.get("INNGEST_SIGNING_KEY", ""),
			EventKey:   e.get("INNGEST_EVENT_KEY", ""),
			Dev:        e.boolean("INNGEST_DEV", false),
		},
	}

	ordering, err := queue.ParseOrdering(e.get("MATCHMAKING_ORDERING", queue.FIFO.String()))
	if err != nil {
		e.fail("MATCHMAKING_ORDERING", err)
	}
	cfg.Matchmaking.Ordering = ordering

	switch cfg.Store.Backend {
	case BackendSQLite:
	case BackendRedis:
		e.require("REDIS_ADDR", cfg.Redis.Addr)
	default:
		e.fail("STORE_BACKEND", fmt.Errorf("unknown backend %q", cfg.Store.Backend))
	}
	if cfg.Matchmaking.MatchSize < 2 {
		e.fail("MATCHMAKING_MATCH_SIZE", fmt.Errorf("must be at least 2, got %d", cfg.Matchmaking.MatchSize))
	}
	if cfg.Slack.Enabled() {
		e.require("SLACK_CHANNEL_ID", cfg.Slack.ChannelID)
	}
	if cfg.PubSub.Enabled() {
		e.require("PUBSUB_TOPIC", cfg.PubSub.TopicID)
	}
	if cfg.Inngest.Enabled() && !cfg.Inngest.Dev {
		e.require("INNGEST_SIGNING_KEY", cfg.Inngest.SigningKey)
	}

	if e.err != nil {
		return Config{}, e.err
	}
	return cfg, nil
}

// env collects the first lookup or parse failure.
type env struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *env) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid environment variable %s: %w", key, err)
	}
}

func (e *env) require(key, value string) {
	if value == "" && e.err == nil {
		e.err = fmt.Errorf("required environment variable %s is not set", key)
	}
}

func (e *env) get(key, fallback string) string {
	if value, ok := e.lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func (e *env) integer(key string, fallback int) int {
	raw, ok := e.lookup(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return v
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	raw, ok := e.lookup(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return v
}

func (e *env) boolean(key string, fallback bool) bool {
	raw, ok := e.lookup(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return v
}
