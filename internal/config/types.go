package config

import (
	"time"

	"github.com/mauv0809/matchmaker/internal/queue"
)

// Backend selects where the matchmaking state lives.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig
	Store       StoreConfig
	Turso       TursoConfig
	Redis       RedisConfig
	Matchmaking MatchmakingConfig
	PubSub      PubSubConfig
	Slack       SlackConfig
	Inngest     InngestConfig
}

type ServerConfig struct {
	Port     string
	LogLevel string
	// InstanceID tags outgoing Pub/Sub messages so pushes from this instance can be skipped.
	InstanceID string
}

type StoreConfig struct {
	Backend Backend
	DBName  string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MatchmakingConfig struct {
	MatchSize       int
	MaxSkillGap     int
	MaxLatency      int
	Interval        time.Duration
	LockTTL         time.Duration
	RecordTTL       time.Duration
	MatchRetention  time.Duration
	Ordering        queue.Ordering
	StreamMaxLen    int64
	EventsRetention time.Duration
}

type PubSubConfig struct {
	ProjectID string
	TopicID   string
}

// Enabled reports whether Pub/Sub fan-out is configured.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != ""
}

type SlackConfig struct {
	Token     string
	ChannelID string
	DryRun    bool
}

func (c SlackConfig) Enabled() bool {
	return c.Token != ""
}

type InngestConfig struct {
	AppID      string
	SigningKey string
	EventKey   string
	Dev        bool
}

func (c InngestConfig) Enabled() bool {
	return c.AppID != ""
}
