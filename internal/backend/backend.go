// Package backend opens the stores for the configured backend.
package backend

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchmaker/internal/config"
	"github.com/mauv0809/matchmaker/internal/database"
	"github.com/mauv0809/matchmaker/internal/lock"
	"github.com/mauv0809/matchmaker/internal/notifier"
	"github.com/mauv0809/matchmaker/internal/queue"
	"github.com/mauv0809/matchmaker/internal/results"
	"github.com/mauv0809/matchmaker/internal/stats"
	"github.com/redis/go-redis/v9"
)

// Stores groups the state the matchmaker shares between instances.
type Stores struct {
	Pool    queue.WaitingPool
	Guard   lock.Guard
	Matches results.MatchStore
	Events  notifier.Log
	Counter stats.Counter
	// Shared is set when every instance reads and writes the same stores.
	Shared bool
}

// RelayTarget returns the log that events pushed from other instances are
// appended to. A shared backend already holds every instance's events, so it
// has no relay target.
func (s Stores) RelayTarget() notifier.Publisher {
	if s.Shared {
		return nil
	}
	return s.Events
}

// Open connects to the configured backend. The returned teardown closes the connection.
func Open(ctx context.Context, cfg config.Config) (Stores, func(), error) {
	mm := cfg.Matchmaking
	poolOpts := queue.Options{Ordering: mm.Ordering, RecordTTL: mm.RecordTTL}
	eventOpts := notifier.Options{MaxLen: mm.StreamMaxLen, PlayerRetention: mm.EventsRetention}

	switch cfg.Store.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return Stores{}, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Info("Connected to redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		teardown := func() {
			if err := client.Close(); err != nil {
				log.Error("Failed to close redis client", "error", err)
			}
		}
		return Stores{
			Pool:    queue.NewRedis(client, poolOpts),
			Guard:   lock.NewRedis(client, mm.LockTTL),
			Matches: results.NewRedis(client, mm.MatchRetention),
			Events:  notifier.NewRedis(client, eventOpts),
			Counter: stats.NewRedis(client),
			Shared:  true,
		}, teardown, nil

	case config.BackendSQLite, "":
		db, teardown, err := database.InitDB(cfg.Store.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
		if err != nil {
			return Stores{}, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return Stores{
			Pool:    queue.NewStore(db, poolOpts),
			Guard:   lock.NewStore(db, mm.LockTTL),
			Matches: results.NewStore(db, mm.MatchRetention),
			Events:  notifier.NewStore(db, eventOpts),
			Counter: stats.NewStore(db),
		}, teardown, nil

	default:
		return Stores{}, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
