package notifier

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Options bounds how much history a log keeps.
type Options struct {
	// MaxLen caps the number of events kept on the global topic.
	MaxLen int64
	// PlayerRetention is how long a player topic outlives its last event.
	PlayerRetention time.Duration
}

const (
	DefaultMaxLen          = 1000
	DefaultPlayerRetention = 10 * time.Minute
)

func (o Options) withDefaults() Options {
	if o.MaxLen <= 0 {
		o.MaxLen = DefaultMaxLen
	}
	if o.PlayerRetention <= 0 {
		o.PlayerRetention = DefaultPlayerRetention
	}
	return o
}

var _ Log = (*store)(nil)

// store keeps every topic in the events table. Entry ids are the row sequence.
type store struct {
	db   *sql.DB
	opts Options
	now  func() time.Time
}

// NewStore creates a Log backed by a SQLite or libsql database.
func NewStore(db *sql.DB, opts Options) Log {
	return &store{db: db, opts: opts.withDefaults(), now: time.Now}
}

func (s *store) Publish(ctx context.Context, topic string, event Event) (string, error) {
	event.ID = ""
	payload, err := msgpack.Marshal(&event)
	if err != nil {
		return "", fmt.Errorf("failed to encode event: %w", err)
	}
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO events (topic, payload, created_at) VALUES (?, ?, ?)",
		topic, payload, now.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to append to %s: %w", topic, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(topic, playerTopicPrefix) {
		_, err = tx.ExecContext(ctx,
			"DELETE FROM events WHERE topic LIKE ? AND created_at <= ?",
			playerTopicPrefix+"%", now.Add(-s.opts.PlayerRetention).UnixMilli(),
		)
	} else {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM events WHERE topic = ? AND seq NOT IN (
				SELECT seq FROM events WHERE topic = ? ORDER BY seq DESC LIMIT ?
			);`,
			topic, topic, s.opts.MaxLen,
		)
	}
	if err != nil {
		return "", fmt.Errorf("failed to trim %s: %w", topic, err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return strconv.FormatInt(seq, 10), nil
}

func (s *store) Read(ctx context.Context, topic string, afterID string, limit int64) ([]Event, error) {
	var after int64
	if afterID != "" {
		var err error
		after, err = strconv.ParseInt(afterID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid event id %q: %w", afterID, err)
		}
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT seq, payload FROM events WHERE topic = ? AND seq > ? ORDER BY seq ASC LIMIT ?",
		topic, after, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", topic, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			seq     int64
			payload []byte
		)
		if err := rows.Scan(&seq, &payload); err != nil {
			return nil, err
		}
		var e Event
		if err := msgpack.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", seq, err)
		}
		e.ID = strconv.FormatInt(seq, 10)
		events = append(events, e)
	}
	return events, rows.Err()
}
