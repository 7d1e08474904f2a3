package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

var _ Counter = (*store)(nil)

// store keeps counters in the metrics table.
type store struct {
	db *sql.DB
}

// NewStore creates a Counter backed by a SQLite or libsql database.
func NewStore(db *sql.DB) Counter {
	return &store{db: db}
}

// Increment upserts a counter key and increments its value by one.
func (s *store) Increment(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metrics (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1;
	`, key)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", key, err)
	}
	log.Debug("Incremented counter", "key", key)
	return nil
}

func (s *store) Get(ctx context.Context, key string) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metrics WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// GetAll returns all counters from the database.
func (s *store) GetAll(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM metrics")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counters := make(map[string]int64)
	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		counters[key] = value
	}
	return counters, rows.Err()
}
