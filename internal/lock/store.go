package lock

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Guard = (*store)(nil)

// store keeps leases in the leases table. An expired row is treated as absent.
type store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewStore creates a Guard backed by a SQLite or libsql database.
func NewStore(db *sql.DB, ttl time.Duration) Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &store{db: db, ttl: ttl, now: time.Now}
}

func (s *store) Acquire(ctx context.Context, name string) (Lease, bool, error) {
	lease := Lease{Name: name, Token: uuid.NewString(), TTL: s.ttl}
	now := s.now()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO leases (name, token, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET token = excluded.token, expires_at = excluded.expires_at
		WHERE leases.expires_at <= ?;
	`, name, lease.Token, now.Add(s.ttl).UnixMilli(), now.UnixMilli())
	if err != nil {
		return Lease{}, false, fmt.Errorf("failed to acquire lease %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Lease{}, false, err
	}
	if n != 1 {
		return Lease{}, false, nil
	}
	return lease, true, nil
}

func (s *store) Release(ctx context.Context, lease Lease) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM leases WHERE name = ? AND token = ?", lease.Name, lease.Token)
	if err != nil {
		return false, fmt.Errorf("failed to release lease %s: %w", lease.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *store) Renew(ctx context.Context, lease Lease) (bool, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx,
		"UPDATE leases SET expires_at = ? WHERE name = ? AND token = ? AND expires_at > ?",
		now.Add(s.ttl).UnixMilli(), lease.Name, lease.Token, now.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to renew lease %s: %w", lease.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
