package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned by WithLock when another owner holds the lease.
var ErrNotAcquired = errors.New("lock not acquired")

// DefaultTTL bounds how long a crashed owner can block others.
const DefaultTTL = 5 * time.Second

// Lease is a held lock. Token identifies the owner.
type Lease struct {
	Name  string
	Token string
	TTL   time.Duration
}

// Guard grants named leases that expire after a TTL.
type Guard interface {
	// Acquire makes a single non-blocking attempt to take the lease.
	Acquire(ctx context.Context, name string) (Lease, bool, error)
	// Release drops the lease only if it is still owned by lease.Token.
	Release(ctx context.Context, lease Lease) (bool, error)
	// Renew extends the lease TTL only if it is still owned by lease.Token.
	Renew(ctx context.Context, lease Lease) (bool, error)
}
