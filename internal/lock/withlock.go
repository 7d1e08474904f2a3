package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// WithLock runs fn while holding the named lease. The lease is renewed every
// third of its TTL; if a renewal fails the context passed to fn is cancelled.
// The lease is always released when fn returns.
func WithLock[T any](ctx context.Context, guard Guard, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	lease, ok, err := guard.Acquire(ctx, name)
	if err != nil {
		return zero, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return zero, ErrNotAcquired
	}

	fnCtx, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})
	renewed := make(chan struct{})
	go func() {
		defer close(renewed)
		keepAlive(fnCtx, guard, lease, done, cancel)
	}()

	defer func() {
		close(done)
		<-renewed
		cancel(nil)
		// Release with a fresh context so a cancelled caller still frees the lease.
		releaseCtx, releaseCancel := context.WithTimeout(context.WithoutCancel(ctx), lease.TTL)
		defer releaseCancel()
		if _, err := guard.Release(releaseCtx, lease); err != nil {
			log.Error("Failed to release lock", "lock", name, "error", err)
		}
	}()

	return fn(fnCtx)
}

var errLeaseLost = errors.New("lock lease lost")

func keepAlive(ctx context.Context, guard Guard, lease Lease, done <-chan struct{}, cancel context.CancelCauseFunc) {
	interval := lease.TTL / 3
	if interval <= 0 {
		interval = DefaultTTL / 3
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := guard.Renew(ctx, lease)
			if err != nil || !ok {
				log.Warn("Lost lock lease", "lock", lease.Name, "error", err)
				cancel(errLeaseLost)
				return
			}
		}
	}
}
