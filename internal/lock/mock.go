package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var _ Guard = (*Mock)(nil)

// Mock is an in-process Guard for tests. It is safe for concurrent use.
type Mock struct {
	mu       sync.Mutex
	held     map[string]string
	seq      int
	acquired int
	released int
	// DenyAcquire makes every Acquire fail as if another owner held the lease.
	DenyAcquire bool
	// FailRenew makes every Renew report the lease as lost.
	FailRenew bool
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{held: make(map[string]string)}
}

func (m *Mock) Acquire(ctx context.Context, name string) (Lease, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DenyAcquire {
		return Lease{}, false, nil
	}
	if _, ok := m.held[name]; ok {
		return Lease{}, false, nil
	}
	m.seq++
	token := fmt.Sprintf("token-%d", m.seq)
	m.held[name] = token
	m.acquired++
	return Lease{Name: name, Token: token, TTL: 30 * time.Millisecond}, true, nil
}

func (m *Mock) Release(ctx context.Context, lease Lease) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[lease.Name] != lease.Token {
		return false, nil
	}
	delete(m.held, lease.Name)
	m.released++
	return true, nil
}

func (m *Mock) Renew(ctx context.Context, lease Lease) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRenew {
		return false, nil
	}
	return m.held[lease.Name] == lease.Token, nil
}

// Held reports whether the named lease is currently taken.
func (m *Mock) Held(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.held[name]
	return ok
}

// Acquired returns the number of successful Acquire calls.
func (m *Mock) Acquired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquired
}

// Released returns the number of successful Release calls.
func (m *Mock) Released() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}
