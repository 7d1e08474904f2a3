package stats

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchmaker/internal/metrics"
)

var _ metrics.Metrics = (*Observer)(nil)

// DefaultBuffer is how many increments an Observer holds before it drops.
const DefaultBuffer = 256

// Observer persists the lifetime totals among the metrics it receives.
// Increments are queued and written by a background worker, so callers never
// wait on the counter store. Close flushes what is queued.
type Observer struct {
	metrics.Nop
	counter Counter
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	keys   chan string
	done   chan struct{}
}

// NewObserver returns a metrics.Metrics that increments counter.
func NewObserver(counter Counter) *Observer {
	return NewBufferedObserver(counter, DefaultBuffer)
}

// NewBufferedObserver is NewObserver with an explicit queue size.
func NewBufferedObserver(counter Counter, buffer int) *Observer {
	if buffer < 1 {
		buffer = 1
	}
	o := &Observer{
		counter: counter,
		timeout: 2 * time.Second,
		keys:    make(chan string, buffer),
		done:    make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *Observer) IncMatchesCreated() {
	o.increment(TotalMatches)
}

func (o *Observer) IncPlayersJoined() {
	o.increment(PlayersJoined)
}

func (o *Observer) IncPlayersLeft() {
	o.increment(PlayersLeft)
}

// Close stops accepting increments and waits until the queued ones are written.
func (o *Observer) Close() {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.keys)
	}
	o.mu.Unlock()
	<-o.done
}

func (o *Observer) increment(key string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		log.Warn("Counter increment after close", "key", key)
		return
	}
	select {
	case o.keys <- key:
	default:
		log.Warn("Counter buffer full, dropping increment", "key", key)
	}
}

func (o *Observer) run() {
	defer close(o.done)
	for key := range o.keys {
		ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
		if err := o.counter.Increment(ctx, key); err != nil {
			log.Error("Failed to persist counter", "key", key, "error", err)
		}
		cancel()
	}
}
