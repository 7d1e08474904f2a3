package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrBufferFull is returned when an Async publisher has no room for an event.
var ErrBufferFull = errors.New("notification buffer full")

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("notifier closed")

var _ Publisher = (*Async)(nil)

type pending struct {
	topic string
	event Event
}

// Async hands events to a background worker that forwards them to the wrapped
// publisher. Publish never waits on the sink; when the buffer is full the
// event is dropped and ErrBufferFull returned.
type Async struct {
	name    string
	next    Publisher
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan pending
	done   chan struct{}
}

// NewAsync wraps next with a queue of buffer events. Each forwarded publish
// gets its own timeout, detached from the caller's context.
func NewAsync(name string, next Publisher, buffer int, timeout time.Duration) *Async {
	if buffer < 1 {
		buffer = 1
	}
	a := &Async{
		name:    name,
		next:    next,
		timeout: timeout,
		queue:   make(chan pending, buffer),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish queues event. The returned id is always empty.
func (a *Async) Publish(_ context.Context, topic string, event Event) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return "", ErrClosed
	}
	select {
	case a.queue <- pending{topic: topic, event: event}:
		return "", nil
	default:
		log.Warn("Notification buffer full, dropping event", "sink", a.name, "topic", topic, "match", event.MatchID)
		return "", ErrBufferFull
	}
}

// Close stops accepting events and waits until the queued ones are forwarded.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
}

func (a *Async) run() {
	defer close(a.done)
	for p := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if _, err := a.next.Publish(ctx, p.topic, p.event); err != nil {
			log.Error("Failed to forward notification", "sink", a.name, "topic", p.topic, "match", p.event.MatchID, "error", err)
		}
		cancel()
	}
}
