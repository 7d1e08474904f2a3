package notifier

import (
	"context"
	"fmt"
	"sync"
)

var _ Log = (*Mock)(nil)

// Mock is an in-memory Log for tests. It is safe for concurrent use.
type Mock struct {
	mu     sync.Mutex
	seq    int
	topics map[string][]Event

	// PublishFunc, when set, is called before an event is recorded.
	// A non-nil error aborts the publish.
	PublishFunc func(topic string, event Event) error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{topics: make(map[string][]Event)}
}

func (m *Mock) Publish(ctx context.Context, topic string, event Event) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishFunc != nil {
		if err := m.PublishFunc(topic, event); err != nil {
			return "", err
		}
	}
	m.seq++
	event.ID = fmt.Sprintf("%d", m.seq)
	m.topics[topic] = append(m.topics[topic], event)
	return event.ID, nil
}

func (m *Mock) Read(ctx context.Context, topic string, afterID string, limit int64) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	found := afterID == ""
	for _, e := range m.topics[topic] {
		if !found {
			found = e.ID == afterID
			continue
		}
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

// Events returns a copy of everything published on topic.
func (m *Mock) Events(topic string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.topics[topic]...)
}

// Reset clears all recorded events.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = make(map[string][]Event)
}
