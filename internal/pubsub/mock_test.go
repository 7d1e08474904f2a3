package pubsub

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub"
)

// mockTopic records published messages. It is safe for concurrent use.
type mockTopic struct {
	mu       sync.Mutex
	messages []*pubsub.Message
	err      error
}

func (m *mockTopic) publish(ctx context.Context, msg *pubsub.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.messages = append(m.messages, msg)
	return fmt.Sprintf("server-%d", len(m.messages)), nil
}

func (m *mockTopic) published() []*pubsub.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*pubsub.Message(nil), m.messages...)
}
