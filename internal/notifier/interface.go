package notifier

import (
	"context"

	"github.com/mauv0809/matchmaker/internal/model"
)

// Publisher appends events to named topics.
type Publisher interface {
	// Publish appends event to topic and returns the id the log assigned to it.
	Publish(ctx context.Context, topic string, event Event) (string, error)
}

// Log is a Publisher whose topics can be read back.
type Log interface {
	Publisher
	// Read returns up to limit events of topic published after afterID,
	// oldest first. An empty afterID reads from the beginning.
	Read(ctx context.Context, topic string, afterID string, limit int64) ([]Event, error)
}

// MatchPublisher announces committed matches.
type MatchPublisher interface {
	NotifyMatch(ctx context.Context, match model.Match) error
}
