package queue

import (
	"context"
	"iter"

	"github.com/mauv0809/matchmaker/internal/model"
)

// WaitingPool is the ordered set of players waiting for a match.
// Implementations are safe for concurrent use from many goroutines and processes.
type WaitingPool interface {
	// Enqueue inserts the player, replacing any existing entry with the same id.
	Enqueue(ctx context.Context, player model.Player) error
	// Dequeue removes the player and reports whether an entry was removed.
	Dequeue(ctx context.Context, playerID string) (bool, error)
	// Snapshot yields the waiting players in pool order. Entries whose record
	// has expired are pruned while iterating. The sequence can be ranged once.
	Snapshot(ctx context.Context) iter.Seq2[model.Player, error]
	Size(ctx context.Context) (int64, error)
	Contains(ctx context.Context, playerID string) (bool, error)
	// PositionOf returns the 1-based position of the player in pool order.
	PositionOf(ctx context.Context, playerID string) (int64, bool, error)
	Clear(ctx context.Context) error
}
