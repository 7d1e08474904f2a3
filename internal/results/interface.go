package results

import (
	"context"
	"time"

	"github.com/mauv0809/matchmaker/internal/model"
)

// DefaultRetention is how long a match stays retrievable by its players.
const DefaultRetention = 10 * time.Minute

// MatchStore records which match each player was placed in.
type MatchStore interface {
	// Save stores the match under every member's id.
	Save(ctx context.Context, match model.Match) error
	// Lookup returns the player's current match, if any.
	Lookup(ctx context.Context, playerID string) (model.Match, bool, error)
	// Delete removes the match from every member.
	Delete(ctx context.Context, match model.Match) error
}
