package stats

import "context"

// Counter keys.
const (
	TotalMatches  = "total_matches"
	PlayersJoined = "players_joined"
	PlayersLeft   = "players_left"
)

// Counter keeps named counters that survive restarts.
type Counter interface {
	Increment(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (int64, error)
	GetAll(ctx context.Context) (map[string]int64, error)
}
