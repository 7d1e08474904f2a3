package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchmaker/internal/model"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces per-player match keys in Redis.
const KeyPrefix = "matchmaking:match:"

var _ MatchStore = (*redisStore)(nil)

type redisStore struct {
	client    redis.UniversalClient
	retention time.Duration
}

// NewRedis creates a MatchStore that keeps each assignment in a key with a TTL.
func NewRedis(client redis.UniversalClient, retention time.Duration) MatchStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &redisStore{client: client, retention: retention}
}

func (r *redisStore) Save(ctx context.Context, match model.Match) error {
	payload, err := model.EncodeMatch(match)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range match.Players {
			pipe.Set(ctx, KeyPrefix+p.ID, payload, r.retention)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store match %s: %w", match.ID, err)
	}
	log.Debug("Stored match", "match", match.ID, "players", len(match.Players))
	return nil
}

func (r *redisStore) Lookup(ctx context.Context, playerID string) (model.Match, bool, error) {
	payload, err := r.client.Get(ctx, KeyPrefix+playerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Match{}, false, nil
	}
	if err != nil {
		return model.Match{}, false, fmt.Errorf("failed to look up match for %s: %w", playerID, err)
	}
	match, err := model.DecodeMatch(payload)
	if err != nil {
		return model.Match{}, false, err
	}
	return match, true, nil
}

func (r *redisStore) Delete(ctx context.Context, match model.Match) error {
	keys := make([]string, 0, len(match.Players))
	for _, p := range match.Players {
		keys = append(keys, KeyPrefix+p.ID)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete match %s: %w", match.ID, err)
	}
	return nil
}
