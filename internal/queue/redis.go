package queue

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchmaker/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	QueueKey        = "matchmaking:queue"
	PlayerKeyPrefix = "matchmaking:player:"
)

var _ WaitingPool = (*redisPool)(nil)

// redisPool keeps the ordering index in a sorted set and each player record
// under its own key with a TTL.
type redisPool struct {
	client redis.UniversalClient
	opts   Options
}

// NewRedis creates a WaitingPool backed by Redis.
func NewRedis(client redis.UniversalClient, opts Options) WaitingPool {
	return &redisPool{client: client, opts: opts.withDefaults()}
}

func playerKey(id string) string {
	return PlayerKeyPrefix + id
}

func (r *redisPool) Enqueue(ctx context.Context, player model.Player) error {
	payload, err := model.EncodePlayer(player)
	if err != nil {
		return err
	}
	score := r.opts.score(player)

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, playerKey(player.ID), payload, r.opts.RecordTTL)
		pipe.ZAdd(ctx, QueueKey, redis.Z{Score: score, Member: player.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue player %s: %w", player.ID, err)
	}
	log.Debug("Player enqueued", "player", player.ID, "score", score)
	return nil
}

func (r *redisPool) Dequeue(ctx context.Context, playerID string) (bool, error) {
	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRem(ctx, QueueKey, playerID)
		pipe.Del(ctx, playerKey(playerID))
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to dequeue player %s: %w", playerID, err)
	}
	return removed.Val() > 0, nil
}

func (r *redisPool) Snapshot(ctx context.Context) iter.Seq2[model.Player, error] {
	guard := &once{}
	return func(yield func(model.Player, error) bool) {
		if !guard.take() {
			yield(model.Player{}, ErrSnapshotConsumed)
			return
		}

		var (
			ids []string
			err error
		)
		if r.opts.descending() {
			ids, err = r.client.ZRevRange(ctx, QueueKey, 0, -1).Result()
		} else {
			ids, err = r.client.ZRange(ctx, QueueKey, 0, -1).Result()
		}
		if err != nil {
			yield(model.Player{}, fmt.Errorf("failed to read queue order: %w", err))
			return
		}

		for start := 0; start < len(ids); start += snapshotBatch {
			batch := ids[start:min(start+snapshotBatch, len(ids))]
			keys := make([]string, len(batch))
			for i, id := range batch {
				keys[i] = playerKey(id)
			}
			values, err := r.client.MGet(ctx, keys...).Result()
			if err != nil {
				yield(model.Player{}, fmt.Errorf("failed to load player records: %w", err))
				return
			}
			for i, id := range batch {
				player, ok := decodeValue(id, values[i])
				if !ok {
					r.prune(ctx, id)
					continue
				}
				if !yield(player, nil) {
					return
				}
			}
		}
	}
}

func decodeValue(id string, v any) (model.Player, bool) {
	var raw []byte
	switch val := v.(type) {
	case string:
		raw = []byte(val)
	case []byte:
		raw = val
	default:
		return model.Player{}, false
	}
	player, err := model.DecodePlayer(raw)
	if err != nil {
		log.Error("Failed to decode queued player", "player", id, "error", err)
		return model.Player{}, false
	}
	return player, true
}

func (r *redisPool) prune(ctx context.Context, playerID string) {
	log.Warn("Pruned stale queue entry", "player", playerID)
	if _, err := r.Dequeue(ctx, playerID); err != nil {
		log.Error("Failed to prune stale queue entry", "player", playerID, "error", err)
	}
}

func (r *redisPool) Size(ctx context.Context) (int64, error) {
	n, err := r.client.ZCard(ctx, QueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}

func (r *redisPool) Contains(ctx context.Context, playerID string) (bool, error) {
	err := r.client.ZScore(ctx, QueueKey, playerID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up player %s: %w", playerID, err)
	}
	return true, nil
}

func (r *redisPool) PositionOf(ctx context.Context, playerID string) (int64, bool, error) {
	var cmd *redis.IntCmd
	if r.opts.descending() {
		cmd = r.client.ZRevRank(ctx, QueueKey, playerID)
	} else {
		cmd = r.client.ZRank(ctx, QueueKey, playerID)
	}
	rank, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to rank player %s: %w", playerID, err)
	}
	return rank + 1, true, nil
}

// Clear removes the ordering index. Player records expire on their own.
func (r *redisPool) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, QueueKey).Err(); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	log.Info("Cleared matchmaking queue")
	return nil
}
