package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces counters in Redis.
const KeyPrefix = "matchmaking:stats:"

var _ Counter = (*redisCounter)(nil)

type redisCounter struct {
	client redis.UniversalClient
}

// NewRedis creates a Counter that INCRs one Redis key per counter.
func NewRedis(client redis.UniversalClient) Counter {
	return &redisCounter{client: client}
}

func (r *redisCounter) Increment(ctx context.Context, key string) error {
	if err := r.client.Incr(ctx, KeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return nil
}

func (r *redisCounter) Get(ctx context.Context, key string) (int64, error) {
	v, err := r.client.Get(ctx, KeyPrefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

func (r *redisCounter) GetAll(ctx context.Context) (map[string]int64, error) {
	counters := make(map[string]int64)
	iter := r.client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := strings.TrimPrefix(iter.Val(), KeyPrefix)
		v, err := r.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		counters[key] = v
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list counters: %w", err)
	}
	return counters, nil
}
