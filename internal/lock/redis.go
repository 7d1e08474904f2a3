package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces lease keys in Redis.
const KeyPrefix = "matchmaking:lock:"

// KEYS[1]: lease key, ARGV[1]: owner token
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// KEYS[1]: lease key, ARGV[1]: owner token, ARGV[2]: ttl in milliseconds
var renewScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`)

var _ Guard = (*redisGuard)(nil)

type redisGuard struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedis creates a Guard whose leases are Redis keys set with NX and PX.
func NewRedis(client redis.UniversalClient, ttl time.Duration) Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisGuard{client: client, ttl: ttl}
}

func (g *redisGuard) Acquire(ctx context.Context, name string) (Lease, bool, error) {
	lease := Lease{Name: name, Token: uuid.NewString(), TTL: g.ttl}
	ok, err := g.client.SetNX(ctx, KeyPrefix+name, lease.Token, g.ttl).Result()
	if err != nil {
		return Lease{}, false, fmt.Errorf("redis error: %w", err)
	}
	if !ok {
		return Lease{}, false, nil
	}
	return lease, true, nil
}

func (g *redisGuard) Release(ctx context.Context, lease Lease) (bool, error) {
	n, err := releaseScript.Run(ctx, g.client, []string{KeyPrefix + lease.Name}, lease.Token).Int()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n == 1, nil
}

func (g *redisGuard) Renew(ctx context.Context, lease Lease) (bool, error) {
	n, err := renewScript.Run(ctx, g.client, []string{KeyPrefix + lease.Name}, lease.Token, g.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n == 1, nil
}
