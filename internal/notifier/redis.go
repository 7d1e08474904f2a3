package notifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	GlobalStreamKey       = "matchmaking:stream:matches"
	PlayerStreamKeyPrefix = "matchmaking:stream:player:"
)

var _ Log = (*redisLog)(nil)

// redisLog maps each topic onto a Redis stream.
type redisLog struct {
	client redis.UniversalClient
	opts   Options
}

// NewRedis creates a Log backed by Redis streams.
func NewRedis(client redis.UniversalClient, opts Options) Log {
	return &redisLog{client: client, opts: opts.withDefaults()}
}

func streamKey(topic string) string {
	if id, ok := strings.CutPrefix(topic, playerTopicPrefix); ok {
		return PlayerStreamKeyPrefix + id
	}
	if topic == GlobalTopic {
		return GlobalStreamKey
	}
	return "matchmaking:stream:" + topic
}

func (r *redisLog) Publish(ctx context.Context, topic string, event Event) (string, error) {
	key := streamKey(topic)
	args := &redis.XAddArgs{
		Stream: key,
		Values: encodeFields(event),
	}
	isPlayer := strings.HasPrefix(topic, playerTopicPrefix)
	if !isPlayer {
		args.MaxLen = r.opts.MaxLen
		args.Approx = true
	}

	var id *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		id = pipe.XAdd(ctx, args)
		if isPlayer {
			pipe.Expire(ctx, key, r.opts.PlayerRetention)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to append to %s: %w", key, err)
	}
	return id.Val(), nil
}

func (r *redisLog) Read(ctx context.Context, topic string, afterID string, limit int64) ([]Event, error) {
	start := "-"
	if afterID != "" {
		start = "(" + afterID
	}
	if limit <= 0 {
		limit = 100
	}
	msgs, err := r.client.XRangeN(ctx, streamKey(topic), start, "+", limit).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", topic, err)
	}
	events := make([]Event, 0, len(msgs))
	for _, msg := range msgs {
		e := decodeFields(msg.Values)
		e.ID = msg.ID
		events = append(events, e)
	}
	return events, nil
}

func encodeFields(e Event) map[string]any {
	fields := map[string]any{
		"event":     string(e.Kind),
		"matchId":   e.MatchID,
		"timestamp": e.CreatedAt.UnixMilli(),
	}
	if e.Kind == MatchFound {
		fields["serverRegion"] = e.Region
		return fields
	}
	fields["playerCount"] = e.PlayerCount
	fields["averageSkill"] = e.AverageSkill
	fields["averageLatency"] = e.AverageLatency
	fields["region"] = e.Region
	return fields
}

func decodeFields(values map[string]any) Event {
	str := func(k string) string {
		v, _ := values[k].(string)
		return v
	}
	num := func(k string) int64 {
		n, _ := strconv.ParseInt(str(k), 10, 64)
		return n
	}
	e := Event{
		Kind:           Kind(str("event")),
		MatchID:        str("matchId"),
		PlayerCount:    int(num("playerCount")),
		AverageSkill:   int(num("averageSkill")),
		AverageLatency: int(num("averageLatency")),
		Region:         str("region"),
		CreatedAt:      time.UnixMilli(num("timestamp")),
	}
	if e.Region == "" {
		e.Region = str("serverRegion")
	}
	return e
}
