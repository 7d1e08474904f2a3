package queue

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mauv0809/matchmaker/internal/model"
)

// ErrSnapshotConsumed is yielded when a snapshot is ranged more than once.
var ErrSnapshotConsumed = errors.New("queue snapshot already consumed")

// Ordering selects how the pool sorts waiting players.
type Ordering int

const (
	// FIFO orders players by arrival time, oldest first.
	FIFO Ordering = iota
	// Priority favours players that waited longer or sit far from the average rating.
	Priority
)

func (o Ordering) String() string {
	switch o {
	case FIFO:
		return "fifo"
	case Priority:
		return "priority"
	default:
		return fmt.Sprintf("ordering(%d)", int(o))
	}
}

// ParseOrdering accepts "fifo" or "priority" in any case.
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fifo":
		return FIFO, nil
	case "priority":
		return Priority, nil
	default:
		return FIFO, fmt.Errorf("unknown queue ordering %q", s)
	}
}

const (
	DefaultRecordTTL = 5 * time.Minute
	snapshotBatch    = 100
)

// Options configures a pool backend.
type Options struct {
	Ordering Ordering
	// RecordTTL bounds how long a player record outlives its last enqueue.
	RecordTTL time.Duration
	// Now is the clock used for scores and expiry. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.RecordTTL <= 0 {
		o.RecordTTL = DefaultRecordTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// score computes the ordering key of a player at enqueue time.
func (o Options) score(p model.Player) float64 {
	now := o.Now()
	switch o.Ordering {
	case Priority:
		wait := 0.0
		if !p.QueuedAt.IsZero() {
			wait = math.Max(0, now.Sub(p.QueuedAt).Seconds())
		}
		return wait + math.Abs(float64(p.SkillRating-model.SkillMidpoint))/10.0
	default:
		arrival := p.QueuedAt
		if arrival.IsZero() {
			arrival = now
		}
		// Microseconds since the epoch stay exact in a float64.
		return float64(arrival.UnixMicro())
	}
}

// descending reports whether higher scores come first.
func (o Options) descending() bool {
	return o.Ordering == Priority
}

// once guards the single-use contract of a snapshot.
type once struct {
	used atomic.Bool
}

func (o *once) take() bool {
	return o.used.CompareAndSwap(false, true)
}
