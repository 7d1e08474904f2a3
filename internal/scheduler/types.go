package scheduler

import (
	"time"
)

// State is the phase a matching pass is in.
type State string

const (
	StateIdle    State = "IDLE"
	StateLocked  State = "LOCKED"
	StateForming State = "FORMING"
	StateCommit  State = "COMMIT"
)

// LockName is the lease every instance competes for before running a pass.
const LockName = "matchmaking-process"

const (
	DefaultMatchSize = 2
	DefaultInterval  = 2 * time.Second
)

// Config tunes the scheduler.
type Config struct {
	MatchSize int
	Interval  time.Duration
	LockName  string
}

func (c Config) withDefaults() Config {
	if c.MatchSize < 2 {
		c.MatchSize = DefaultMatchSize
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.LockName == "" {
		c.LockName = LockName
	}
	return c
}
