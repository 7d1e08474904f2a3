package matchmaking

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyQueued is returned when a player joins while already waiting.
	ErrAlreadyQueued = errors.New("player already in queue")
	// ErrAlreadyMatched is returned when a player joins while a live match still holds them.
	ErrAlreadyMatched = errors.New("player already in an active match")
	// ErrEventsUnavailable is returned when the notification channel cannot be read back.
	ErrEventsUnavailable = errors.New("event log does not support reading")
)

// JoinRequest is a player asking to be matched.
type JoinRequest struct {
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	SkillRating int    `json:"skill_rating"`
	Latency     int    `json:"latency"`
	Region      string `json:"region"`
}

// JoinResult reports where the player landed in the queue.
type JoinResult struct {
	PlayerID      string        `json:"player_id"`
	Position      int64         `json:"position"`
	EstimatedWait time.Duration `json:"-"`
	EstimatedMs   int64         `json:"estimated_wait_ms"`
}

// QueueStatus summarizes the waiting pool.
type QueueStatus struct {
	Size          int64         `json:"queue_size"`
	EstimatedWait time.Duration `json:"-"`
	EstimatedMs   int64         `json:"estimated_wait_ms"`
}

// secondsPerPair is the rough time a pass needs to place two more players.
const secondsPerPair = 5
