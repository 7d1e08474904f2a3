package model

import (
	"time"
)

// PlayerStatus represents where a player is in the matchmaking lifecycle.
type PlayerStatus string

const (
	PlayerQueued  PlayerStatus = "QUEUED"
	PlayerMatched PlayerStatus = "MATCHED"
	PlayerInGame  PlayerStatus = "IN_GAME"
	PlayerOffline PlayerStatus = "OFFLINE"
)

// MatchStatus represents the lifecycle status of a match.
type MatchStatus string

const (
	MatchPending    MatchStatus = "PENDING"
	MatchReady      MatchStatus = "READY"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchCompleted  MatchStatus = "COMPLETED"
	MatchCancelled  MatchStatus = "CANCELLED"
)

// Active reports whether a match still holds its members.
func (s MatchStatus) Active() bool {
	return s != MatchCompleted && s != MatchCancelled
}

// Bounds for player attributes accepted by the queue.
const (
	MinSkillRating = 0
	MaxSkillRating = 5000
	MinLatency     = 0
	MaxLatency     = 1000
	// SkillMidpoint is the rating treated as "average" by priority ordering and wait estimates.
	SkillMidpoint = 1500
)

// Player is a client waiting for, or assigned to, a match.
type Player struct {
	ID          string       `json:"player_id"`
	Username    string       `json:"username"`
	SkillRating int          `json:"skill_rating"`
	Latency     int          `json:"latency"` // milliseconds
	Region      string       `json:"region"`
	QueuedAt    time.Time    `json:"queued_at"`
	Status      PlayerStatus `json:"status"`
}

// Match is a group of players formed by a matching pass.
type Match struct {
	ID                 string      `json:"match_id"`
	Players            []Player    `json:"players"`
	AverageSkillRating int         `json:"average_skill_rating"`
	AverageLatency     int         `json:"average_latency"`
	ServerRegion       string      `json:"server_region"`
	CreatedAt          time.Time   `json:"created_at"`
	Status             MatchStatus `json:"status"`
}

// PlayerIDs returns the ids of the match members in match order.
func (m Match) PlayerIDs() []string {
	ids := make([]string, 0, len(m.Players))
	for _, p := range m.Players {
		ids = append(ids, p.ID)
	}
	return ids
}
