package notifier

import (
	"time"

	"github.com/mauv0809/matchmaker/internal/model"
)

// Kind identifies what happened.
type Kind string

const (
	// MatchCreated is published once per match on the global topic.
	MatchCreated Kind = "MATCH_CREATED"
	// MatchFound is published on each member's own topic.
	MatchFound Kind = "MATCH_FOUND"
)

// GlobalTopic carries every created match.
const GlobalTopic = "matches"

const playerTopicPrefix = "player:"

// PlayerTopic is the topic a single player subscribes to.
func PlayerTopic(playerID string) string {
	return playerTopicPrefix + playerID
}

// Event is one entry of a topic log. ID is assigned by the log on publish.
type Event struct {
	ID             string    `json:"id,omitempty" msgpack:"id,omitempty"`
	Kind           Kind      `json:"event" msgpack:"event"`
	MatchID        string    `json:"matchId" msgpack:"matchId"`
	PlayerCount    int       `json:"playerCount,omitempty" msgpack:"playerCount,omitempty"`
	AverageSkill   int       `json:"averageSkill,omitempty" msgpack:"averageSkill,omitempty"`
	AverageLatency int       `json:"averageLatency,omitempty" msgpack:"averageLatency,omitempty"`
	Region         string    `json:"region" msgpack:"region"`
	CreatedAt      time.Time `json:"timestamp" msgpack:"timestamp"`
}

// MatchCreatedEvent builds the global announcement of m.
func MatchCreatedEvent(m model.Match) Event {
	return Event{
		Kind:           MatchCreated,
		MatchID:        m.ID,
		PlayerCount:    len(m.Players),
		AverageSkill:   m.AverageSkillRating,
		AverageLatency: m.AverageLatency,
		Region:         m.ServerRegion,
		CreatedAt:      m.CreatedAt,
	}
}

// MatchFoundEvent builds the event a member of m receives.
func MatchFoundEvent(m model.Match) Event {
	return Event{
		Kind:      MatchFound,
		MatchID:   m.ID,
		Region:    m.ServerRegion,
		CreatedAt: m.CreatedAt,
	}
}
