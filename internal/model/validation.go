package model

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed player attribute.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the player attributes accepted by the queue.
func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return &ValidationError{Field: "player_id", Reason: "is required"}
	}
	if strings.TrimSpace(p.Username) == "" {
		return &ValidationError{Field: "username", Reason: "is required"}
	}
	if p.SkillRating < MinSkillRating || p.SkillRating > MaxSkillRating {
		return &ValidationError{Field: "skill_rating", Reason: fmt.Sprintf("must be between %d and %d", MinSkillRating, MaxSkillRating)}
	}
	if p.Latency < MinLatency || p.Latency > MaxLatency {
		return &ValidationError{Field: "latency", Reason: fmt.Sprintf("must be between %d and %d ms", MinLatency, MaxLatency)}
	}
	if strings.TrimSpace(p.Region) == "" {
		return &ValidationError{Field: "region", Reason: "is required"}
	}
	return nil
}
