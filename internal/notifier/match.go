package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchmaker/internal/model"
)

var _ MatchPublisher = (*MatchNotifier)(nil)

// MatchNotifier fans a match out to the global topic and to every member's
// topic on each configured publisher.
type MatchNotifier struct {
	publishers []Publisher
}

// NewMatchNotifier creates a MatchNotifier. Nil publishers are skipped.
func NewMatchNotifier(publishers ...Publisher) *MatchNotifier {
	n := &MatchNotifier{}
	for _, p := range publishers {
		if p != nil {
			n.publishers = append(n.publishers, p)
		}
	}
	return n
}

// NotifyMatch publishes one MATCH_CREATED and one MATCH_FOUND per member.
// It attempts every publish and returns the joined failures.
func (n *MatchNotifier) NotifyMatch(ctx context.Context, match model.Match) error {
	var errs []error
	for _, p := range n.publishers {
		if _, err := p.Publish(ctx, GlobalTopic, MatchCreatedEvent(match)); err != nil {
			errs = append(errs, fmt.Errorf("failed to publish match %s: %w", match.ID, err))
		}
		found := MatchFoundEvent(match)
		for _, player := range match.Players {
			if _, err := p.Publish(ctx, PlayerTopic(player.ID), found); err != nil {
				errs = append(errs, fmt.Errorf("failed to notify player %s: %w", player.ID, err))
			}
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		log.Error("Match notification incomplete", "match", match.ID, "failures", len(errs), "error", err)
	} else {
		log.Debug("Match notifications published", "match", match.ID, "players", len(match.Players))
	}
	return err
}
