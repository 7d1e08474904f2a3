package matchmaking

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchmaker/internal/compat"
	"github.com/mauv0809/matchmaker/internal/metrics"
	"github.com/mauv0809/matchmaker/internal/model"
	"github.com/mauv0809/matchmaker/internal/notifier"
	"github.com/mauv0809/matchmaker/internal/queue"
	"github.com/mauv0809/matchmaker/internal/results"
)

// Service is what the API layer uses to put players in and out of the queue
// and to look up what happened to them.
type Service struct {
	pool    queue.WaitingPool
	engine  compat.Engine
	results results.MatchStore
	events  notifier.Publisher
	metrics metrics.Metrics
	now     func() time.Time
}

// NewService creates a new Service. events may be nil when no readable log is configured.
func NewService(pool queue.WaitingPool, engine compat.Engine, store results.MatchStore, events notifier.Publisher, m metrics.Metrics) *Service {
	return &Service{
		pool:    pool,
		engine:  engine,
		results: store,
		events:  events,
		metrics: m,
		now:     time.Now,
	}
}

// JoinQueue validates and enqueues a player.
func (s *Service) JoinQueue(ctx context.Context, req JoinRequest) (JoinResult, error) {
	player := model.Player{
		ID:          req.PlayerID,
		Username:    req.Username,
		SkillRating: req.SkillRating,
		Latency:     req.Latency,
		Region:      req.Region,
		QueuedAt:    s.now(),
		Status:      model.PlayerQueued,
	}
	if err := player.Validate(); err != nil {
		return JoinResult{}, err
	}

	queued, err := s.pool.Contains(ctx, player.ID)
	if err != nil {
		return JoinResult{}, err
	}
	if queued {
		return JoinResult{}, ErrAlreadyQueued
	}
	current, matched, err := s.results.Lookup(ctx, player.ID)
	if err != nil {
		return JoinResult{}, err
	}
	if matched && current.Status.Active() {
		return JoinResult{}, ErrAlreadyMatched
	}

	if err := s.pool.Enqueue(ctx, player); err != nil {
		return JoinResult{}, fmt.Errorf("failed to join queue: %w", err)
	}
	s.metrics.IncPlayersJoined()

	position, _, err := s.pool.PositionOf(ctx, player.ID)
	if err != nil {
		return JoinResult{}, err
	}
	size := s.refreshQueueSize(ctx)
	wait := s.engine.EstimateWait(player, size)

	log.Info("Player joined queue", "player", player.ID, "skill", player.SkillRating, "region", player.Region, "position", position)
	return JoinResult{
		PlayerID:      player.ID,
		Position:      position,
		EstimatedWait: wait,
		EstimatedMs:   wait.Milliseconds(),
	}, nil
}

// LeaveQueue removes a player. It reports false when the player was not queued.
func (s *Service) LeaveQueue(ctx context.Context, playerID string) (bool, error) {
	removed, err := s.pool.Dequeue(ctx, playerID)
	if err != nil {
		return false, fmt.Errorf("failed to leave queue: %w", err)
	}
	if removed {
		s.metrics.IncPlayersLeft()
		s.refreshQueueSize(ctx)
		log.Info("Player left queue", "player", playerID)
	}
	return removed, nil
}

// MatchResult returns the match the player was placed in, if any.
func (s *Service) MatchResult(ctx context.Context, playerID string) (model.Match, bool, error) {
	return s.results.Lookup(ctx, playerID)
}

// Position returns the player's 1-based position in the queue.
func (s *Service) Position(ctx context.Context, playerID string) (int64, bool, error) {
	return s.pool.PositionOf(ctx, playerID)
}

// QueueStatus reports the pool size and a rough wait for a new arrival.
func (s *Service) QueueStatus(ctx context.Context) (QueueStatus, error) {
	size, err := s.pool.Size(ctx)
	if err != nil {
		return QueueStatus{}, err
	}
	wait := time.Duration(size/2*secondsPerPair) * time.Second
	return QueueStatus{Size: size, EstimatedWait: wait, EstimatedMs: wait.Milliseconds()}, nil
}

// Events returns the player's notifications published after afterID.
func (s *Service) Events(ctx context.Context, playerID, afterID string, limit int64) ([]notifier.Event, error) {
	l, ok := s.events.(notifier.Log)
	if !ok {
		return nil, ErrEventsUnavailable
	}
	return l.Read(ctx, notifier.PlayerTopic(playerID), afterID, limit)
}

// Clear empties the queue.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.pool.Clear(ctx); err != nil {
		return err
	}
	s.metrics.SetQueueSize(0)
	return nil
}

func (s *Service) refreshQueueSize(ctx context.Context) int64 {
	size, err := s.pool.Size(ctx)
	if err != nil {
		log.Warn("Failed to read queue size", "error", err)
		return 0
	}
	s.metrics.SetQueueSize(float64(size))
	return size
}
