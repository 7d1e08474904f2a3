package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/matchmaker/internal/compat"
	"github.com/mauv0809/matchmaker/internal/lock"
	"github.com/mauv0809/matchmaker/internal/metrics"
	"github.com/mauv0809/matchmaker/internal/model"
	"github.com/mauv0809/matchmaker/internal/notifier"
	"github.com/mauv0809/matchmaker/internal/queue"
	"github.com/mauv0809/matchmaker/internal/results"
)

// Scheduler runs matching passes over the waiting pool.
// It holds no state between passes.
type Scheduler struct {
	pool     queue.WaitingPool
	engine   compat.Engine
	guard    lock.Guard
	results  results.MatchStore
	notifier notifier.MatchPublisher
	metrics  metrics.Metrics
	cfg      Config
	now      func() time.Time
	newID    func() string
}

// New creates a new Scheduler.
func New(pool queue.WaitingPool, engine compat.Engine, guard lock.Guard, store results.MatchStore, notifier notifier.MatchPublisher, metrics metrics.Metrics, cfg Config) *Scheduler {
	return &Scheduler{
		pool:     pool,
		engine:   engine,
		guard:    guard,
		results:  store,
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Run triggers a pass every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info("Starting matching scheduler", "interval", s.cfg.Interval, "matchSize", s.cfg.MatchSize)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Matching scheduler stopped")
			return
		case <-ticker.C:
			s.RunPass(ctx)
		}
	}
}

// RunPass executes one pass and returns the matches it committed. Failures,
// including a lock held by another instance, are logged and yield fewer or
// no matches.
func (s *Scheduler) RunPass(ctx context.Context) (committed []model.Match) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("Matching pass panicked", "panic", r, "committed", len(committed))
		}
	}()

	_, err := lock.WithLock(ctx, s.guard, s.cfg.LockName, func(ctx context.Context) (struct{}, error) {
		log.Debug("Matching pass state", "state", StateLocked)
		return struct{}{}, s.pass(ctx, &committed)
	})
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		log.Debug("Skipping matching pass, lock held elsewhere", "lock", s.cfg.LockName)
		s.metrics.IncPassesSkipped()
		return nil
	case err != nil:
		log.Error("Matching pass failed", "error", err, "committed", len(committed))
	}

	s.metrics.ObservePassDuration(time.Since(start).Seconds())
	if size, err := s.pool.Size(ctx); err == nil {
		s.metrics.SetQueueSize(float64(size))
	}
	if len(committed) > 0 {
		log.Info("Matching pass finished", "matches", len(committed), "duration", time.Since(start))
	}
	log.Debug("Matching pass state", "state", StateIdle)
	return committed
}

func (s *Scheduler) pass(ctx context.Context, committed *[]model.Match) error {
	log.Debug("Matching pass state", "state", StateForming)
	var players []model.Player
	for p, err := range s.pool.Snapshot(ctx) {
		if err != nil {
			return fmt.Errorf("failed to snapshot pool: %w", err)
		}
		players = append(players, p)
	}
	players, err := s.withoutMatched(ctx, players)
	if err != nil {
		return err
	}
	if len(players) < s.cfg.MatchSize {
		return nil
	}

	groups := FormGroups(players, s.engine, s.cfg.MatchSize)
	log.Debug("Formed groups", "players", len(players), "groups", len(groups))

	for _, group := range groups {
		if ctx.Err() != nil {
			return fmt.Errorf("stopping before commit: %w", context.Cause(ctx))
		}
		match := NewMatch(s.newID(), group, s.now())
		if err := s.commit(ctx, match); err != nil {
			log.Error("Failed to commit match", "match", match.ID, "error", err)
			continue
		}
		*committed = append(*committed, match)
	}
	return nil
}

// withoutMatched drops players that still belong to a live match. Their
// queue entries are removed too, so a player is never in two live matches
// and Save never overwrites a live assignment.
func (s *Scheduler) withoutMatched(ctx context.Context, players []model.Player) ([]model.Player, error) {
	out := players[:0]
	for _, p := range players {
		current, ok, err := s.results.Lookup(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up match for %s: %w", p.ID, err)
		}
		if ok && current.Status.Active() {
			log.Warn("Dropping queued player already in an active match", "player", p.ID, "match", current.ID)
			if _, err := s.pool.Dequeue(ctx, p.ID); err != nil {
				log.Error("Failed to dequeue matched player", "player", p.ID, "error", err)
			}
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// commit persists match, takes its members out of the pool, then announces it.
// If the pool update fails the match is withdrawn and removed players are
// put back so no partial match is observable.
func (s *Scheduler) commit(ctx context.Context, match model.Match) error {
	log.Debug("Matching pass state", "state", StateCommit, "match", match.ID)
	if err := s.results.Save(ctx, match); err != nil {
		return err
	}

	var removed []model.Player
	for _, p := range match.Players {
		ok, err := s.pool.Dequeue(ctx, p.ID)
		if err != nil {
			s.rollback(ctx, match, removed)
			return fmt.Errorf("failed to dequeue %s: %w", p.ID, err)
		}
		if !ok {
			// The player left after the snapshot was taken.
			s.rollback(ctx, match, removed)
			return fmt.Errorf("player %s is no longer queued", p.ID)
		}
		removed = append(removed, p)
	}

	if err := s.notifier.NotifyMatch(ctx, match); err != nil {
		log.Warn("Match committed with failed notifications", "match", match.ID, "error", err)
	}
	s.metrics.IncMatchesCreated()
	log.Info("Match created", "match", match.ID, "players", match.PlayerIDs(), "region", match.ServerRegion,
		"averageSkill", match.AverageSkillRating, "quality", s.engine.Quality(match.Players))
	return nil
}

func (s *Scheduler) rollback(ctx context.Context, match model.Match, removed []model.Player) {
	ctx = context.WithoutCancel(ctx)
	for _, p := range removed {
		p.Status = model.PlayerQueued
		if err := s.pool.Enqueue(ctx, p); err != nil {
			log.Error("Failed to restore player after aborted match", "player", p.ID, "match", match.ID, "error", err)
		}
	}
	if err := s.results.Delete(ctx, match); err != nil {
		log.Error("Failed to withdraw aborted match", "match", match.ID, "error", err)
	}
}
