package compat

import (
	"time"

	"github.com/mauv0809/matchmaker/internal/model"
)

const (
	baseWait          = 5000 * time.Millisecond
	skillPenaltyStep  = 100
	skillPenalty      = 1000 * time.Millisecond
	highLatencyCutoff = 50
	latencyPenalty    = 2000 * time.Millisecond
	busyPoolSize      = 10
	busyPoolBonus     = 2000 * time.Millisecond
	minWait           = 1000 * time.Millisecond
)

// Engine decides whether players can share a match and scores formed groups.
// Its methods are pure and safe for concurrent use.
type Engine struct {
	MaxSkillGap         int
	MaxLatencyThreshold int
}

// New returns an Engine with the given thresholds.
func New(maxSkillGap, maxLatencyThreshold int) Engine {
	return Engine{MaxSkillGap: maxSkillGap, MaxLatencyThreshold: maxLatencyThreshold}
}

// Compatible reports whether candidate may join every member of group.
// An empty group accepts any candidate.
func (e Engine) Compatible(candidate model.Player, group []model.Player) bool {
	for _, member := range group {
		if !e.pairCompatible(candidate, member) {
			return false
		}
	}
	return true
}

func (e Engine) pairCompatible(a, b model.Player) bool {
	if abs(a.SkillRating-b.SkillRating) > e.MaxSkillGap {
		return false
	}
	if a.Latency > e.MaxLatencyThreshold || b.Latency > e.MaxLatencyThreshold {
		return false
	}
	return a.Region == b.Region
}

// Quality scores a group between 0 and 100. Groups smaller than two score 0.
func (e Engine) Quality(group []model.Player) float64 {
	if len(group) < 2 {
		return 0
	}

	minSkill, maxSkill := group[0].SkillRating, group[0].SkillRating
	latencySum := 0
	for _, p := range group {
		minSkill = min(minSkill, p.SkillRating)
		maxSkill = max(maxSkill, p.SkillRating)
		latencySum += p.Latency
	}
	avgLatency := float64(latencySum) / float64(len(group))

	skillScore := score(float64(maxSkill-minSkill), float64(e.MaxSkillGap))
	latencyScore := score(avgLatency, float64(e.MaxLatencyThreshold))
	return skillScore*0.6 + latencyScore*0.4
}

// score maps value onto [0, 100] relative to limit, 100 being a perfect value.
func score(value, limit float64) float64 {
	if limit <= 0 {
		if value == 0 {
			return 100
		}
		return 0
	}
	return clamp(100-(value/limit)*100, 0, 100)
}

// EstimateWait is a display heuristic for how long player can expect to wait
// in a pool of poolSize players.
func (e Engine) EstimateWait(player model.Player, poolSize int64) time.Duration {
	wait := baseWait
	wait += time.Duration(abs(player.SkillRating-model.SkillMidpoint)/skillPenaltyStep) * skillPenalty
	if player.Latency > highLatencyCutoff {
		wait += latencyPenalty
	}
	if poolSize > busyPoolSize {
		wait -= busyPoolBonus
	}
	return max(wait, minWait)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
