package scheduler

import (
	"time"

	"github.com/mauv0809/matchmaker/internal/compat"
	"github.com/mauv0809/matchmaker/internal/model"
)

// FormGroups greedily partitions players, taken in pool order, into groups of
// exactly size. The first remaining player anchors each attempt and collects
// compatible candidates in order. An anchor that cannot fill its group is
// dropped for the rest of the pass.
func FormGroups(players []model.Player, engine compat.Engine, size int) [][]model.Player {
	remaining := append([]model.Player(nil), players...)
	var groups [][]model.Player

	for len(remaining) >= size {
		group := []model.Player{remaining[0]}
		picked := []int{0}
		for i := 1; i < len(remaining) && len(group) < size; i++ {
			if engine.Compatible(remaining[i], group) {
				group = append(group, remaining[i])
				picked = append(picked, i)
			}
		}

		if len(group) < size {
			remaining = remaining[1:]
			continue
		}
		groups = append(groups, group)
		remaining = without(remaining, picked)
	}
	return groups
}

// without returns players minus the given ascending indexes, keeping order.
func without(players []model.Player, idx []int) []model.Player {
	out := make([]model.Player, 0, len(players)-len(idx))
	next := 0
	for i, p := range players {
		if next < len(idx) && idx[next] == i {
			next++
			continue
		}
		out = append(out, p)
	}
	return out
}

// NewMatch builds a READY match from a formed group. Averages use truncating
// integer division and the server region is the first member's.
func NewMatch(id string, group []model.Player, createdAt time.Time) model.Match {
	skillSum, latencySum := 0, 0
	players := make([]model.Player, len(group))
	for i, p := range group {
		skillSum += p.SkillRating
		latencySum += p.Latency
		p.Status = model.PlayerMatched
		players[i] = p
	}
	return model.Match{
		ID:                 id,
		Players:            players,
		AverageSkillRating: skillSum / len(group),
		AverageLatency:     latencySum / len(group),
		ServerRegion:       group[0].Region,
		CreatedAt:          createdAt,
		Status:             model.MatchReady,
	}
}
