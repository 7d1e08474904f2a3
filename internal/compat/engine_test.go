package compat

import (
	"testing"
	"time"

	"github.com/mauv0809/matchmaker/internal/model"
	"github.com/stretchr/testify/assert"
)

func player(id string, skill, latency int, region string) model.Player {
	return model.Player{ID: id, Username: id, SkillRating: skill, Latency: latency, Region: region}
}

func TestCompatible(t *testing.T) {
	e := New(200, 100)

	tests := []struct {
		name      string
		candidate model.Player
		group     []model.Player
		want      bool
	}{
		{"empty group accepts anyone", player("a", 4000, 999, "eu"), nil, true},
		{"within bounds", player("b", 1550, 40, "us-east"), []model.Player{player("a", 1500, 30, "us-east")}, true},
		{"gap exactly at limit", player("b", 1700, 40, "us-east"), []model.Player{player("a", 1500, 30, "us-east")}, true},
		{"gap over limit", player("b", 1701, 40, "us-east"), []model.Player{player("a", 1500, 30, "us-east")}, false},
		{"candidate latency too high", player("b", 1500, 101, "us-east"), []model.Player{player("a", 1500, 30, "us-east")}, false},
		{"member latency too high", player("b", 1500, 30, "us-east"), []model.Player{player("a", 1500, 150, "us-east")}, false},
		{"region mismatch", player("b", 1500, 30, "eu-west"), []model.Player{player("a", 1500, 30, "us-east")}, false},
		{
			"incompatible with a later member",
			player("c", 1690, 30, "us-east"),
			[]model.Player{player("a", 1600, 30, "us-east"), player("b", 1450, 30, "us-east")},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Compatible(tt.candidate, tt.group))
		})
	}
}

func TestQuality(t *testing.T) {
	e := New(200, 100)

	t.Run("fewer than two players scores zero", func(t *testing.T) {
		assert.Zero(t, e.Quality(nil))
		assert.Zero(t, e.Quality([]model.Player{player("a", 1500, 10, "eu")}))
	})

	t.Run("identical zero latency players score 100", func(t *testing.T) {
		q := e.Quality([]model.Player{player("a", 1500, 0, "eu"), player("b", 1500, 0, "eu")})
		assert.InDelta(t, 100.0, q, 1e-9)
	})

	t.Run("weighted score", func(t *testing.T) {
		// skill gap 100 -> 50, avg latency 50 -> 50
		q := e.Quality([]model.Player{player("a", 1500, 40, "eu"), player("b", 1600, 60, "eu")})
		assert.InDelta(t, 50.0, q, 1e-9)
	})

	t.Run("far out of bounds clamps to zero", func(t *testing.T) {
		q := e.Quality([]model.Player{player("a", 0, 900, "eu"), player("b", 5000, 900, "eu")})
		assert.Zero(t, q)
	})

	t.Run("never increases as the skill gap widens", func(t *testing.T) {
		prev := 101.0
		for gap := 0; gap <= 400; gap += 25 {
			q := e.Quality([]model.Player{player("a", 1500, 20, "eu"), player("b", 1500+gap, 20, "eu")})
			assert.GreaterOrEqual(t, q, 0.0)
			assert.LessOrEqual(t, q, 100.0)
			assert.LessOrEqual(t, q, prev)
			prev = q
		}
	})

	t.Run("zero thresholds", func(t *testing.T) {
		strict := New(0, 0)
		assert.InDelta(t, 100.0, strict.Quality([]model.Player{player("a", 1500, 0, "eu"), player("b", 1500, 0, "eu")}), 1e-9)
		assert.Zero(t, strict.Quality([]model.Player{player("a", 1500, 5, "eu"), player("b", 1501, 5, "eu")}))
	})
}

func TestEstimateWait(t *testing.T) {
	e := New(200, 100)

	tests := []struct {
		name     string
		player   model.Player
		poolSize int64
		want     time.Duration
	}{
		{"average player", player("a", 1500, 20, "eu"), 2, 5 * time.Second},
		{"skill offset adds per full hundred", player("a", 1799, 20, "eu"), 2, 7 * time.Second},
		{"high latency", player("a", 1500, 51, "eu"), 2, 7 * time.Second},
		{"busy pool", player("a", 1500, 20, "eu"), 11, 3 * time.Second},
		{"everything", player("a", 1000, 80, "eu"), 50, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.EstimateWait(tt.player, tt.poolSize))
		})
	}

	t.Run("never below one second", func(t *testing.T) {
		assert.GreaterOrEqual(t, e.EstimateWait(player("a", 1500, 0, "eu"), 1000), time.Second)
	})
}
