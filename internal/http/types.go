package http

import (
	"context"
	"net/http"

	"github.com/mauv0809/matchmaker/internal/inngest"
	"github.com/mauv0809/matchmaker/internal/matchmaking"
	"github.com/mauv0809/matchmaker/internal/model"
	"github.com/mauv0809/matchmaker/internal/notifier"
	"github.com/mauv0809/matchmaker/internal/stats"
)

// PassRunner runs a matching pass on demand.
type PassRunner interface {
	RunPass(ctx context.Context) []model.Match
}

type Server struct {
	Matchmaking    *matchmaking.Service
	Scheduler      PassRunner
	Stats          stats.Counter
	MetricsHandler http.Handler
	// Relay receives events pushed from other instances. Nil disables the push endpoint.
	Relay      notifier.Publisher
	InstanceID string
	// Inngest is nil when no Inngest app is configured.
	Inngest inngest.Trigger
	Router  *http.ServeMux
}

// response is the envelope every API endpoint replies with.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type leaveRequest struct {
	PlayerID string `json:"player_id"`
}

type positionResponse struct {
	PlayerID string `json:"player_id"`
	Position int64  `json:"position"`
}

type passResponse struct {
	Matches []model.Match `json:"matches"`
}

type totalMatchesResponse struct {
	TotalMatches int64 `json:"total_matches"`
}
