package inngest

import (
	"context"
	"net/http"

	"github.com/mauv0809/matchmaker/internal/model"
)

// PassRequestedEvent triggers an out-of-band matching pass.
const PassRequestedEvent = "matchmaking/pass.requested"

const functionID = "matchmaking-pass"

// PassRunner runs one matching pass and returns the matches it committed.
type PassRunner interface {
	RunPass(ctx context.Context) []model.Match
}

// Trigger exposes the pass function to Inngest and sends events to it.
type Trigger interface {
	Serve() http.Handler
	RequestPass(ctx context.Context, reason string) (string, error)
}

// PassRequest is the payload of PassRequestedEvent.
type PassRequest struct {
	Reason string `json:"reason"`
}

// PassResult is what the function reports back for a run.
type PassResult struct {
	Matches  int      `json:"matches"`
	MatchIDs []string `json:"matchIds"`
}
