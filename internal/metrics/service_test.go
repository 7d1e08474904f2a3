package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RecordsObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncPlayersJoined()
	s.IncPlayersJoined()
	s.IncPlayersLeft()
	s.IncMatchesCreated()
	s.SetQueueSize(7)
	s.IncNotifSent("slack")
	s.IncNotifFailed("pubsub")
	s.ObservePassDuration(0.02)

	rec := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "matchmaking_players_joined_total 2")
	assert.Contains(t, body, "matchmaking_players_left_total 1")
	assert.Contains(t, body, "matchmaking_matches_created_total 1")
	assert.Contains(t, body, "matchmaking_queue_size 7")
	assert.Contains(t, body, `matchmaking_notifications_sent_total{sink="slack"} 1`)
	assert.Contains(t, body, `matchmaking_notifications_failed_total{sink="pubsub"} 1`)
	assert.Contains(t, body, "matchmaking_pass_duration_seconds_count 1")
}

func TestMulti_ForwardsToAll(t *testing.T) {
	a, b := NewMock(), NewMock()
	m := Multi(a, nil, b)

	m.IncMatchesCreated()
	m.IncPlayersJoined()
	m.SetQueueSize(3)
	m.IncPassesSkipped()

	for _, mock := range []*Mock{a, b} {
		assert.Equal(t, 1, mock.MatchesCreated())
		assert.Equal(t, 1, mock.PlayersJoined())
		assert.Equal(t, 3.0, mock.QueueSize())
		assert.Equal(t, 1, mock.PassesSkipped())
	}
}
