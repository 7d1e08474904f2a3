package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/matchmaker/internal/compat"
	"github.com/mauv0809/matchmaker/internal/lock"
	"github.com/mauv0809/matchmaker/internal/matchmaking"
	"github.com/mauv0809/matchmaker/internal/metrics"
	"github.com/mauv0809/matchmaker/internal/notifier"
	"github.com/mauv0809/matchmaker/internal/pubsub"
	"github.com/mauv0809/matchmaker/internal/queue"
	"github.com/mauv0809/matchmaker/internal/results"
	"github.com/mauv0809/matchmaker/internal/scheduler"
	"github.com/mauv0809/matchmaker/internal/stats"
	"github.com/mauv0809/matchmaker/internal/testutils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testInstanceID = "instance-a"

type testServer struct {
	*Server
	events notifier.Log
}

// setupTestServer wires the full stack on an in-memory database.
func setupTestServer(t *testing.T) testServer {
	t.Helper()
	db := testutils.NewDB(t)

	reg := prometheus.NewRegistry()
	counter := stats.NewStore(db)
	observer := stats.NewObserver(counter)
	t.Cleanup(observer.Close)
	m := metrics.Multi(metrics.NewService(reg), observer)
	engine := compat.New(200, 100)
	pool := queue.NewStore(db, queue.Options{Ordering: queue.FIFO})
	matches := results.NewStore(db, results.DefaultRetention)
	events := notifier.NewStore(db, notifier.Options{})

	svc := matchmaking.NewService(pool, engine, matches, events, m)
	sched := scheduler.New(pool, engine, lock.NewStore(db, lock.DefaultTTL), matches, notifier.NewMatchNotifier(events), m, scheduler.Config{MatchSize: 2})
	server := NewServer(svc, sched, counter, metrics.NewMetricsHandler(reg), events, testInstanceID, nil)
	return testServer{Server: server, events: events}
}

func do(t *testing.T, h http.Handler, method, target string, body any) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp response
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	}
	return rr, resp
}

func joinBody(id string, skill int) matchmaking.JoinRequest {
	return matchmaking.JoinRequest{PlayerID: id, Username: "User" + id, SkillRating: skill, Latency: 40, Region: "us-east"}
}

func TestHealthCheckHandler(t *testing.T) {
	s := setupTestServer(t)
	rr, _ := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestJoinQueueHandler(t *testing.T) {
	s := setupTestServer(t)

	t.Run("joins and reports position", func(t *testing.T) {
		rr, resp := do(t, s, http.MethodPost, "/api/matchmaking/joinQueue", joinBody("p1", 1500))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "p1", data["player_id"])
		assert.EqualValues(t, 1, data["position"])
		assert.EqualValues(t, 5000, data["estimated_wait_ms"])
	})

	t.Run("rejects a queued player", func(t *testing.T) {
		rr, resp := do(t, s, http.MethodPost, "/api/matchmaking/joinQueue", joinBody("p1", 1500))
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.False(t, resp.Success)
	})

	t.Run("rejects invalid attributes", func(t *testing.T) {
		rr, resp := do(t, s, http.MethodPost, "/api/matchmaking/joinQueue", joinBody("p2", -1))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, resp.Message, "skill_rating")
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/matchmaking/joinQueue", strings.NewReader("{"))
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("wrong method is not routed", func(t *testing.T) {
		rr, _ := do(t, s, http.MethodGet, "/api/matchmaking/joinQueue", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestLeaveQueueHandler(t *testing.T) {
	s := setupTestServer(t)
	do(t, s, http.MethodPost, "/api/matchmaking/joinQueue", joinBody("p1", 1500))

	rr, resp := do(t, s, http.MethodPost, "/api/matchmaking/leaveQueue", leaveRequest{PlayerID: "p1"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, resp.Success)

	rr, _ = do(t, s, http.MethodPost, "/api/matchmaking/leaveQueue", leaveRequest{PlayerID: "p1"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = do(t, s, http.MethodPost, "/api/matchmaking/leaveQueue", leaveRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestQueueStatusAndPosition(t *testing.T) {
	s := setupTestServer(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		rr, _ := do(t, s, http.MethodPost, "/api/matchmaking/joinQueue", joinBody(id, 1500))
		require.Equal(t, http.StatusOK, rr.Code)
		time.Sleep(2 * time.Millisecond)
	}

	rr, resp := do(t, s, http.MethodGet, "/api/matchmaking/queueStatus", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	data := resp.Data.(map[string]any)
	assert.EqualValues(t, 4, data["queue_size"])
	assert.EqualValues(t, 10000, data["estimated_wait_ms"])

	rr, resp = do(t, s, http.MethodGet, "/api/matchmaking/queuePosition/c", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 3, resp.Data.(map[string]any)["position"])

	rr, _ = do(t, s, http.MethodGet, "/api/matchmaking/queuePosition/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRunPassFlow(t *testing.T) {
	s := setupTestServer(t)
	do(t, s, http.MethodPost, "/api/matchmaking/joinQueue", joinBody("p1", 1500))
	time.Sleep(2 * time.Millisecond)
	do(t, s, http.MethodPost, "/api/matchmaking/joinQueue", joinBody("p2", 1550))
	time.Sleep(2 * time.Millisecond)
	do(t, s, http.MethodPost, "/api/matchmaking/joinQueue", joinBody("p3", 1800))

	rr, _ := do(t, s, http.MethodGet, "/api/matchmaking/matchResult/p1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "no match before a pass")

	rr, resp := do(t, s, http.MethodPost, "/api/matchmaking/runPass", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Created 1 matches", resp.Message)

	rr, resp = do(t, s, http.MethodGet, "/api/matchmaking/matchResult/p2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	match := resp.Data.(map[string]any)
	assert.Equal(t, "READY", match["status"])
	assert.Len(t, match["players"], 2)

	rr, _ = do(t, s, http.MethodGet, "/api/matchmaking/matchResult/p3", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, resp = do(t, s, http.MethodPost, "/api/matchmaking/joinQueue", joinBody("p1", 1500))
	assert.Equal(t, http.StatusConflict, rr.Code, "a matched player cannot rejoin")
	assert.False(t, resp.Success)

	rr, resp = do(t, s, http.MethodGet, "/api/matchmaking/events/p1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	events := resp.Data.([]any)
	require.Len(t, events, 1)
	assert.Equal(t, string(notifier.MatchFound), events[0].(map[string]any)["event"])

	// Persisted totals are written in the background.
	assert.Eventually(t, func() bool {
		rr, resp := do(t, s, http.MethodGet, "/api/stats/totalMatches", nil)
		if rr.Code != http.StatusOK {
			return false
		}
		total, _ := resp.Data.(map[string]any)["total_matches"].(float64)
		return total == 1
	}, 2*time.Second, 10*time.Millisecond)

	rr, resp = do(t, s, http.MethodGet, "/api/matchmaking/queueStatus", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, resp.Data.(map[string]any)["queue_size"])

	rr, _ = do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "matchmaking_matches_created_total 1")
}

func TestEventsHandler_BadLimit(t *testing.T) {
	s := setupTestServer(t)
	rr, _ := do(t, s, http.MethodGet, "/api/matchmaking/events/p1?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClearQueueHandler(t *testing.T) {
	s := setupTestServer(t)
	do(t, s, http.MethodPost, "/api/matchmaking/joinQueue", joinBody("p1", 1500))

	rr, _ := do(t, s, http.MethodPost, "/clear", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	_, resp := do(t, s, http.MethodGet, "/api/matchmaking/queueStatus", nil)
	assert.EqualValues(t, 0, resp.Data.(map[string]any)["queue_size"])
}

func pushBody(t *testing.T, topic, origin string, event notifier.Event) []byte {
	t.Helper()
	data, err := msgpack.Marshal(&event)
	require.NoError(t, err)
	body := map[string]any{
		"subscription": "projects/test/subscriptions/match-events",
		"message": map[string]any{
			"data":       base64.StdEncoding.EncodeToString(data),
			"messageId":  "1",
			"attributes": map[string]string{pubsub.AttrTopic: topic, pubsub.AttrKind: string(event.Kind), pubsub.AttrOrigin: origin},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return raw
}

func TestMatchEventsPushHandler(t *testing.T) {
	s := setupTestServer(t)
	event := notifier.Event{Kind: notifier.MatchFound, MatchID: "m-remote", Region: "eu-west", CreatedAt: time.Now()}
	topic := notifier.PlayerTopic("p9")

	push := func(body []byte) int {
		req := httptest.NewRequest(http.MethodPost, "/pubsub/match-events", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, req)
		return rr.Code
	}

	t.Run("skips own messages", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, push(pushBody(t, topic, testInstanceID, event)))
		got, err := s.events.Read(t.Context(), topic, "", 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("relays messages from other instances", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, push(pushBody(t, topic, "instance-b", event)))
		got, err := s.events.Read(t.Context(), topic, "", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "m-remote", got[0].MatchID)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, push([]byte("not json")))
	})
}
