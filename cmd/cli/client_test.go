package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/matchmaking/leaveQueue":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		case "/health":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	c := &client{host: srv.URL, http: http.Client{Timeout: time.Second}}
	require.NoError(t, c.get("/health"))
	require.NoError(t, c.post("/api/matchmaking/leaveQueue", map[string]string{"player_id": "p1"}))
	assert.Equal(t, "p1", got["player_id"])
	assert.Error(t, c.get("/missing"), "error statuses fail the command")
}
