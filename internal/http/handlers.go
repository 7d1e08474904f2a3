package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchmaker/internal/matchmaking"
	"github.com/mauv0809/matchmaker/internal/model"
	"github.com/mauv0809/matchmaker/internal/pubsub"
	"github.com/mauv0809/matchmaker/internal/stats"
)

const defaultEventsLimit = 50

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearQueueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear the queue")
		if err := s.Matchmaking.Clear(r.Context()); err != nil {
			log.Error("Failed to clear queue", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to clear queue")
			return
		}
		respond(w, http.StatusOK, response{Success: true, Message: "Queue cleared"})
	}
}

func (s *Server) JoinQueueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchmaking.JoinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		result, err := s.Matchmaking.JoinQueue(r.Context(), req)
		var vErr *model.ValidationError
		switch {
		case errors.As(err, &vErr):
			respondError(w, http.StatusBadRequest, vErr.Error())
			return
		case errors.Is(err, matchmaking.ErrAlreadyQueued):
			respondError(w, http.StatusConflict, "Player already in queue")
			return
		case errors.Is(err, matchmaking.ErrAlreadyMatched):
			respondError(w, http.StatusConflict, "Player already in an active match")
			return
		case err != nil:
			log.Error("Failed to join queue", "error", err, "player", req.PlayerID)
			respondError(w, http.StatusInternalServerError, "Failed to join queue")
			return
		}
		respond(w, http.StatusOK, response{Success: true, Message: "Joined queue", Data: result})
	}
}

func (s *Server) LeaveQueueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req leaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
			respondError(w, http.StatusBadRequest, "player_id is required")
			return
		}

		removed, err := s.Matchmaking.LeaveQueue(r.Context(), req.PlayerID)
		if err != nil {
			log.Error("Failed to leave queue", "error", err, "player", req.PlayerID)
			respondError(w, http.StatusInternalServerError, "Failed to leave queue")
			return
		}
		if !removed {
			respondError(w, http.StatusNotFound, "Player not in queue")
			return
		}
		respond(w, http.StatusOK, response{Success: true, Message: "Left queue"})
	}
}

func (s *Server) MatchResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.PathValue("playerId")
		match, ok, err := s.Matchmaking.MatchResult(r.Context(), playerID)
		if err != nil {
			log.Error("Failed to look up match", "error", err, "player", playerID)
			respondError(w, http.StatusInternalServerError, "Failed to look up match")
			return
		}
		if !ok {
			respondError(w, http.StatusNotFound, "No match found yet")
			return
		}
		respond(w, http.StatusOK, response{Success: true, Data: match})
	}
}

func (s *Server) QueueStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := s.Matchmaking.QueueStatus(r.Context())
		if err != nil {
			log.Error("Failed to read queue status", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to read queue status")
			return
		}
		respond(w, http.StatusOK, response{Success: true, Data: status})
	}
}

func (s *Server) QueuePositionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.PathValue("playerId")
		position, ok, err := s.Matchmaking.Position(r.Context(), playerID)
		if err != nil {
			log.Error("Failed to read queue position", "error", err, "player", playerID)
			respondError(w, http.StatusInternalServerError, "Failed to read queue position")
			return
		}
		if !ok {
			respondError(w, http.StatusNotFound, "Player not in queue")
			return
		}
		respond(w, http.StatusOK, response{Success: true, Data: positionResponse{PlayerID: playerID, Position: position}})
	}
}

func (s *Server) EventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.PathValue("playerId")
		limit := int64(defaultEventsLimit)
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed <= 0 {
				respondError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		events, err := s.Matchmaking.Events(r.Context(), playerID, r.URL.Query().Get("after"), limit)
		if errors.Is(err, matchmaking.ErrEventsUnavailable) {
			respondError(w, http.StatusNotImplemented, "Event log is not readable on this deployment")
			return
		}
		if err != nil {
			log.Error("Failed to read events", "error", err, "player", playerID)
			respondError(w, http.StatusInternalServerError, "Failed to read events")
			return
		}
		respond(w, http.StatusOK, response{Success: true, Data: events})
	}
}

func (s *Server) RunPassHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("async") == "true" && s.Inngest != nil {
			id, err := s.Inngest.RequestPass(r.Context(), "api")
			if err != nil {
				log.Error("Failed to request pass", "error", err)
				respondError(w, http.StatusInternalServerError, "Failed to request pass")
				return
			}
			respond(w, http.StatusAccepted, response{Success: true, Message: "Pass requested", Data: map[string]string{"event_id": id}})
			return
		}

		log.Info("Running matching pass on demand")
		matches := s.Scheduler.RunPass(r.Context())
		if matches == nil {
			matches = []model.Match{}
		}
		respond(w, http.StatusOK, response{
			Success: true,
			Message: fmt.Sprintf("Created %d matches", len(matches)),
			Data:    passResponse{Matches: matches},
		})
	}
}

func (s *Server) TotalMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := s.Stats.Get(r.Context(), stats.TotalMatches)
		if err != nil {
			log.Error("Failed to read total matches", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to read total matches")
			return
		}
		respond(w, http.StatusOK, response{Success: true, Data: totalMatchesResponse{TotalMatches: total}})
	}
}

// MatchEventsPushHandler relays events pushed by Pub/Sub into the local
// event log. Messages this instance published itself are acknowledged and dropped.
func (s *Server) MatchEventsPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		msg, err := pubsub.ParsePush(bodyBytes)
		if err != nil {
			log.Error("Failed to parse push message", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if msg.Origin == s.InstanceID {
			log.Debug("Skipping own match event", "topic", msg.Topic, "match", msg.Event.MatchID)
			w.Write([]byte("OK"))
			return
		}
		if _, err := s.Relay.Publish(r.Context(), msg.Topic, msg.Event); err != nil {
			log.Error("Failed to relay match event", "error", err, "topic", msg.Topic)
			// A non-2xx reply makes Pub/Sub redeliver.
			http.Error(w, "Failed to relay event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func respond(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, response{Success: false, Message: message})
}
