package http

import (
	"net/http"

	"github.com/mauv0809/matchmaker/internal/inngest"
	"github.com/mauv0809/matchmaker/internal/matchmaking"
	"github.com/mauv0809/matchmaker/internal/notifier"
	"github.com/mauv0809/matchmaker/internal/stats"
)

func NewServer(svc *matchmaking.Service, runner PassRunner, counter stats.Counter, metricsHandler http.Handler, relay notifier.Publisher, instanceID string, trigger inngest.Trigger) *Server {
	server := &Server{
		Matchmaking:    svc,
		Scheduler:      runner,
		Stats:          counter,
		MetricsHandler: metricsHandler,
		Relay:          relay,
		InstanceID:     instanceID,
		Inngest:        trigger,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.handle("GET /health", s.HealthCheckHandler())
	s.handle("POST /clear", s.ClearQueueHandler())

	s.handle("POST /api/matchmaking/joinQueue", s.JoinQueueHandler())
	s.handle("POST /api/matchmaking/leaveQueue", s.LeaveQueueHandler())
	s.handle("GET /api/matchmaking/matchResult/{playerId}", s.MatchResultHandler())
	s.handle("GET /api/matchmaking/queueStatus", s.QueueStatusHandler())
	s.handle("GET /api/matchmaking/queuePosition/{playerId}", s.QueuePositionHandler())
	s.handle("GET /api/matchmaking/events/{playerId}", s.EventsHandler())
	s.handle("POST /api/matchmaking/runPass", s.RunPassHandler())
	s.handle("GET /api/stats/totalMatches", s.TotalMatchesHandler())

	if s.Relay != nil {
		s.handle("POST /pubsub/match-events", s.MatchEventsPushHandler())
	}
	if s.Inngest != nil {
		s.Router.Handle("/api/inngest", s.Inngest.Serve())
	}
}

// handle registers an API route behind the request middlewares.
func (s *Server) handle(pattern string, h http.Handler) {
	s.Router.Handle(pattern, Wrap(h, logRequests, verboseParam))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
