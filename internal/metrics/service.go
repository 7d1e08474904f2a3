package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service holds all the Prometheus metrics for the application.
type Service struct {
	PlayersJoined      prometheus.Counter
	PlayersLeft        prometheus.Counter
	MatchesCreated     prometheus.Counter
	QueueSize          prometheus.Gauge
	PassDuration       prometheus.Histogram
	PassesSkipped      prometheus.Counter
	NotifSent          *prometheus.CounterVec
	NotifFailed        *prometheus.CounterVec
	StartupTimeSeconds prometheus.Gauge
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		PlayersJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchmaking_players_joined_total",
			Help: "The total number of players that joined the queue.",
		}),
		PlayersLeft: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchmaking_players_left_total",
			Help: "The total number of players that left the queue before being matched.",
		}),
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchmaking_matches_created_total",
			Help: "The total number of matches committed by matching passes.",
		}),
		QueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchmaking_queue_size",
			Help: "The number of players currently waiting.",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matchmaking_pass_duration_seconds",
			Help:    "The duration of matching passes that held the lock.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		PassesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchmaking_passes_skipped_total",
			Help: "The total number of passes skipped because another instance held the lock.",
		}),
		NotifSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchmaking_notifications_sent_total",
			Help: "The total number of notifications delivered, by sink.",
		}, []string{"sink"}),
		NotifFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchmaking_notifications_failed_total",
			Help: "The total number of notifications that failed to deliver, by sink.",
		}, []string{"sink"}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchmaking_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.PlayersJoined,
		s.PlayersLeft,
		s.MatchesCreated,
		s.QueueSize,
		s.PassDuration,
		s.PassesSkipped,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncPlayersJoined() {
	s.PlayersJoined.Inc()
}

func (s *Service) IncPlayersLeft() {
	s.PlayersLeft.Inc()
}

func (s *Service) IncMatchesCreated() {
	s.MatchesCreated.Inc()
}

func (s *Service) SetQueueSize(size float64) {
	s.QueueSize.Set(size)
}

func (s *Service) ObservePassDuration(duration float64) {
	s.PassDuration.Observe(duration)
}

func (s *Service) IncPassesSkipped() {
	s.PassesSkipped.Inc()
}

func (s *Service) IncNotifSent(sink string) {
	s.NotifSent.WithLabelValues(sink).Inc()
}

func (s *Service) IncNotifFailed(sink string) {
	s.NotifFailed.WithLabelValues(sink).Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
