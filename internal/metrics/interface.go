package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncPlayersJoined()
	IncPlayersLeft()
	IncMatchesCreated()
	SetQueueSize(size float64)
	ObservePassDuration(duration float64)
	IncPassesSkipped()
	IncNotifSent(sink string)
	IncNotifFailed(sink string)
	SetStartupTime(duration float64)
}
