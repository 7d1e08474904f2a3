package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu             sync.Mutex
	playersJoined  int
	playersLeft    int
	matchesCreated int
	queueSize      float64
	passDurations  []float64
	passesSkipped  int
	notifSent      map[string]int
	notifFailed    map[string]int
	startupTime    float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		passDurations: make([]float64, 0),
		notifSent:     make(map[string]int),
		notifFailed:   make(map[string]int),
	}
}

func (m *Mock) IncPlayersJoined() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playersJoined++
}

func (m *Mock) IncPlayersLeft() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playersLeft++
}

func (m *Mock) IncMatchesCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCreated++
}

func (m *Mock) SetQueueSize(size float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueSize = size
}

func (m *Mock) ObservePassDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passDurations = append(m.passDurations, duration)
}

func (m *Mock) IncPassesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passesSkipped++
}

func (m *Mock) IncNotifSent(sink string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent[sink]++
}

func (m *Mock) IncNotifFailed(sink string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed[sink]++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// PlayersJoined returns the number of times IncPlayersJoined was called.
func (m *Mock) PlayersJoined() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playersJoined
}

// PlayersLeft returns the number of times IncPlayersLeft was called.
func (m *Mock) PlayersLeft() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playersLeft
}

// MatchesCreated returns the number of times IncMatchesCreated was called.
func (m *Mock) MatchesCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCreated
}

// QueueSize returns the last value passed to SetQueueSize.
func (m *Mock) QueueSize() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queueSize
}

// PassDurations returns every observed pass duration.
func (m *Mock) PassDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.passDurations...)
}

// PassesSkipped returns the number of times IncPassesSkipped was called.
func (m *Mock) PassesSkipped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passesSkipped
}

// NotifSent returns the number of delivered notifications for sink.
func (m *Mock) NotifSent(sink string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent[sink]
}

// NotifFailed returns the number of failed notifications for sink.
func (m *Mock) NotifFailed(sink string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed[sink]
}
