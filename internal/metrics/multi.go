package metrics

// multi forwards every observation to several Metrics.
type multi []Metrics

// Multi combines several Metrics into one. Nil entries are skipped.
func Multi(ms ...Metrics) Metrics {
	out := make(multi, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (ms multi) IncPlayersJoined() {
	for _, m := range ms {
		m.IncPlayersJoined()
	}
}

func (ms multi) IncPlayersLeft() {
	for _, m := range ms {
		m.IncPlayersLeft()
	}
}

func (ms multi) IncMatchesCreated() {
	for _, m := range ms {
		m.IncMatchesCreated()
	}
}

func (ms multi) SetQueueSize(size float64) {
	for _, m := range ms {
		m.SetQueueSize(size)
	}
}

func (ms multi) ObservePassDuration(duration float64) {
	for _, m := range ms {
		m.ObservePassDuration(duration)
	}
}

func (ms multi) IncPassesSkipped() {
	for _, m := range ms {
		m.IncPassesSkipped()
	}
}

func (ms multi) IncNotifSent(sink string) {
	for _, m := range ms {
		m.IncNotifSent(sink)
	}
}

func (ms multi) IncNotifFailed(sink string) {
	for _, m := range ms {
		m.IncNotifFailed(sink)
	}
}

func (ms multi) SetStartupTime(duration float64) {
	for _, m := range ms {
		m.SetStartupTime(duration)
	}
}

// Nop discards every observation. Embed it to implement only part of Metrics.
type Nop struct{}

func (Nop) IncPlayersJoined() {}
func (Nop) IncPlayersLeft() {}
func (Nop) IncMatchesCreated() {}
func (Nop) SetQueueSize(float64) {}
func (Nop) ObservePassDuration(float64) {}
func (Nop) IncPassesSkipped() {}
func (Nop) IncNotifSent(string) {}
func (Nop) IncNotifFailed(string) {}
func (Nop) SetStartupTime(float64) {}
