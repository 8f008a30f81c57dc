package server

import (
	"sync/atomic"
	"time"
)

// Metrics holds the process-wide counters behind the status endpoint.
// All state is in-memory and resets on restart.
type Metrics struct {
	startTime time.Time
	searches  atomic.Uint64
}

// StatusReport is the JSON body of the status endpoint.
type StatusReport struct {
	SecondsSinceLastRestart  int64   `json:"secondsSinceLastRestart"`
	SearchesSinceLastRestart uint64  `json:"searchesSinceLastRestart"`
	SearchesPerSecond        float64 `json:"searchesPerSecond"`
}

// NewMetrics creates metrics anchored at the current time.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// IncrementSearches records one completed search.
func (m *Metrics) IncrementSearches() {
	m.searches.Add(1)
}

// Snapshot returns a point-in-time view of the counters.
func (m *Metrics) Snapshot() StatusReport {
	seconds := int64(time.Since(m.startTime).Seconds())
	searches := m.searches.Load()

	perSecond := 0.0
	if seconds > 0 {
		perSecond = float64(searches) / float64(seconds)
	}

	return StatusReport{
		SecondsSinceLastRestart:  seconds,
		SearchesSinceLastRestart: searches,
		SearchesPerSecond:        perSecond,
	}
}
