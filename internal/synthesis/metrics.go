package synthesis

import (
	"sync/atomic"
	"time"
)

// Metrics tracks calls to the remote model.
type Metrics struct {
	calls     int64
	errors    int64
	latencyNs int64
}

// Stats is a point-in-time copy of Metrics.
type Stats struct {
	Calls        int64   `json:"calls"`
	Errors       int64   `json:"errors"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
	ErrorRate    float64 `json:"errorRate"`
}

func (m *Metrics) record(d time.Duration, err error) {
	atomic.AddInt64(&m.calls, 1)
	atomic.AddInt64(&m.latencyNs, d.Nanoseconds())
	if err != nil {
		atomic.AddInt64(&m.errors, 1)
	}
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() Stats {
	calls := atomic.LoadInt64(&m.calls)
	errs := atomic.LoadInt64(&m.errors)
	lat := atomic.LoadInt64(&m.latencyNs)

	s := Stats{Calls: calls, Errors: errs}
	if calls > 0 {
		s.AvgLatencyMs = float64(lat) / float64(calls) / 1e6
		s.ErrorRate = float64(errs) / float64(calls) * 100
	}
	return s
}

// StatsReporter is implemented by synthesizers that call out.
type StatsReporter interface {
	Stats() Stats
}
