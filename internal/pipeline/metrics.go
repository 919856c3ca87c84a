package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"jamsync/internal/session"
)

// Metrics holds run counters in a private registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	sessions  prometheus.Counter
	skipped   *prometheus.CounterVec
	matched   prometheus.Counter
	unmatched prometheus.Counter
	malformed prometheus.Counter
	score     prometheus.Histogram
	lastRun   prometheus.Gauge
}

// NewMetrics registers the jamsync collectors in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jamsync_sessions_extracted_total",
			Help: "Sessions extracted from worksheets.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jamsync_worksheets_skipped_total",
			Help: "Worksheets that produced no session, by reason.",
		}, []string{"reason"}),
		matched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jamsync_songs_matched_total",
			Help: "Song events replaced by a catalog entry.",
		}),
		unmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jamsync_songs_unmatched_total",
			Help: "Song events kept verbatim because no entry reached the threshold.",
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jamsync_malformed_entries_total",
			Help: "Song events dropped for an empty or placeholder song/artist.",
		}),
		score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jamsync_match_score",
			Help:    "Similarity score of accepted catalog matches.",
			Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 0.99, 1},
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jamsync_last_run_timestamp_seconds",
			Help: "Unix time the last sync run finished.",
		}),
	}
	m.registry.MustRegister(m.sessions, m.skipped, m.matched, m.unmatched, m.malformed, m.score, m.lastRun)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) sessionExtracted() {
	if m != nil {
		m.sessions.Inc()
	}
}

func (m *Metrics) worksheetSkipped(reason session.SkipReason) {
	if m != nil {
		m.skipped.WithLabelValues(string(reason)).Inc()
	}
}

func (m *Metrics) songMatched(score float64) {
	if m != nil {
		m.matched.Inc()
		m.score.Observe(score)
	}
}

func (m *Metrics) songUnmatched() {
	if m != nil {
		m.unmatched.Inc()
	}
}

func (m *Metrics) malformedEntry() {
	if m != nil {
		m.malformed.Inc()
	}
}

func (m *Metrics) runFinished(report *Report) {
	if m != nil {
		m.lastRun.Set(float64(report.FinishedAt.Unix()))
	}
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
