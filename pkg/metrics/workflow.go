package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics records counters and timings for the borrow, return, and
// manifest workflows.
type WorkflowMetrics struct {
	borrowDuration   *prometheus.HistogramVec
	borrowCommits    *prometheus.CounterVec
	borrowConflicts  prometheus.Counter
	returns          *prometheus.CounterVec
	manifestDuration *prometheus.HistogramVec
	manifestBuilds   *prometheus.CounterVec
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	borrowDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "borrow_commit_duration_seconds",
		Help:    "Duration of borrow commit transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	borrowCommits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "borrow_commits_total",
		Help: "Borrow commit attempts by outcome.",
	}, []string{"outcome"})
	borrowConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "borrow_conflicts_total",
		Help: "Borrow commits rejected because availability changed.",
	})
	returns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "returns_total",
		Help: "Return operations by outcome.",
	}, []string{"outcome"})
	manifestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "manifest_render_duration_seconds",
		Help:    "Duration of manifest rendering in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})
	manifestBuilds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "manifest_builds_total",
		Help: "Manifest documents rendered by format.",
	}, []string{"format"})
	reg.MustRegister(borrowDuration, borrowCommits, borrowConflicts, returns, manifestDuration, manifestBuilds)
	return &WorkflowMetrics{
		borrowDuration:   borrowDuration,
		borrowCommits:    borrowCommits,
		borrowConflicts:  borrowConflicts,
		returns:          returns,
		manifestDuration: manifestDuration,
		manifestBuilds:   manifestBuilds,
	}
}

// ObserveBorrowCommit records one borrow commit attempt with its outcome.
func (m *WorkflowMetrics) ObserveBorrowCommit(outcome string, duration time.Duration) {
	if m == nil || m.borrowDuration == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.borrowDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.borrowCommits.WithLabelValues(label).Inc()
}

// IncBorrowConflict increments the availability conflict counter.
func (m *WorkflowMetrics) IncBorrowConflict() {
	if m == nil || m.borrowConflicts == nil {
		return
	}
	m.borrowConflicts.Inc()
}

// IncReturn records one return operation with its outcome.
func (m *WorkflowMetrics) IncReturn(outcome string) {
	if m == nil || m.returns == nil {
		return
	}
	m.returns.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveManifestRender records one manifest render for the given format.
func (m *WorkflowMetrics) ObserveManifestRender(format string, duration time.Duration) {
	if m == nil || m.manifestDuration == nil {
		return
	}
	label := normalizeLabel(format)
	m.manifestDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.manifestBuilds.WithLabelValues(label).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
