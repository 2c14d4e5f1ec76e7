package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestWorkflowMetricsExportsCountersAndHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWorkflowMetrics(reg)

	metrics.ObserveBorrowCommit("success", 150*time.Millisecond)
	metrics.IncBorrowConflict()
	metrics.IncReturn("success")
	metrics.IncReturn("not_found")
	metrics.ObserveManifestRender("pdf", 80*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "borrow_commits_total", "outcome", "success"); err != nil {
		t.Fatalf("fetch commits: %v", err)
	} else if got != 1 {
		t.Fatalf("expected commits=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "returns_total", "outcome", "not_found"); err != nil {
		t.Fatalf("fetch returns: %v", err)
	} else if got != 1 {
		t.Fatalf("expected returns=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "manifest_render_duration_seconds", "format", "pdf"); err != nil {
		t.Fatalf("fetch manifest duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestWorkflowMetricsNilReceiverIsSafe(t *testing.T) {
	var metrics *WorkflowMetrics
	metrics.ObserveBorrowCommit("success", time.Second)
	metrics.IncBorrowConflict()
	metrics.IncReturn("success")
	metrics.ObserveManifestRender("xlsx", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
