package service

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jjenkins/billt/internal/model"
	"github.com/jjenkins/billt/internal/store"
)

var (
	archiveBills = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "billt",
		Subsystem: "archive",
		Name:      "bills",
		Help:      "Number of bills in the archive.",
	})
	archiveSnapshots = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "billt",
		Subsystem: "archive",
		Name:      "snapshots",
		Help:      "Number of recorded bill snapshots.",
	})
	archiveRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "billt",
		Subsystem: "archive",
		Name:      "runs",
		Help:      "Number of recorded archive runs.",
	})
)

// ArchiveCounter is the read side of the bill archive used for metrics
type ArchiveCounter interface {
	CountBills(ctx context.Context) (int, error)
	CountSnapshots(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[model.Status]int, error)
	TopStates(ctx context.Context, limit int) ([]store.StateCount, error)
}

// RunLister is the read side of the run log used for metrics
type RunLister interface {
	CountRuns(ctx context.Context) (int, error)
	GetRecent(ctx context.Context, limit int) ([]model.SearchRun, error)
}

// MetricsService calculates archive-wide metrics
type MetricsService struct {
	bills ArchiveCounter
	runs  RunLister
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(bills ArchiveCounter, runs RunLister) *MetricsService {
	return &MetricsService{bills: bills, runs: runs}
}

// SystemMetrics represents calculated archive metrics
type SystemMetrics struct {
	TotalBills     int
	TotalSnapshots int
	TotalRuns      int
	ByStatus       map[model.Status]int
	TopStates      []store.StateCount
	LastRun        *model.SearchRun
}

// Calculate computes the metrics and publishes the totals as gauges
func (m *MetricsService) Calculate(ctx context.Context) (*SystemMetrics, error) {
	metrics := &SystemMetrics{}
	var err error

	if metrics.TotalBills, err = m.bills.CountBills(ctx); err != nil {
		return nil, fmt.Errorf("failed to calculate bill metrics: %w", err)
	}
	if metrics.TotalSnapshots, err = m.bills.CountSnapshots(ctx); err != nil {
		return nil, fmt.Errorf("failed to calculate snapshot metrics: %w", err)
	}
	if metrics.ByStatus, err = m.bills.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("failed to calculate status metrics: %w", err)
	}
	if metrics.TopStates, err = m.bills.TopStates(ctx, 5); err != nil {
		return nil, fmt.Errorf("failed to find top states: %w", err)
	}
	if metrics.TotalRuns, err = m.runs.CountRuns(ctx); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	recent, err := m.runs.GetRecent(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to find last run: %w", err)
	}
	if len(recent) > 0 {
		metrics.LastRun = &recent[0]
	}

	archiveBills.Set(float64(metrics.TotalBills))
	archiveSnapshots.Set(float64(metrics.TotalSnapshots))
	archiveRuns.Set(float64(metrics.TotalRuns))

	return metrics, nil
}
