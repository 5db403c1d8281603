package legiscan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "billt",
			Subsystem: "legiscan",
			Name:      "requests_total",
			Help:      "LegiScan API requests by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	recordsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "billt",
			Subsystem: "legiscan",
			Name:      "records_skipped_total",
			Help:      "Search result records that failed to decode and were skipped.",
		},
	)

	detailFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "billt",
			Subsystem: "legiscan",
			Name:      "detail_failures_total",
			Help:      "getBill lookups that failed during enrichment.",
		},
	)
)
