package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	OrdersNormalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderlens_orders_normalized_total",
		Help: "Delivered orders that survived normalization",
	})

	RowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderlens_rows_dropped_total",
		Help: "Raw rows dropped during normalization",
	}, []string{"reason"})

	ComputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orderlens_compute_duration_seconds",
		Help:    "Wall-clock duration of full analytics computations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Infrastructure metrics
	DatasetFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderlens_dataset_fetches_total",
		Help: "Remote dataset fetch attempts by outcome",
	}, []string{"dataset", "outcome"})

	WorkbookBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderlens_workbook_builds_total",
		Help: "Spreadsheet workbooks rendered for export",
	})
)
