package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal tracks feed runs by outcome ("success", "failed")
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_runs_total",
			Help: "Total number of feed runs by outcome",
		},
		[]string{"status"},
	)

	// RunDuration tracks how long a full run takes
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_run_duration_seconds",
			Help:    "Feed run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// CategoriesGenerated tracks emitted categories by rank
	CategoriesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_categories_generated_total",
			Help: "Total number of categories emitted by rank",
		},
		[]string{"rank"},
	)

	// ItemsGenerated tracks emitted items by market
	ItemsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_items_generated_total",
			Help: "Total number of items emitted by market",
		},
		[]string{"market"},
	)

	// DocumentBytes tracks the size of the last rendered document
	DocumentBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_document_bytes",
			Help: "Size of the last rendered feed document in bytes",
		},
	)
)
