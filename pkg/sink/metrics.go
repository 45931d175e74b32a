package sink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsStored tracks stored documents by sink ("file", "redis")
	DocumentsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_sink_documents_stored_total",
			Help: "Total number of documents stored",
		},
		[]string{"sink"},
	)

	// StoredBytes tracks the size of the last stored document by sink
	StoredBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_sink_stored_bytes",
			Help: "Size of the last stored document in bytes",
		},
		[]string{"sink"},
	)

	// NotModifiedResponses tracks 304 Not Modified responses
	NotModifiedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_sink_304_responses_total",
			Help: "Total number of 304 Not Modified responses for stored documents",
		},
	)

	// SinkErrors tracks sink operation errors
	SinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_sink_errors_total",
			Help: "Total number of sink operation errors",
		},
		[]string{"sink", "operation"}, // "store", "load"
	)
)
