// Package metrics provides the Prometheus registry and handler for the feed
// generator. All metrics are defined in their respective packages (client,
// throttle, pagination, feed, sink) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the feed generator.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the metrics registered on Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler exposing every registered metric.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Transport Metrics (pkg/client):
//   - feed_graphql_requests_total{status} (Counter): GraphQL requests by outcome (ok, query_error, throttled, network_error, HTTP status)
//   - feed_graphql_request_duration_seconds (Histogram): GraphQL request duration
//
// Fetch Metrics (pkg/client):
//   - feed_fetch_retries_total (Counter): Retries after a throttling signal
//   - feed_fetch_backoff_seconds (Histogram): Backoff before a retry
//   - feed_fetch_retry_exhausted_total (Counter): Fetches throttled through every attempt
//   - feed_fetch_errors_total{error_class} (Counter): Fetch failures by class (throttled, query, transport)
//
// Throttle Metrics (pkg/throttle):
//   - feed_throttle_currently_available (Gauge): Query cost available in the remote bucket
//   - feed_throttle_waits_total (Counter): Requests held back by a low bucket
//   - feed_throttle_wait_seconds (Histogram): Time held back
//
// Pagination Metrics (pkg/pagination):
//   - feed_pages_fetched_total (Counter): Connection pages fetched
//   - feed_records_fetched_total (Counter): Records yielded
//
// Feed Metrics (pkg/feed):
//   - feed_runs_total{status} (Counter): Runs by outcome (success, failed)
//   - feed_run_duration_seconds (Histogram): Run duration
//   - feed_categories_generated_total{rank} (Counter): Categories by rank
//   - feed_items_generated_total{market} (Counter): Items by market
//   - feed_document_bytes (Gauge): Size of the last rendered document
//
// Sink Metrics (pkg/sink):
//   - feed_sink_documents_stored_total{sink} (Counter): Stored documents
//   - feed_sink_stored_bytes{sink} (Gauge): Size of the last stored document
//   - feed_sink_304_responses_total (Counter): 304 Not Modified responses
//   - feed_sink_errors_total{sink, operation} (Counter): Sink operation errors
//
// Example Prometheus Queries:
//
//   # Run failure rate
//   sum(rate(feed_runs_total{status="failed"}[1h])) / sum(rate(feed_runs_total[1h]))
//
//   # Throttle pressure
//   rate(feed_fetch_retries_total[5m])
//
//   # Bucket running low
//   feed_throttle_currently_available < 100
//
//   # P95 GraphQL latency
//   histogram_quantile(0.95, rate(feed_graphql_request_duration_seconds_bucket[5m]))
