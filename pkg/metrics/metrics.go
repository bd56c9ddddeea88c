// Package metrics provides the centralized Prometheus metrics registry for
// the Shopify GraphQL client. All metrics are defined in their respective
// packages (client, throttle, cache) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Throttle Metrics (pkg/throttle):
//   - shopify_throttle_available_points (Gauge): Estimated available query cost
//   - shopify_throttle_waits_total (Counter): Requests delayed by a low budget
//   - shopify_throttle_wait_seconds (Histogram): Throttle wait durations
//   - shopify_throttle_acquires_total (Counter): Budget acquisitions
//
// Request Metrics (pkg/client):
//   - shopify_gql_requests_total{outcome} (Counter): Requests by outcome
//     (ok, partial, graphql_error, throttled, http_error, transport_error)
//   - shopify_gql_request_duration_seconds (Histogram): Request duration
//     including throttle waits
//   - shopify_gql_query_cost (Histogram): Actual query cost per telemetry
//
// Throttled-Retry Metrics (pkg/client):
//   - shopify_gql_throttled_retries_total (Counter): Retries after THROTTLED
//   - shopify_gql_throttled_backoff_seconds (Histogram): Backoff durations
//   - shopify_gql_throttled_exhausted_total (Counter): Retry budget exhaustions
//
// Cache Metrics (pkg/cache):
//   - shopify_gql_cache_hits_total{layer="redis"} (Counter): Cache hits
//   - shopify_gql_cache_misses_total (Counter): Cache misses
//   - shopify_gql_cache_size_bytes{layer="redis"} (Gauge): Cache size
//   - shopify_gql_cache_errors_total{operation} (Counter): Cache errors
//
// Example Prometheus Queries:
//
//   # Throttle pressure
//   rate(shopify_throttle_waits_total[5m]) / rate(shopify_throttle_acquires_total[5m])
//
//   # Budget headroom
//   shopify_throttle_available_points < 100
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(shopify_gql_request_duration_seconds_bucket[5m]))
//
//   # Cache hit rate
//   sum(rate(shopify_gql_cache_hits_total[5m])) /
//   (sum(rate(shopify_gql_cache_hits_total[5m])) + sum(rate(shopify_gql_cache_misses_total[5m])))
