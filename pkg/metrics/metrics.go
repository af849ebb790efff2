// Package metrics provides the centralized Prometheus registry handle for
// the Reddit client. Metrics are defined in their respective packages
// (client, ratelimit, auth) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Reddit client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - reddit_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - reddit_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - reddit_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - reddit_retries_total{error_class} (Counter): Retry attempts by error class
//   - reddit_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - reddit_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Rate Limit Metrics (pkg/ratelimit):
//   - reddit_ratelimit_waits_total (Counter): Requests delayed by the local pacer
//   - reddit_ratelimit_wait_seconds (Histogram): Time spent waiting for a request slot
//
// Auth Metrics (pkg/auth):
//   - reddit_token_requests_total{status} (Counter): Token endpoint calls by outcome
//   - reddit_token_store_hits_total{layer} (Counter): Token store hits by layer (memory, redis)
//   - reddit_token_store_misses_total (Counter): Token store misses
//   - reddit_token_store_errors_total{operation} (Counter): Token store operation errors (get, set, delete)
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(reddit_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(reddit_request_duration_seconds_bucket[5m]))
//
//   # Share of requests delayed by local pacing
//   rate(reddit_ratelimit_waits_total[5m]) / rate(reddit_requests_total[5m])
//
//   # Token Store Hit Rate
//   rate(reddit_token_store_hits_total[5m]) /
//   (rate(reddit_token_store_hits_total[5m]) + rate(reddit_token_store_misses_total[5m]))
