// Package metrics documents the Prometheus metrics exposed by the
// Helix client. The metrics themselves are defined next to the code
// they instrument (pkg/transport, pkg/cache) and registered via
// promauto; this package only carries the registry handle and the
// reference list.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Helix client.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/transport):
//   - helix_requests_total{endpoint, status} (Counter): Requests by
//     endpoint and HTTP status ("cached" for cache hits)
//   - helix_request_duration_seconds{endpoint} (Histogram): Request
//     duration including gate wait and retries
//   - helix_retries_total{status} (Counter): Retry attempts by
//     transient status code
//   - helix_retry_exhausted_total (Counter): Requests that spent the
//     whole attempt budget
//
// Rate Limit Metrics (pkg/transport):
//   - helix_rate_limit_deferrals_total (Counter): Gate releases
//     deferred to the quota reset timestamp
//   - helix_rate_limit_wait_seconds (Histogram): How long deferred
//     gates stayed closed
//
// Cache Metrics (pkg/cache):
//   - helix_cache_hits_total{layer="redis"} (Counter): Cache hits
//   - helix_cache_misses_total (Counter): Cache misses
//   - helix_cache_size_bytes{layer="redis"} (Gauge): Bytes written
//   - helix_cache_errors_total{operation} (Counter): Operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(helix_cache_hits_total[5m])) /
//   (sum(rate(helix_cache_hits_total[5m])) + sum(rate(helix_cache_misses_total[5m])))
//
//   # Retry Pressure
//   rate(helix_retries_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(helix_request_duration_seconds_bucket[5m]))
