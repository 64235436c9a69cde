// Package metrics documents the Prometheus metrics exposed by the proxy.
// Collectors live in their respective packages (upstream, cache, proxy) and
// register themselves via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the proxy.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Upstream Metrics (pkg/upstream):
//   - roproxy_upstream_requests_total{host, status} (Counter): request attempts
//   - roproxy_upstream_request_duration_seconds{host} (Histogram): attempt duration
//   - roproxy_upstream_retries_total{error_class} (Counter): retry attempts
//   - roproxy_upstream_retry_backoff_seconds{error_class} (Histogram): backoff durations
//   - roproxy_upstream_retry_exhausted_total{error_class} (Counter): exhausted retry loops
//
// Cache Metrics (pkg/cache):
//   - roproxy_cache_hits_total{backend} (Counter): result cache hits
//   - roproxy_cache_misses_total{backend} (Counter): misses, expired entries included
//   - roproxy_cache_errors_total{backend, operation} (Counter): cache operation errors
//
// Proxy Metrics (pkg/proxy):
//   - roproxy_http_requests_total{status} (Counter): inbound requests by status
//   - roproxy_http_request_duration_seconds (Histogram): inbound request duration
//   - roproxy_coalesced_requests_total (Counter): requests that joined an in-flight traversal
//   - roproxy_traversals_total{outcome} (Counter): upstream traversals by outcome
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(roproxy_cache_hits_total[5m])) /
//   (sum(rate(roproxy_cache_hits_total[5m])) + sum(rate(roproxy_cache_misses_total[5m])))
//
//   # Upstream Error Rate
//   rate(roproxy_upstream_retry_exhausted_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(roproxy_http_request_duration_seconds_bucket[5m]))
