package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend (memory, redis).
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roproxy_cache_hits_total",
			Help: "Total number of result cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks cache misses, expired entries included.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roproxy_cache_misses_total",
			Help: "Total number of result cache misses",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors by backend and operation.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roproxy_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"},
	)
)
