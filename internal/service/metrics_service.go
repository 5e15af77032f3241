package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	"github.com/bbarathsrinivasan/ACMHack/internal/planner"
)

// MetricsService encapsulates Prometheus instrumentation for the planner API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	storeDuration   *prometheus.HistogramVec
	storeConflicts  *prometheus.CounterVec
	blocksGenerated prometheus.Counter
	outcomes        *prometheus.CounterVec
	planChanges     *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plan_store_operation_seconds",
		Help:    "Duration of plan store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "result"})

	storeConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_store_conflicts_total",
		Help: "Writes rejected because of a stale version or duplicate id",
	}, []string{"operation", "kind"})

	blocksGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_blocks_generated_total",
		Help: "Study blocks proposed by the allocator",
	})

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_deliverable_outcomes_total",
		Help: "Allocator outcomes per deliverable",
	}, []string{"status"})

	planChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_changes_total",
		Help: "Audited plan changes by type",
	}, []string{"type"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		storeDuration, storeConflicts,
		blocksGenerated, outcomes, planChanges,
		goroutines,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		storeDuration:   storeDuration,
		storeConflicts:  storeConflicts,
		blocksGenerated: blocksGenerated,
		outcomes:        outcomes,
		planChanges:     planChanges,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveStoreOperation records plan store latency labelled by outcome.
func (m *MetricsService) ObserveStoreOperation(operation, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation, result).Observe(duration.Seconds())
}

// RecordStoreConflict counts a rejected write. kind is "version" or "duplicate".
func (m *MetricsService) RecordStoreConflict(operation, kind string) {
	if m == nil {
		return
	}
	m.storeConflicts.WithLabelValues(operation, kind).Inc()
}

// RecordAllocation counts proposed blocks and per-deliverable outcomes.
func (m *MetricsService) RecordAllocation(result planner.Allocation) {
	if m == nil {
		return
	}
	m.blocksGenerated.Add(float64(len(result.Blocks)))
	for _, outcome := range result.Outcomes {
		m.outcomes.WithLabelValues(string(outcome.Status)).Inc()
	}
}

// RecordPlanChanges counts audited changes.
func (m *MetricsService) RecordPlanChanges(summary models.ChangeSummary) {
	if m == nil {
		return
	}
	m.planChanges.WithLabelValues(string(models.ChangeAdded)).Add(float64(summary.Added))
	m.planChanges.WithLabelValues(string(models.ChangeRemoved)).Add(float64(summary.Removed))
	m.planChanges.WithLabelValues(string(models.ChangeMoved)).Add(float64(summary.Moved))
}
