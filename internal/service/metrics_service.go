package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scheduler run outcomes used as metric labels.
const (
	OutcomeCommitted     = "committed"
	OutcomePreview       = "preview"
	OutcomeConfiguration = "configuration"
	OutcomeUnschedulable = "unschedulable"
	OutcomeError         = "error"
)

// MetricsService owns the Prometheus registry and the collectors for HTTP
// traffic, cache usage, scheduling runs and seating runs.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheWrite      prometheus.Histogram
	schedulerRuns   *prometheus.CounterVec
	schedulerTime   *prometheus.HistogramVec
	examsPlaced     prometheus.Counter
	seatingRuns     *prometheus.CounterVec
	seatingWarnings *prometheus.CounterVec

	requestCount   uint64
	cacheHitCount  uint64
	cacheMissCount uint64
	runCount       uint64
	failedRunCount uint64
}

// MetricsSnapshot is a compact view of the counters for health output.
type MetricsSnapshot struct {
	RequestsTotal     uint64    `json:"requestsTotal"`
	CacheHitRatio     float64   `json:"cacheHitRatio"`
	SchedulerRuns     uint64    `json:"schedulerRuns"`
	SchedulerFailures uint64    `json:"schedulerFailures"`
	Goroutines        int       `json:"goroutines"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// NewMetricsService registers every collector on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		schedulerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_scheduler_runs_total",
			Help: "Exam scheduling runs by outcome",
		}, []string{"outcome"}),
		schedulerTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exam_scheduler_run_seconds",
			Help:    "Wall time of exam scheduling runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"outcome"}),
		examsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exam_scheduler_exams_placed_total",
			Help: "Exams placed by committed runs",
		}),
		seatingRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_seating_runs_total",
			Help: "Seating plan generations by outcome",
		}, []string{"outcome"}),
		seatingWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_seating_warnings_total",
			Help: "Seating warnings by kind",
		}, []string{"kind"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal, m.cacheLookups, m.cacheWrite,
		m.schedulerRuns, m.schedulerTime, m.examsPlaced, m.seatingRuns, m.seatingWarnings, goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// RecordCacheLookup counts a cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// ObserveCacheWrite tracks cache set latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveSchedulerRun records a scheduling run and, for committed runs, the
// number of exams it placed.
func (m *MetricsService) ObserveSchedulerRun(outcome string, placed int, duration time.Duration) {
	if m == nil {
		return
	}
	m.schedulerRuns.WithLabelValues(outcome).Inc()
	m.schedulerTime.WithLabelValues(outcome).Observe(duration.Seconds())
	atomic.AddUint64(&m.runCount, 1)
	switch outcome {
	case OutcomeCommitted:
		m.examsPlaced.Add(float64(placed))
	case OutcomeConfiguration, OutcomeUnschedulable, OutcomeError:
		atomic.AddUint64(&m.failedRunCount, 1)
	}
}

// ObserveSeatingRun records a seating generation and its warnings.
func (m *MetricsService) ObserveSeatingRun(outcome string, warningKinds []string) {
	if m == nil {
		return
	}
	m.seatingRuns.WithLabelValues(outcome).Inc()
	for _, kind := range warningKinds {
		m.seatingWarnings.WithLabelValues(kind).Inc()
	}
}

// Snapshot summarises the counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return MetricsSnapshot{
		RequestsTotal:     atomic.LoadUint64(&m.requestCount),
		CacheHitRatio:     ratio,
		SchedulerRuns:     atomic.LoadUint64(&m.runCount),
		SchedulerFailures: atomic.LoadUint64(&m.failedRunCount),
		Goroutines:        runtime.NumGoroutine(),
		GeneratedAt:       time.Now().UTC(),
	}
}
