package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unisched/schedule-builder-api/internal/engine"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// scheduling engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	schedulingRuns   prometheus.Counter
	assignmentsTotal prometheus.Counter
	unscheduledTotal prometheus.Counter
	conflictsByType  *prometheus.CounterVec
	optimizerGain    prometheus.Histogram
}

// NewMetricsService registers the Prometheus collectors.
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

	schedulingRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_runs_total",
		Help: "Total number of schedule generation runs",
	})

	assignmentsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_assignments_total",
		Help: "Total lectures successfully assigned",
	})

	unscheduledTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_unscheduled_total",
		Help: "Total lectures left unscheduled",
	})

	conflictsByType := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_conflicts_total",
		Help: "Conflicts found by audit passes, by type",
	}, []string{"type"})

	optimizerGain := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_score_improvement",
		Help:    "Overall score improvement achieved by optimization runs",
		Buckets: []float64{0, 0.5, 1, 2, 5, 10, 20, 50},
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, schedulingRuns,
		assignmentsTotal, unscheduledTotal, conflictsByType, optimizerGain, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		schedulingRuns:   schedulingRuns,
		assignmentsTotal: assignmentsTotal,
		unscheduledTotal: unscheduledTotal,
		conflictsByType:  conflictsByType,
		optimizerGain:    optimizerGain,
	}
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

// RecordRun counts one generation pass and its outcome split.
func (m *MetricsService) RecordRun(assigned, unscheduled int) {
	if m == nil {
		return
	}
	m.schedulingRuns.Inc()
	m.assignmentsTotal.Add(float64(assigned))
	m.unscheduledTotal.Add(float64(unscheduled))
}

// RecordConflicts counts audit findings by category.
func (m *MetricsService) RecordConflicts(report engine.ConflictReport) {
	if m == nil {
		return
	}
	add := func(t engine.ConflictType, conflicts []engine.Conflict) {
		if len(conflicts) > 0 {
			m.conflictsByType.WithLabelValues(string(t)).Add(float64(len(conflicts)))
		}
	}
	add(engine.ConflictClassroom, report.Classroom)
	add(engine.ConflictInstructor, report.Instructor)
	add(engine.ConflictGroup, report.Group)
	add(engine.ConflictSubgroup, report.Subgroup)
	add(engine.ConflictTimeSlot, report.TimeSlot)
	add(engine.ConflictLectureExercise, report.LectureExercise)
	add(engine.ConflictCapacity, report.Capacity)
	add(engine.ConflictDepartmental, report.Departmental)
}

// RecordOptimization observes one run's score improvement.
func (m *MetricsService) RecordOptimization(improvement float64) {
	if m == nil {
		return
	}
	if improvement < 0 {
		improvement = 0
	}
	m.optimizerGain.Observe(improvement)
}
