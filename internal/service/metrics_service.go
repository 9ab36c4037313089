package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the scheduling/ledger domain.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	sessionsGenerated prometheus.Counter
	attendanceCalls   prometheus.Counter
	creditDebits      prometheus.Counter
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

	sessionsGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessions_generated_total",
		Help: "Total class session instances created by the scheduler",
	})

	attendanceCalls := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_calls_total",
		Help: "Total attendance calls taken",
	})

	creditDebits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "credit_debits_total",
		Help: "Total attendance-driven credit debits applied",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, sessionsGenerated, attendanceCalls, creditDebits, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		sessionsGenerated: sessionsGenerated,
		attendanceCalls:   attendanceCalls,
		creditDebits:      creditDebits,
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

// SessionsGenerated counts session instances created by the scheduler.
func (m *MetricsService) SessionsGenerated(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.sessionsGenerated.Add(float64(count))
}

// AttendanceCall counts one successful attendance call.
func (m *MetricsService) AttendanceCall() {
	if m == nil {
		return
	}
	m.attendanceCalls.Inc()
}

// CreditDebits counts attendance-driven ledger debits.
func (m *MetricsService) CreditDebits(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.creditDebits.Add(float64(count))
}
