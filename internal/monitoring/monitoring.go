package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	nuts "github.com/vaudience/go-nuts"
)

// Service records hub events and HTTP traffic as Prometheus metrics.
// Each Service owns its registry so several can coexist in one process.
type Service struct {
	registry      *prometheus.Registry
	events        *prometheus.CounterVec
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	frameBytes    prometheus.Gauge
	controlRev    prometheus.Gauge
	relayFailures *prometheus.CounterVec
}

// NewService creates a new monitoring service
func NewService() *Service {
	s := &Service{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homehub_events_total",
			Help: "Hub state events by name.",
		}, []string{"event"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homehub_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "homehub_http_request_duration_seconds",
			Help:    "HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		frameBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "homehub_frame_bytes",
			Help: "Size of the last camera frame.",
		}),
		controlRev: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "homehub_control_revision",
			Help: "Revision of the current control state.",
		}),
		relayFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homehub_relay_failures_total",
			Help: "Failed relay publications by transport.",
		}, []string{"transport"}),
	}

	s.registry.MustRegister(
		s.events,
		s.requests,
		s.duration,
		s.frameBytes,
		s.controlRev,
		s.relayFailures,
		collectors.NewGoCollector(),
	)
	return s
}

// RecordEvent records a hub event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	s.events.WithLabelValues(eventName).Inc()
	nuts.L.Infof("[Monitoring] Event %s recorded at %v with labels: %v", eventName, time.Now().Format(time.RFC3339), labels)
}

// ObserveFrame records the size of a newly received frame
func (s *Service) ObserveFrame(size int) {
	s.frameBytes.Set(float64(size))
}

// ObserveControlRevision records the revision of the latest control state
func (s *Service) ObserveControlRevision(rev uint64) {
	s.controlRev.Set(float64(rev))
}

// RelayFailed counts a failed publication on transport
func (s *Service) RelayFailed(transport string) {
	s.relayFailures.WithLabelValues(transport).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// WrapHandler counts requests and their duration under route
func (s *Service) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		s.requests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		s.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests and embedding
func (s *Service) Gatherer() prometheus.Gatherer {
	return s.registry
}
