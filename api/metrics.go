package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/color-game/contest/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	submissions     prometheus.Counter
	imports         *prometheus.CounterVec
	entries         prometheus.Gauge
	tags            prometheus.Gauge
	referenceSet    prometheus.Gauge
}

// NewMetrics registers the contest collectors on reg. A nil reg gets a
// fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	promautoFactory := promauto.With(reg)
	m := &Metrics{registry: reg}
	m.requests = promautoFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "contest_http_requests_total",
		Help: "HTTP requests by route, method and status code",
	}, []string{"route", "method", "code"})
	m.requestDuration = promautoFactory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contest_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	m.submissions = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "contest_submissions_total",
		Help: "number of accepted contest entries",
	})
	m.imports = promautoFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "contest_imports_total",
		Help: "import attempts by mode and result",
	}, []string{"mode", "result"})
	m.entries = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "contest_entries",
		Help: "number of entries in the ledger",
	})
	m.tags = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "contest_tags",
		Help: "number of tags in the global tag set",
	})
	m.referenceSet = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "contest_reference_color_set",
		Help: "1 when a reference color is set",
	})
	return m
}

// ObserveState refreshes the ledger gauges
func (m *Metrics) ObserveState(state models.ContestState) {
	m.entries.Set(float64(len(state.Entries)))
	m.tags.Set(float64(len(state.Tags)))
	if state.ReferenceColor != nil {
		m.referenceSet.Set(1)
	} else {
		m.referenceSet.Set(0)
	}
}

func (m *Metrics) observeImport(mode string, result models.ImportResult) {
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	m.imports.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (m *Metrics) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
