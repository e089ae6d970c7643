// Package metrics exposes Prometheus collectors for analyses, language-model
// calls, document-service operations and HTTP requests.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/writing-optimizer/internal/feedback"
	"github.com/jonathan/writing-optimizer/internal/gdocs"
	"github.com/jonathan/writing-optimizer/internal/types"
)

const namespace = "writing_optimizer"

// Outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation_error"
	OutcomeTimeout    = "timeout"
	OutcomeProvider   = "provider_error"
	OutcomeParse      = "parse_error"
	OutcomeAuth       = "auth_error"
	OutcomeNotFound   = "not_found"
	OutcomeConflict   = "conflict"
	OutcomeError      = "error"
)

// Metrics holds the collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	analyses     *prometheus.CounterVec
	llmDuration  *prometheus.HistogramVec
	docsOps      *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	sessionSize  prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analysis actions by writing style and outcome.",
		}, []string{"style", "outcome"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Latency of language-model feedback requests.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"outcome"}),
		docsOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "docs_operations_total",
			Help:      "Document service fetch and save calls by outcome.",
		}, []string{"operation", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		sessionSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_entries",
			Help:      "Entries in the current session history.",
		}),
	}
	m.registry.MustRegister(
		m.analyses,
		m.llmDuration,
		m.docsOps,
		m.httpRequests,
		m.httpDuration,
		m.sessionSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAnalysis counts one finished analysis action and updates the session gauge.
func (m *Metrics) ObserveAnalysis(style types.WritingStyle, sessionEntries int, err error) {
	if style == "" {
		style = types.StyleGeneral
	}
	m.analyses.WithLabelValues(string(style), Outcome(err)).Inc()
	if err == nil {
		m.sessionSize.Set(float64(sessionEntries))
	}
}

// ObserveLLM matches feedback.WithObserver.
func (m *Metrics) ObserveLLM(d time.Duration, err error) {
	m.llmDuration.WithLabelValues(Outcome(err)).Observe(d.Seconds())
}

// ObserveDocs matches gdocs.WithObserver.
func (m *Metrics) ObserveDocs(op string, err error) {
	m.docsOps.WithLabelValues(op, Outcome(err)).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Outcome maps an error to a bounded label value.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var (
		validationErr *types.ValidationError
		providerErr   *feedback.ProviderError
		parseErr      *feedback.ParseError
		authErr       *gdocs.AuthError
		notFoundErr   *gdocs.NotFoundError
		conflictErr   *gdocs.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		return OutcomeValidation
	case errors.As(err, &providerErr):
		if providerErr.Timeout {
			return OutcomeTimeout
		}
		return OutcomeProvider
	case errors.As(err, &parseErr):
		return OutcomeParse
	case errors.As(err, &authErr):
		return OutcomeAuth
	case errors.As(err, &notFoundErr):
		return OutcomeNotFound
	case errors.As(err, &conflictErr):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
