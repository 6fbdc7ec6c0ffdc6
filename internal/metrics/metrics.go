// Package metrics holds the Prometheus collectors shared by the generation
// pipeline and the QA assistant.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics is a private registry plus the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	GenerationRequests *prometheus.CounterVec
	ProviderDuration   *prometheus.HistogramVec
	AssistantQueries   *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GenerationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoqa_generation_requests_total",
			Help: "Artifact generation requests by artifact kind, input source and outcome.",
		}, []string{"kind", "source", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "autoqa_provider_request_duration_seconds",
			Help:    "Latency of calls to the generation backend.",
			Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation"}),
		AssistantQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoqa_assistant_queries_total",
			Help: "QA assistant questions by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.GenerationRequests, m.ProviderDuration, m.AssistantQueries)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveGeneration counts one generation request. A nil receiver is a no-op.
func (m *Metrics) ObserveGeneration(kind, source string, err error) {
	if m == nil {
		return
	}
	if source == "" {
		source = "prompt"
	}
	m.GenerationRequests.WithLabelValues(kind, source, outcome(err)).Inc()
}

// ObserveProvider records the latency of one backend call.
func (m *Metrics) ObserveProvider(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.ProviderDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveAssistant counts one assistant question.
func (m *Metrics) ObserveAssistant(err error) {
	if m == nil {
		return
	}
	m.AssistantQueries.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
