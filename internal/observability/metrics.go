package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the bot. A nil *Metrics is
// valid and records nothing, so components can be built without metrics.
type Metrics struct {
	registry *prometheus.Registry

	generations      *prometheus.CounterVec
	strategyFailures *prometheus.CounterVec
	degraded         prometheus.Counter
	templateSaves    prometheus.Counter
	storeErrors      *prometheus.CounterVec
	updates          *prometheus.CounterVec
}

// NewMetrics creates collectors registered on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vacancy_generations_total",
			Help: "Completed generations by the strategy that produced the text.",
		}, []string{"strategy"}),
		strategyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vacancy_strategy_failures_total",
			Help: "Filler strategy failures that triggered a fallback.",
		}, []string{"strategy"}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vacancy_degraded_generations_total",
			Help: "Generations served by a fallback strategy.",
		}),
		templateSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vacancy_template_saves_total",
			Help: "Templates committed to the store.",
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vacancy_store_errors_total",
			Help: "Template store failures by operation.",
		}, []string{"op"}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vacancy_updates_total",
			Help: "Inbound chat updates by kind.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		m.generations,
		m.strategyFailures,
		m.degraded,
		m.templateSaves,
		m.storeErrors,
		m.updates,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry (used by tests).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// GenerationCompleted records a generation served by strategy.
func (m *Metrics) GenerationCompleted(strategy string, degraded bool) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(strategy).Inc()
	if degraded {
		m.degraded.Inc()
	}
}

// StrategyFailed records a failed strategy attempt.
func (m *Metrics) StrategyFailed(strategy string) {
	if m == nil {
		return
	}
	m.strategyFailures.WithLabelValues(strategy).Inc()
}

// TemplateSaved records a committed template.
func (m *Metrics) TemplateSaved() {
	if m == nil {
		return
	}
	m.templateSaves.Inc()
}

// StoreError records a store failure for op ("get", "put", "load").
func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

// UpdateReceived records an inbound update of the given kind.
func (m *Metrics) UpdateReceived(kind string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(kind).Inc()
}
