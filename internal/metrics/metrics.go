// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Chat pipeline outcomes.
const (
	OutcomeSuccess              = "success"
	OutcomeInvalid              = "invalid"
	OutcomeConfigError          = "config_error"
	OutcomeGeneratorUnavailable = "generator_unavailable"
	OutcomeGenerationFailed     = "generation_failed"
)

// Metrics groups the service collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	chatRequests       *prometheus.CounterVec
	classifications    *prometheus.CounterVec
	personaFallbacks   prometheus.Counter
	generationDuration *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "companion",
			Name:      "chat_requests_total",
			Help:      "Chat pipeline runs by outcome.",
		}, []string{"outcome"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "companion",
			Name:      "emotion_classifications_total",
			Help:      "Emotion classifications by detected label; unknown when classification failed.",
		}, []string{"label"}),
		personaFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "companion",
			Name:      "persona_fallbacks_total",
			Help:      "Requests naming an unknown persona that fell back to the default.",
		}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "companion",
			Name:      "generation_duration_seconds",
			Help:      "Latency of generation calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"backend", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "companion",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "companion",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.chatRequests,
		m.classifications,
		m.personaFallbacks,
		m.generationDuration,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ObserveChat counts one chat pipeline run.
func (m *Metrics) ObserveChat(outcome string) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(outcome).Inc()
}

// ObserveClassification counts a classification attempt.
func (m *Metrics) ObserveClassification(label string, ok bool) {
	if m == nil {
		return
	}
	if !ok || label == "" {
		label = "unknown"
	}
	m.classifications.WithLabelValues(label).Inc()
}

// ObservePersonaFallback counts a persona fallback.
func (m *Metrics) ObservePersonaFallback() {
	if m == nil {
		return
	}
	m.personaFallbacks.Inc()
}

// ObserveGeneration records the latency of one generation call.
func (m *Metrics) ObserveGeneration(backend string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeGenerationFailed
	}
	m.generationDuration.WithLabelValues(backend, outcome).Observe(elapsed.Seconds())
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
