// Package metrics exposes lookup, conversion and transmission counters
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "img2pacs"

// Metrics holds the collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	Lookups       *prometheus.CounterVec
	CacheHits     prometheus.Counter
	Conversions   *prometheus.CounterVec
	Transmissions *prometheus.CounterVec
	StageSeconds  *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patient_lookups_total",
			Help:      "Patient lookups by outcome.",
		}, []string{"outcome"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patient_lookup_cache_hits_total",
			Help:      "Patient lookups answered from cache.",
		}),
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversion requests by result.",
		}, []string{"result"}),
		Transmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transmissions_total",
			Help:      "Store operations by result.",
		}, []string{"result"}),
		StageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent per conversion stage.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"stage"}),
	}
	m.Registry.MustRegister(
		m.Lookups,
		m.CacheHits,
		m.Conversions,
		m.Transmissions,
		m.StageSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Lookup counts one lookup outcome
func (m *Metrics) Lookup(outcome string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(outcome).Inc()
}

// CacheHit counts one cached lookup
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// Conversion counts one finished conversion
func (m *Metrics) Conversion(result string) {
	if m == nil {
		return
	}
	m.Conversions.WithLabelValues(result).Inc()
}

// Transmission counts one store result
func (m *Metrics) Transmission(sent bool) {
	if m == nil {
		return
	}
	result := "failed"
	if sent {
		result = "sent"
	}
	m.Transmissions.WithLabelValues(result).Inc()
}

// Stage observes the time since start for a stage
func (m *Metrics) Stage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// WriteTextfile writes the registry for the node_exporter textfile collector,
// used by one-shot CLI runs that never serve /metrics
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
