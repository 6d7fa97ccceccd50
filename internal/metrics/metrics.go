// Package metrics holds the Prometheus metrics of the analysis pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels of SymbolsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds all Prometheus metrics of the analyzer.
type Metrics struct {
	registry *prometheus.Registry

	SymbolsTotal    *prometheus.CounterVec   // labels: outcome, reason
	FetchDuration   *prometheus.HistogramVec // labels: provider
	ComputeDuration prometheus.Histogram
	BarsTotal       prometheus.Counter
	BatchesTotal    prometheus.Counter
	LastBatchTime   prometheus.Gauge
}

// NewMetrics creates the metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SymbolsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_symbols_total",
			Help: "Symbols processed, by outcome and failure reason",
		}, []string{"outcome", "reason"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analyzer_fetch_duration_seconds",
			Help:    "Market data fetch latency per symbol",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyzer_compute_duration_seconds",
			Help:    "Indicator and classification latency per symbol",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		BarsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_bars_total",
			Help: "Total bars run through the indicator engine",
		}),
		BatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_batches_total",
			Help: "Total batch runs",
		}),
		LastBatchTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analyzer_last_batch_timestamp_seconds",
			Help: "Unix time of the last completed batch",
		}),
	}

	m.registry.MustRegister(
		m.SymbolsTotal,
		m.FetchDuration,
		m.ComputeDuration,
		m.BarsTotal,
		m.BatchesTotal,
		m.LastBatchTime,
	)

	return m
}

// Registry returns the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveSuccess records a completed symbol.
func (m *Metrics) ObserveSuccess(bars int) {
	m.SymbolsTotal.WithLabelValues(OutcomeSuccess, "").Inc()
	m.BarsTotal.Add(float64(bars))
}

// ObserveFailure records a failed symbol.
func (m *Metrics) ObserveFailure(reason string) {
	m.SymbolsTotal.WithLabelValues(OutcomeFailure, reason).Inc()
}

// ObserveFetch records the latency of one fetch.
func (m *Metrics) ObserveFetch(provider string, d time.Duration) {
	m.FetchDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveCompute records the latency of the engine and classifier for one symbol.
func (m *Metrics) ObserveCompute(d time.Duration) {
	m.ComputeDuration.Observe(d.Seconds())
}

// ObserveBatch records a finished batch.
func (m *Metrics) ObserveBatch(finished time.Time) {
	m.BatchesTotal.Inc()
	m.LastBatchTime.Set(float64(finished.Unix()))
}
