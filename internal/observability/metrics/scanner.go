package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auditscan/auditscan/internal/core/domain"
)

// ScannerMetrics tracks scan-run outcomes for the worker's /metrics
// endpoint.
type ScannerMetrics struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	runsInFlight    prometheus.Gauge
	recordsTotal    *prometheus.CounterVec
	cacheHitsTotal  prometheus.Counter
	coveragePercent prometheus.Gauge
	missingRequired prometheus.Gauge
}

func NewScannerMetrics(service string) *ScannerMetrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auditscan",
			Subsystem: "worker",
			Name:      "scan_runs_total",
			Help:      "Total scan runs by status.",
		},
		[]string{"service", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "auditscan",
			Subsystem: "worker",
			Name:      "scan_run_duration_seconds",
			Help:      "Scan run duration in seconds by status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"service", "status"},
	)
	runsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "auditscan",
			Subsystem: "worker",
			Name:      "scan_runs_in_flight",
			Help:      "Number of in-flight scan runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	recordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auditscan",
			Subsystem: "worker",
			Name:      "classification_records_total",
			Help:      "Classification records produced, by outcome.",
		},
		[]string{"service", "outcome"},
	)
	cacheHitsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "auditscan",
			Subsystem: "worker",
			Name:      "classification_cache_hits_total",
			Help:      "Classifications served from the result cache.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	coveragePercent := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "auditscan",
			Subsystem: "worker",
			Name:      "coverage_percentage",
			Help:      "Required-type coverage of the most recent run.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	missingRequired := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "auditscan",
			Subsystem: "worker",
			Name:      "missing_required_types",
			Help:      "Required types without an above-threshold match in the most recent run.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(runsTotal, runDuration, runsInFlight, recordsTotal, cacheHitsTotal, coveragePercent, missingRequired)

	return &ScannerMetrics{
		registry:        registry,
		runsTotal:       runsTotal,
		runDuration:     runDuration,
		runsInFlight:    runsInFlight,
		recordsTotal:    recordsTotal,
		cacheHitsTotal:  cacheHitsTotal,
		coveragePercent: coveragePercent,
		missingRequired: missingRequired,
	}
}

func (m *ScannerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ScannerMetrics) StartRun() {
	m.runsInFlight.Inc()
}

func (m *ScannerMetrics) FinishRun(service string, duration time.Duration, err error) {
	m.runsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.runsTotal.WithLabelValues(service, status).Inc()
	m.runDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

// ObserveBundle records per-run outcome figures from the finished bundle.
func (m *ScannerMetrics) ObserveBundle(service string, bundle *domain.ReportBundle) {
	for _, record := range bundle.Classifications {
		outcome := "classified"
		switch {
		case record.Failed():
			outcome = "failed"
		case record.TypeID == domain.TypeUnknown:
			outcome = "unknown"
		}
		m.recordsTotal.WithLabelValues(service, outcome).Inc()
		if record.FromCache {
			m.cacheHitsTotal.Inc()
		}
	}
	m.coveragePercent.Set(bundle.Verification.CoveragePercentage)
	m.missingRequired.Set(float64(len(bundle.Verification.MissingTypes)))
}
