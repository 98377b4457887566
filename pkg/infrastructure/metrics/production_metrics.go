package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "gestionale"

// Production run outcomes used as the result label
const (
	ResultSuccess      = "success"
	ResultInsufficient = "insufficient_stock"
	ResultConflict     = "conflict"
	ResultError        = "error"
)

// Recorder receives production measurements from the application layer
type Recorder interface {
	RecordProductionRun(productID, result string, units int64, duration time.Duration)
	RecordAllocationRetry(productID string)
	SetProducibleUnits(productID string, units int64)
}

// NoopRecorder discards every measurement
type NoopRecorder struct{}

func (NoopRecorder) RecordProductionRun(string, string, int64, time.Duration) {}
func (NoopRecorder) RecordAllocationRetry(string)                            {}
func (NoopRecorder) SetProducibleUnits(string, int64)                        {}

// ProductionMetricsCollector exposes production metrics to Prometheus
type ProductionMetricsCollector struct {
	runsTotal          *prometheus.CounterVec
	unitsProduced      *prometheus.CounterVec
	retriesTotal       prometheus.Counter
	allocationDuration prometheus.Histogram
	producibleUnits    *prometheus.GaugeVec
	eventsTotal        *prometheus.CounterVec
	materialShortfall  *prometheus.GaugeVec
}

// NewProductionMetricsCollector creates unregistered production metrics
func NewProductionMetricsCollector() *ProductionMetricsCollector {
	return &ProductionMetricsCollector{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "production_runs_total",
				Help:      "Production runs by outcome",
			},
			[]string{"result"},
		),

		unitsProduced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "units_produced_total",
				Help:      "Finished units produced per product",
			},
			[]string{"product_id"},
		),

		retriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "allocation_retries_total",
				Help:      "Allocations retried after a concurrent stock modification",
			},
		),

		allocationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "allocation_duration_seconds",
				Help:      "Time spent allocating stock for one production run",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),

		producibleUnits: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "producible_units",
				Help:      "Units producible from current stock at last computation",
			},
			[]string{"product_id"},
		),

		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "domain_events_total",
				Help:      "Domain events observed by type",
			},
			[]string{"type"},
		),

		materialShortfall: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "material_shortfall",
				Help:      "Quantity missing per material at the last shortage report of a product",
			},
			[]string{"product_id", "material_id"},
		),
	}
}

var _ Recorder = (*ProductionMetricsCollector)(nil)

// Register adds every metric to reg
func (c *ProductionMetricsCollector) Register(reg prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		c.runsTotal,
		c.unitsProduced,
		c.retriesTotal,
		c.allocationDuration,
		c.producibleUnits,
		c.eventsTotal,
		c.materialShortfall,
	}

	for _, metric := range metrics {
		if err := reg.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

func (c *ProductionMetricsCollector) RecordProductionRun(productID, result string, units int64, duration time.Duration) {
	c.runsTotal.WithLabelValues(result).Inc()
	c.allocationDuration.Observe(duration.Seconds())
	if result == ResultSuccess && units > 0 {
		c.unitsProduced.WithLabelValues(productID).Add(float64(units))
	}
}

func (c *ProductionMetricsCollector) RecordAllocationRetry(productID string) {
	c.retriesTotal.Inc()
}

func (c *ProductionMetricsCollector) SetProducibleUnits(productID string, units int64) {
	c.producibleUnits.WithLabelValues(productID).Set(float64(units))
}

// NewRegistry returns a registry with Go runtime and process collectors
// plus the production metrics.
func NewRegistry() (*prometheus.Registry, *ProductionMetricsCollector, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	collector := NewProductionMetricsCollector()
	if err := collector.Register(reg); err != nil {
		return nil, nil, err
	}
	return reg, collector, nil
}
