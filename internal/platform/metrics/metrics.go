package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives simulation and query measurements.
type Recorder interface {
	RecordRun(vehicles, parcels int, duration time.Duration)
	RecordDelivery(vehicleID int, late bool)
	RecordVehicleMiles(vehicleID int, miles float64)
	RecordSkippedStop(reason string)
	RecordStatusQuery(kind string, cacheHit bool)
}

// NopRecorder discards all measurements.
type NopRecorder struct{}

var _ Recorder = NopRecorder{}

func NewNop() NopRecorder { return NopRecorder{} }

func (NopRecorder) RecordRun(_ /* vehicles */, _ /* parcels */ int, _ /* duration */ time.Duration) {}
func (NopRecorder) RecordDelivery(_ /* vehicleID */ int, _ /* late */ bool)                          {}
func (NopRecorder) RecordVehicleMiles(_ /* vehicleID */ int, _ /* miles */ float64)                  {}
func (NopRecorder) RecordSkippedStop(_ /* reason */ string)                                          {}
func (NopRecorder) RecordStatusQuery(_ /* kind */ string, _ /* cacheHit */ bool)                     {}

// PrometheusRecorder implements Recorder backed by Prometheus collectors.
// Collectors are registered lazily on first use.
type PrometheusRecorder struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	runs         prometheus.Counter
	runDuration  prometheus.Histogram
	runParcels   prometheus.Gauge
	runVehicles  prometheus.Gauge
	deliveries   *prometheus.CounterVec
	vehicleMiles *prometheus.GaugeVec
	skippedStops *prometheus.CounterVec
	queries      *prometheus.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheus uses prometheus.DefaultRegisterer when reg is nil and "dispatch" when namespace is empty.
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "dispatch"
	}

	return &PrometheusRecorder{reg: reg, namespace: namespace}
}

func (p *PrometheusRecorder) ensureRegistered() {
	p.once.Do(func() {
		p.runs = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Completed simulation runs.",
		})
		p.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "simulation",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time spent planning and simulating a run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		})
		p.runParcels = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "simulation",
			Name:      "parcels",
			Help:      "Parcels in the most recent run.",
		})
		p.runVehicles = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "simulation",
			Name:      "vehicles",
			Help:      "Vehicles in the most recent run.",
		})
		p.deliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "simulation",
			Name:      "deliveries_total",
			Help:      "Simulated deliveries by vehicle and lateness.",
		}, []string{"vehicle", "late"})
		p.vehicleMiles = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "simulation",
			Name:      "vehicle_miles",
			Help:      "Total miles driven per vehicle in the most recent run.",
		}, []string{"vehicle"})
		p.skippedStops = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "simulation",
			Name:      "skipped_stops_total",
			Help:      "Stops skipped because the address could not be resolved or reached.",
		}, []string{"reason"})
		p.queries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "status",
			Name:      "queries_total",
			Help:      "Status queries by kind and cache outcome.",
		}, []string{"kind", "cache"})

		p.reg.MustRegister(
			p.runs, p.runDuration, p.runParcels, p.runVehicles,
			p.deliveries, p.vehicleMiles, p.skippedStops, p.queries,
		)
	})
}

func (p *PrometheusRecorder) RecordRun(vehicles, parcels int, duration time.Duration) {
	p.ensureRegistered()
	p.runs.Inc()
	p.runDuration.Observe(duration.Seconds())
	p.runParcels.Set(float64(parcels))
	p.runVehicles.Set(float64(vehicles))
}

func (p *PrometheusRecorder) RecordDelivery(vehicleID int, late bool) {
	p.ensureRegistered()
	p.deliveries.WithLabelValues(strconv.Itoa(vehicleID), strconv.FormatBool(late)).Inc()
}

func (p *PrometheusRecorder) RecordVehicleMiles(vehicleID int, miles float64) {
	p.ensureRegistered()
	p.vehicleMiles.WithLabelValues(strconv.Itoa(vehicleID)).Set(miles)
}

func (p *PrometheusRecorder) RecordSkippedStop(reason string) {
	p.ensureRegistered()
	p.skippedStops.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) RecordStatusQuery(kind string, cacheHit bool) {
	p.ensureRegistered()
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	p.queries.WithLabelValues(kind, cache).Inc()
}
