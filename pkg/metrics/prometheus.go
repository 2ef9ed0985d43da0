// Package metrics provides Prometheus metrics for the ingestion
// pipeline and identity resolver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion metrics
	importsTotal       prometheus.Counter
	importsFailed      prometheus.Counter
	observationsParsed prometheus.Counter
	entriesDropped     prometheus.Counter

	// Identity metrics
	namesResolved   prometheus.Counter
	namesUnresolved prometheus.Counter
	overridesTotal  prometheus.Counter
	cacheSize       prometheus.Gauge

	// External lookup metrics
	lookupLatency    prometheus.Histogram
	lookupErrors     prometheus.Counter
	lookupQueueDepth prometheus.Gauge

	// Persistence metrics
	persistenceErrors prometheus.Counter
	ledgerItems       prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tradefury",
		subsystem:        "ingest",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.importsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "imports_total",
		Help:      "Total number of documents successfully ingested",
	})
	m.importsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "imports_failed_total",
		Help:      "Total number of documents rejected for missing both tables",
	})
	m.observationsParsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "observations_parsed_total",
		Help:      "Total number of price observations produced by ingestion",
	})
	m.entriesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entries_dropped_total",
		Help:      "Total number of malformed or non-positive entries skipped",
	})

	m.namesResolved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "identity",
		Name:      "names_resolved_total",
		Help:      "Total number of display names resolved to item ids",
	})
	m.namesUnresolved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "identity",
		Name:      "names_unresolved_total",
		Help:      "Total number of display names dropped as unresolvable",
	})
	m.overridesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "identity",
		Name:      "overrides_total",
		Help:      "Total number of manual name overrides applied",
	})
	m.cacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "identity",
		Name:      "cache_size",
		Help:      "Current number of name/id pairs in the identity cache",
	})

	m.lookupLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "lookup",
		Name:      "latency_milliseconds",
		Help:      "Histogram of external lookup latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.lookupErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "lookup",
		Name:      "errors_total",
		Help:      "Total number of failed external lookups",
	})
	m.lookupQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "lookup",
		Name:      "queue_depth",
		Help:      "Pending plus in-flight external lookups",
	})

	m.persistenceErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "storage",
		Name:      "errors_total",
		Help:      "Total number of failed persistence reads/writes",
	})
	m.ledgerItems = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "storage",
		Name:      "ledger_items",
		Help:      "Number of items in the persisted ledger after the last merge",
	})
}

// Package-level helpers against the global manager.

// RecordImport increments the successful-import counter.
func RecordImport() {
	globalManager.importsTotal.Inc()
}

// RecordImportFailed increments the structural-failure counter.
func RecordImportFailed() {
	globalManager.importsFailed.Inc()
}

// RecordObservationsParsed adds the observation count of one import.
func RecordObservationsParsed(n int) {
	globalManager.observationsParsed.Add(float64(n))
}

// RecordEntryDropped counts one skipped malformed entry.
func RecordEntryDropped() {
	globalManager.entriesDropped.Inc()
}

// RecordNameResolved counts one successful name resolution.
func RecordNameResolved() {
	globalManager.namesResolved.Inc()
}

// RecordNameUnresolved counts one name dropped as unresolvable.
func RecordNameUnresolved() {
	globalManager.namesUnresolved.Inc()
}

// RecordIdentityOverride counts one applied manual override.
func RecordIdentityOverride() {
	globalManager.overridesTotal.Inc()
}

// UpdateIdentityCacheSize sets the current identity cache size.
func UpdateIdentityCacheSize(n int) {
	globalManager.cacheSize.Set(float64(n))
}

// RecordLookupLatency observes one external lookup round trip.
func RecordLookupLatency(latencyMs float64) {
	globalManager.lookupLatency.Observe(latencyMs)
}

// RecordLookupError counts one failed external lookup.
func RecordLookupError() {
	globalManager.lookupErrors.Inc()
}

// UpdateLookupQueueDepth sets the pending + in-flight lookup count.
func UpdateLookupQueueDepth(n int) {
	globalManager.lookupQueueDepth.Set(float64(n))
}

// RecordPersistenceError counts one failed storage read or write.
func RecordPersistenceError() {
	globalManager.persistenceErrors.Inc()
}

// UpdateLedgerItems sets the persisted ledger's item count.
func UpdateLedgerItems(n int) {
	globalManager.ledgerItems.Set(float64(n))
}

// GetRegistry exposes the custom registry for the metrics endpoint.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
