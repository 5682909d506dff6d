// Package metrics exposes Prometheus instrumentation for the storage engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every collector the engine reports.
type Registry struct {
	// WAL metrics
	WALRecordsAppended *prometheus.CounterVec
	WALBytesAppended   prometheus.Counter
	WALFlushesTotal    *prometheus.CounterVec
	WALRotationsTotal  prometheus.Counter

	// Recovery metrics
	RecoveryDuration       prometheus.Histogram
	RecoverySegmentsTotal  prometheus.Counter
	RecoveryRecordsTotal   prometheus.Counter
	RecoveryTruncatedTails prometheus.Counter

	// MemTable metrics
	MemTableKeys      prometheus.Gauge
	MemTableSizeBytes prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all collectors initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}
	r.initWALMetrics()
	r.initMemTableMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry, for
// wiring into whatever scrape surface the enclosing process runs.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
