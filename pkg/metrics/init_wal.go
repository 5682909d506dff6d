package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initWALMetrics() {
	r.WALRecordsAppended = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flint_wal_records_appended_total",
			Help: "Records appended to the write-ahead log",
		},
		[]string{"op"},
	)

	r.WALBytesAppended = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "flint_wal_bytes_appended_total",
			Help: "Payload bytes appended to the write-ahead log",
		},
	)

	r.WALFlushesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flint_wal_flushes_total",
			Help: "WAL flush calls by outcome",
		},
		[]string{"status"},
	)

	r.WALRotationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "flint_wal_rotations_total",
			Help: "MemTable rotations onto a fresh WAL segment",
		},
	)

	r.RecoveryDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flint_wal_recovery_duration_seconds",
			Help:    "Wall time of WAL directory recovery",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.RecoverySegmentsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "flint_wal_recovery_segments_total",
			Help: "Old segments consolidated during recovery",
		},
	)

	r.RecoveryRecordsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "flint_wal_recovery_records_total",
			Help: "Records replayed during recovery",
		},
	)

	r.RecoveryTruncatedTails = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "flint_wal_recovery_truncated_tails_total",
			Help: "Segments whose truncated trailing record was dropped",
		},
	)
}

func (r *Registry) initMemTableMetrics() {
	r.MemTableKeys = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "flint_memtable_keys",
			Help: "Distinct keys in the active memtable, tombstones included",
		},
	)

	r.MemTableSizeBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "flint_memtable_size_bytes",
			Help: "Approximate byte size of the active memtable",
		},
	)
}
