package metrics

import "time"

// RecordAppend records one WAL append of the given operation ("set" or
// "delete") carrying payloadBytes of key and value data.
func (r *Registry) RecordAppend(op string, payloadBytes int) {
	r.WALRecordsAppended.WithLabelValues(op).Inc()
	r.WALBytesAppended.Add(float64(payloadBytes))
}

// RecordFlush records one WAL flush with its outcome ("ok" or "error").
func (r *Registry) RecordFlush(status string) {
	r.WALFlushesTotal.WithLabelValues(status).Inc()
}

// RecordRotation records one memtable rotation onto a fresh segment.
func (r *Registry) RecordRotation() {
	r.WALRotationsTotal.Inc()
}

// RecordRecovery records the outcome of one recovery run.
func (r *Registry) RecordRecovery(segments, records, truncatedTails int, elapsed time.Duration) {
	r.RecoveryDuration.Observe(elapsed.Seconds())
	r.RecoverySegmentsTotal.Add(float64(segments))
	r.RecoveryRecordsTotal.Add(float64(records))
	r.RecoveryTruncatedTails.Add(float64(truncatedTails))
}

// UpdateMemTable refreshes the active memtable gauges.
func (r *Registry) UpdateMemTable(keys, sizeBytes int) {
	r.MemTableKeys.Set(float64(keys))
	r.MemTableSizeBytes.Set(float64(sizeBytes))
}
