// Package db ties the write-ahead log and the memtable into the handle the
// engine's write path uses: durable set/delete, memtable reads, recovery on
// open, and explicit memtable handoff to the (external) flush path.
//
// SSTable creation, compaction, read-path merging, and flush-threshold
// policy live outside this package; it only supports them through
// RotateMemTable and RetireSegment.
package db

import (
	"errors"
	"os"
	"time"

	"github.com/flintdb/flint/pkg/config"
	"github.com/flintdb/flint/pkg/logging"
	"github.com/flintdb/flint/pkg/memtable"
	"github.com/flintdb/flint/pkg/metrics"
	"github.com/flintdb/flint/pkg/wal"
)

// ErrClosed is returned by operations on a closed DB.
var ErrClosed = errors.New("db: closed")

// DB owns the active WAL segment and the active memtable. It is synchronous
// and single-owner, like the pieces it wraps: the engine guarantees one
// mutator at a time.
type DB struct {
	cfg     *config.Config
	wal     *wal.WAL
	table   *memtable.MemTable
	log     logging.Logger
	metrics *metrics.Registry
	closed  bool

	// now stamps writes with microseconds since epoch. Overridable in tests.
	now func() uint64
}

// Open recovers every existing segment in cfg.DataDir into one consolidated
// segment plus a rebuilt memtable, and returns a DB appending to the new
// segment.
func Open(cfg *config.Config) (*DB, error) {
	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := wal.EnsureDir(cfg.DataDir); err != nil {
		return nil, err
	}

	log := logging.DefaultLogger().With(logging.Component("db"))
	log.SetLevel(logging.ParseLevel(cfg.LogLevel))

	w, table, stats, err := wal.LoadFromDir(cfg.DataDir, cfg.WALBufferSize)
	if err != nil {
		return nil, err
	}

	reg := metrics.DefaultRegistry()
	reg.RecordRecovery(stats.Segments, stats.Records, stats.TruncatedTails, stats.Elapsed)
	reg.UpdateMemTable(table.Len(), table.Size())

	log.Info("opened",
		logging.Path(cfg.DataDir),
		logging.Int("keys", table.Len()),
		logging.Int("memtable_bytes", table.Size()),
	)

	return &DB{
		cfg:     cfg,
		wal:     w,
		table:   table,
		log:     log,
		metrics: reg,
		now:     func() uint64 { return uint64(time.Now().UnixMicro()) },
	}, nil
}

// Set records key=value in the WAL, then applies it to the memtable. The
// record is buffered; call Flush at durability checkpoints.
func (db *DB) Set(key, value []byte) error {
	if db.closed {
		return ErrClosed
	}
	ts := db.now()
	if err := db.wal.AppendSet(key, value, ts); err != nil {
		return err
	}
	db.table.Set(key, value, ts)
	db.metrics.RecordAppend("set", len(key)+len(value))
	db.metrics.UpdateMemTable(db.table.Len(), db.table.Size())
	return nil
}

// Delete records a tombstone for key in the WAL, then applies it to the
// memtable.
func (db *DB) Delete(key []byte) error {
	if db.closed {
		return ErrClosed
	}
	ts := db.now()
	if err := db.wal.AppendDelete(key, ts); err != nil {
		return err
	}
	db.table.Delete(key, ts)
	db.metrics.RecordAppend("delete", len(key))
	db.metrics.UpdateMemTable(db.table.Len(), db.table.Size())
	return nil
}

// Get returns the memtable entry for key. The entry may be a tombstone;
// absence only means this key has no state in the memtable, older state may
// still exist in flushed files outside this core.
func (db *DB) Get(key []byte) (memtable.Entry, bool) {
	return db.table.Get(key)
}

// Len returns the number of distinct keys in the active memtable.
func (db *DB) Len() int {
	return db.table.Len()
}

// Size returns the active memtable's approximate byte size, the number the
// engine's flush policy watches.
func (db *DB) Size() int {
	return db.table.Size()
}

// Flush forces buffered WAL records to disk.
func (db *DB) Flush() error {
	if db.closed {
		return ErrClosed
	}
	if err := db.wal.Flush(); err != nil {
		db.metrics.RecordFlush("error")
		return err
	}
	db.metrics.RecordFlush("ok")
	return nil
}

// RotateMemTable hands the populated memtable to the caller and swaps in an
// empty one backed by a fresh WAL segment. The caller takes exclusive
// ownership of the returned table for flushing to a sorted file; writes
// continue into the new table. The retired segment stays on disk until the
// caller confirms the flush and passes its path to RetireSegment.
func (db *DB) RotateMemTable() (old *memtable.MemTable, retiredSegment string, err error) {
	if db.closed {
		return nil, "", ErrClosed
	}
	if err := db.wal.Close(); err != nil {
		return nil, "", err
	}
	retiredSegment = db.wal.Path()

	w, err := wal.New(db.cfg.DataDir, db.cfg.WALBufferSize)
	if err != nil {
		// The old segment is flushed and intact; the caller can reopen.
		return nil, "", err
	}

	old = db.table
	db.table = memtable.New()
	db.wal = w

	db.metrics.RecordRotation()
	db.metrics.UpdateMemTable(0, 0)
	db.log.Info("memtable rotated",
		logging.Int("keys", old.Len()),
		logging.Int("bytes", old.Size()),
		logging.Path(retiredSegment),
	)
	return old, retiredSegment, nil
}

// RetireSegment deletes a WAL segment whose contents are durable elsewhere,
// typically after RotateMemTable's table has been flushed to a sorted file.
func (db *DB) RetireSegment(path string) error {
	return os.Remove(path)
}

// Close flushes and closes the active WAL segment.
func (db *DB) Close() error {
	if db.closed {
		return nil
	}
	db.closed = true
	return db.wal.Close()
}
