// Package wal implements the durability layer of the storage engine: an
// append-only write-ahead log split into timestamp-named segment files, a
// sequential reader over one segment, and the recovery protocol that rebuilds
// the memtable from all existing segments after a restart.
package wal

import (
	"bufio"
	"fmt"
	"os"
	"time"
)

// WAL is an append-only writer bound to one segment file. Appends are
// buffered; nothing is durable until Flush. At most one WAL may append to a
// given segment at a time; the surrounding engine enforces that, this type
// carries no locking.
type WAL struct {
	path   string
	file   *os.File
	writer *bufio.Writer
}

// New creates a fresh segment inside dir, named by the current microsecond
// timestamp, and returns a WAL appending to it. bufferSize sets the append
// buffer in bytes; 0 uses bufio's default.
func New(dir string, bufferSize int) (*WAL, error) {
	ts := uint64(time.Now().UnixMicro())
	path := segmentPath(dir, ts)
	// Back-to-back creations can land in the same microsecond; step the
	// timestamp forward until the name is free.
	for FileExists(path) {
		ts++
		path = segmentPath(dir, ts)
	}
	return Open(path, bufferSize)
}

// Open opens (or creates) the segment at path for appending.
func Open(path string, bufferSize int) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("wal: open segment: %w", err)
	}
	w := &WAL{path: path, file: file}
	if bufferSize > 0 {
		w.writer = bufio.NewWriterSize(file, bufferSize)
	} else {
		w.writer = bufio.NewWriter(file)
	}
	return w, nil
}

// Path returns the on-disk path of the segment this WAL appends to.
func (w *WAL) Path() string {
	return w.path
}

// AppendSet writes one complete set record for key/value at timestamp.
// The write is buffered and not durable until Flush.
func (w *WAL) AppendSet(key, value []byte, timestamp uint64) error {
	if _, err := w.writer.Write(EncodeSet(key, value, timestamp)); err != nil {
		return fmt.Errorf("wal: append set: %w", err)
	}
	return nil
}

// AppendDelete writes one complete tombstone record for key at timestamp.
// The write is buffered and not durable until Flush.
func (w *WAL) AppendDelete(key []byte, timestamp uint64) error {
	if _, err := w.writer.Write(EncodeDelete(key, timestamp)); err != nil {
		return fmt.Errorf("wal: append delete: %w", err)
	}
	return nil
}

// appendRecord re-appends a recovered record verbatim.
func (w *WAL) appendRecord(rec Record) error {
	if rec.Deleted {
		return w.AppendDelete(rec.Key, rec.Timestamp)
	}
	return w.AppendSet(rec.Key, rec.Value, rec.Timestamp)
}

// Flush forces buffered records to the OS and syncs the file. This is the
// durability checkpoint; the engine decides when to call it, there is no
// auto-flush per append.
func (w *WAL) Flush() error {
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("wal: flush: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("wal: sync: %w", err)
	}
	return nil
}

// Reader reopens this WAL's segment read-only and returns a reader over the
// records currently on disk. The reader is independent of the write cursor;
// records still sitting in the append buffer are not visible to it.
func (w *WAL) Reader() (*SegmentReader, error) {
	return OpenSegment(w.path)
}

// Close flushes buffered records and closes the segment file.
func (w *WAL) Close() error {
	if err := w.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
