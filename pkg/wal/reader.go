package wal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// SegmentReader decodes the records of one on-disk segment sequentially.
// It is forward-only and not restartable.
//
// A short read mid-record ends the sequence without an error: a process
// crash during an append leaves a truncated trailing record, and dropping
// it is preferable to refusing the whole segment. Truncated reports whether
// that happened so callers can log or count it.
type SegmentReader struct {
	file      *os.File
	buf       *bufio.Reader
	rec       Record
	err       error
	truncated bool
	done      bool
}

// OpenSegment opens the segment file at path for reading.
func OpenSegment(path string) (*SegmentReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wal: open segment: %w", err)
	}
	return &SegmentReader{file: file, buf: bufio.NewReader(file)}, nil
}

// Next advances to the next record. It returns false at the end of the
// segment, whether reached cleanly or by hitting a truncated tail.
func (s *SegmentReader) Next() bool {
	if s.done {
		return false
	}
	rec, err := readRecord(s.buf)
	if err != nil {
		s.done = true
		switch {
		case errors.Is(err, io.ErrUnexpectedEOF):
			s.truncated = true
		case errors.Is(err, io.EOF):
			// Clean exhaustion.
		default:
			s.err = err
		}
		return false
	}
	s.rec = rec
	return true
}

// Record returns the record read by the most recent successful Next.
func (s *SegmentReader) Record() Record {
	return s.rec
}

// Truncated reports whether iteration stopped on a partial trailing record
// rather than a clean end of segment.
func (s *SegmentReader) Truncated() bool {
	return s.truncated
}

// Err returns the first I/O error hit while reading, if any. End of segment
// and truncated tails are not errors.
func (s *SegmentReader) Err() error {
	return s.err
}

// Close releases the underlying file handle.
func (s *SegmentReader) Close() error {
	return s.file.Close()
}
