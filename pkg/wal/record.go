package wal

import (
	"bufio"
	"encoding/binary"
	"io"
)

// On-disk layout of one record, all integers little-endian:
//
//	+----------------+-----------------+-------------+-----+-------------+-------+
//	| tombstone (1B) | timestamp (16B) | k_size (8B) | key | v_size (8B) | value |
//	+----------------+-----------------+-------------+-----+-------------+-------+
//
// v_size and value are present only when the tombstone byte is zero. Length
// fields are fixed 64-bit regardless of host word size so segments written
// on one machine decode on any other. The timestamp field is 16 bytes wide;
// the upper 8 bytes are reserved and written as zero.
const (
	tombstoneSize = 1
	timestampSize = 16
	lengthSize    = 8

	headerSize = tombstoneSize + timestampSize + lengthSize
)

// Record is one decoded log record: a set or, when Deleted is true, a
// tombstone. Value is nil if and only if Deleted is true.
type Record struct {
	Key       []byte
	Value     []byte
	Timestamp uint64 // microseconds since epoch
	Deleted   bool
}

// EncodeSet encodes one complete set record for key/value at timestamp.
func EncodeSet(key, value []byte, timestamp uint64) []byte {
	buf := make([]byte, 0, headerSize+len(key)+lengthSize+len(value))
	buf = append(buf, 0)
	buf = appendTimestamp(buf, timestamp)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(key)))
	buf = append(buf, key...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(value)))
	buf = append(buf, value...)
	return buf
}

// EncodeDelete encodes one complete tombstone record for key at timestamp.
// Tombstone records carry no value length and no value bytes.
func EncodeDelete(key []byte, timestamp uint64) []byte {
	buf := make([]byte, 0, headerSize+len(key))
	buf = append(buf, 1)
	buf = appendTimestamp(buf, timestamp)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(key)))
	buf = append(buf, key...)
	return buf
}

func appendTimestamp(buf []byte, timestamp uint64) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, timestamp)
	// Reserved upper half of the 128-bit timestamp field.
	return append(buf, 0, 0, 0, 0, 0, 0, 0, 0)
}

// readRecord decodes one record from r. It returns io.EOF when the stream is
// exhausted exactly at a record boundary and io.ErrUnexpectedEOF when it ends
// inside a record, which is how a crash mid-append leaves a segment. Decoding
// trusts the length fields; it does not verify record integrity.
func readRecord(r *bufio.Reader) (Record, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:1]); err != nil {
		// Nothing read at a record boundary: clean end of segment.
		return Record{}, err
	}
	if _, err := io.ReadFull(r, header[1:]); err != nil {
		return Record{}, eofAsUnexpected(err)
	}

	rec := Record{
		Deleted:   header[0] != 0,
		Timestamp: binary.LittleEndian.Uint64(header[1:9]),
	}

	keyLen := binary.LittleEndian.Uint64(header[headerSize-lengthSize:])
	rec.Key = make([]byte, keyLen)
	if _, err := io.ReadFull(r, rec.Key); err != nil {
		return Record{}, eofAsUnexpected(err)
	}
	if rec.Deleted {
		return rec, nil
	}

	var lenBuf [lengthSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Record{}, eofAsUnexpected(err)
	}
	valueLen := binary.LittleEndian.Uint64(lenBuf[:])
	rec.Value = make([]byte, valueLen)
	if _, err := io.ReadFull(r, rec.Value); err != nil {
		return Record{}, eofAsUnexpected(err)
	}
	return rec, nil
}

// eofAsUnexpected normalizes mid-record EOFs so callers can tell a clean
// segment end from a truncated trailing write.
func eofAsUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
