package wal

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func decodeOne(t *testing.T, data []byte) Record {
	t.Helper()
	rec, err := readRecord(bufio.NewReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Failed to decode record: %v", err)
	}
	return rec
}

func TestRecord_SetLayout(t *testing.T) {
	data := EncodeSet([]byte("ab"), []byte("xyz"), 7)

	// 1 tombstone + 16 timestamp + 8 klen + 2 key + 8 vlen + 3 value
	if len(data) != 1+16+8+2+8+3 {
		t.Fatalf("Expected 38 bytes, got %d", len(data))
	}
	if data[0] != 0 {
		t.Errorf("Expected tombstone byte 0, got %d", data[0])
	}
	if ts := binary.LittleEndian.Uint64(data[1:9]); ts != 7 {
		t.Errorf("Expected timestamp 7, got %d", ts)
	}
	for i := 9; i < 17; i++ {
		if data[i] != 0 {
			t.Fatalf("Expected reserved timestamp byte %d to be zero, got %d", i, data[i])
		}
	}
	if klen := binary.LittleEndian.Uint64(data[17:25]); klen != 2 {
		t.Errorf("Expected key length 2, got %d", klen)
	}
	if !bytes.Equal(data[25:27], []byte("ab")) {
		t.Errorf("Expected key bytes 'ab', got %q", data[25:27])
	}
	if vlen := binary.LittleEndian.Uint64(data[27:35]); vlen != 3 {
		t.Errorf("Expected value length 3, got %d", vlen)
	}
	if !bytes.Equal(data[35:], []byte("xyz")) {
		t.Errorf("Expected value bytes 'xyz', got %q", data[35:])
	}
}

func TestRecord_DeleteLayout(t *testing.T) {
	data := EncodeDelete([]byte("key"), 42)

	// Tombstones carry no value length and no value bytes.
	if len(data) != 1+16+8+3 {
		t.Fatalf("Expected 28 bytes, got %d", len(data))
	}
	if data[0] != 1 {
		t.Errorf("Expected tombstone byte 1, got %d", data[0])
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	large := bytes.Repeat([]byte("x"), 10000)

	cases := []struct {
		name  string
		key   []byte
		value []byte
	}{
		{"empty key and value", []byte{}, []byte{}},
		{"one byte each", []byte("k"), []byte("v")},
		{"large key", large, []byte("v")},
		{"large value", []byte("k"), large},
		{"binary bytes", []byte{0, 1, 255}, []byte{255, 0, 13}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := decodeOne(t, EncodeSet(tc.key, tc.value, 123456789))
			if rec.Deleted {
				t.Error("Expected a set record")
			}
			if !bytes.Equal(rec.Key, tc.key) {
				t.Errorf("Key mismatch: got %d bytes, want %d", len(rec.Key), len(tc.key))
			}
			if !bytes.Equal(rec.Value, tc.value) {
				t.Errorf("Value mismatch: got %d bytes, want %d", len(rec.Value), len(tc.value))
			}
			if rec.Value == nil {
				t.Error("Expected non-nil value for a set record")
			}
			if rec.Timestamp != 123456789 {
				t.Errorf("Expected timestamp 123456789, got %d", rec.Timestamp)
			}
		})
	}
}

func TestRecord_RoundTripTombstone(t *testing.T) {
	rec := decodeOne(t, EncodeDelete([]byte("gone"), 99))

	if !rec.Deleted {
		t.Error("Expected a tombstone")
	}
	if rec.Value != nil {
		t.Errorf("Expected nil value, got %q", rec.Value)
	}
	if !bytes.Equal(rec.Key, []byte("gone")) {
		t.Errorf("Expected key 'gone', got %q", rec.Key)
	}
	if rec.Timestamp != 99 {
		t.Errorf("Expected timestamp 99, got %d", rec.Timestamp)
	}
}

func TestRecord_ReadSequence(t *testing.T) {
	var data []byte
	data = append(data, EncodeSet([]byte("a"), []byte("1"), 0)...)
	data = append(data, EncodeDelete([]byte("a"), 1)...)
	data = append(data, EncodeSet([]byte("b"), []byte("2"), 2)...)

	r := bufio.NewReader(bytes.NewReader(data))
	for i := 0; i < 3; i++ {
		if _, err := readRecord(r); err != nil {
			t.Fatalf("Record %d: unexpected error %v", i, err)
		}
	}
	if _, err := readRecord(r); err != io.EOF {
		t.Errorf("Expected io.EOF at record boundary, got %v", err)
	}
}

func TestRecord_TruncatedMidRecord(t *testing.T) {
	data := EncodeSet([]byte("key"), []byte("value"), 5)

	// Every proper prefix must decode as a truncated record, except the
	// empty prefix which is a clean boundary EOF.
	for n := 1; n < len(data); n++ {
		r := bufio.NewReader(bytes.NewReader(data[:n]))
		if _, err := readRecord(r); err != io.ErrUnexpectedEOF {
			t.Errorf("Prefix of %d bytes: expected io.ErrUnexpectedEOF, got %v", n, err)
		}
	}
}
