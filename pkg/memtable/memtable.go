// Package memtable implements the sorted in-memory index that fronts the
// write-ahead log: at most one entry per key, holding the latest value or
// tombstone, with approximate byte-size accounting the engine's flush policy
// reads to decide when to persist the table to a sorted file.
package memtable

import (
	"bytes"
	"slices"
)

// entryOverhead is charged to Size per entry on top of the key and value
// payloads: 16 bytes of timestamp plus 1 tombstone byte.
const entryOverhead = 16 + 1

// Entry is the latest state recorded for one key.
// Value is nil if and only if Deleted is true.
type Entry struct {
	Key       []byte
	Value     []byte
	Timestamp uint64 // microseconds since epoch
	Deleted   bool
}

// MemTable keeps entries in ascending key-byte order, one per key.
// It is a single-owner structure with no internal locking: exactly one
// component mutates it at a time, and handing it to a flush path is an
// explicit ownership transfer (see db.RotateMemTable).
type MemTable struct {
	entries []Entry
	size    int
}

// New returns an empty MemTable.
func New() *MemTable {
	return &MemTable{}
}

func (m *MemTable) search(key []byte) (int, bool) {
	return slices.BinarySearchFunc(m.entries, key, func(e Entry, k []byte) int {
		return bytes.Compare(e.Key, k)
	})
}

// Set inserts or overwrites the entry for key with value at timestamp.
// The key and value bytes are copied; the caller keeps its slices.
func (m *MemTable) Set(key, value []byte, timestamp uint64) {
	if value == nil {
		value = []byte{}
	}
	entry := Entry{
		Key:       bytes.Clone(key),
		Value:     bytes.Clone(value),
		Timestamp: timestamp,
	}
	idx, found := m.search(key)
	if found {
		// Key and overhead contributions are unchanged; only the value
		// length delta moves the size. A prior tombstone contributes
		// zero value bytes, so this holds for it too.
		m.size += len(value) - len(m.entries[idx].Value)
		m.entries[idx] = entry
		return
	}
	m.entries = slices.Insert(m.entries, idx, entry)
	m.size += len(key) + len(value) + entryOverhead
}

// Delete inserts or overwrites the entry for key with a tombstone at
// timestamp. A tombstone is a real entry: Get still finds it, and Len
// still counts it.
func (m *MemTable) Delete(key []byte, timestamp uint64) {
	entry := Entry{
		Key:       bytes.Clone(key),
		Timestamp: timestamp,
		Deleted:   true,
	}
	idx, found := m.search(key)
	if found {
		m.size -= len(m.entries[idx].Value)
		m.entries[idx] = entry
		return
	}
	m.entries = slices.Insert(m.entries, idx, entry)
	m.size += len(key) + entryOverhead
}

// Get returns the entry for key, if present. The entry may be a tombstone;
// callers must check Deleted, since a tombstone is distinct from the key
// being absent from the table.
func (m *MemTable) Get(key []byte) (Entry, bool) {
	idx, found := m.search(key)
	if !found {
		return Entry{}, false
	}
	return m.entries[idx], true
}

// Len returns the number of distinct keys in the table, tombstones included.
func (m *MemTable) Len() int {
	return len(m.entries)
}

// Size returns the approximate footprint in bytes: for every entry, the key
// length plus the value length (zero for tombstones) plus a 17-byte overhead.
func (m *MemTable) Size() int {
	return m.size
}

// Entries returns the entries in ascending key order. The slice is the
// table's backing store, not a copy; it is meant for a flush path that has
// taken exclusive ownership of the table.
func (m *MemTable) Entries() []Entry {
	return m.entries
}
