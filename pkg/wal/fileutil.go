package wal

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// segmentExt identifies segment files to the directory scan used by recovery.
const segmentExt = "wal"

// EnsureDir creates dir if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// FileExists reports whether a file exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FilesWithExt returns the paths of the regular files in dir whose extension
// matches ext (without the dot). No ordering is guaranteed; callers that need
// one must sort the result themselves.
func FilesWithExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.TrimPrefix(filepath.Ext(e.Name()), ".") == ext {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// segmentPath builds the name of a segment created at the given microsecond
// timestamp: <timestamp>.wal inside dir.
func segmentPath(dir string, timestamp uint64) string {
	return filepath.Join(dir, strconv.FormatUint(timestamp, 10)+"."+segmentExt)
}

// segmentTimestamp parses the creation timestamp encoded in a segment
// filename. ok is false for names that are not a plain decimal timestamp.
func segmentTimestamp(path string) (ts uint64, ok bool) {
	name := strings.TrimSuffix(filepath.Base(path), "."+segmentExt)
	ts, err := strconv.ParseUint(name, 10, 64)
	return ts, err == nil
}

// SortSegments orders segment paths chronologically by their parsed creation
// timestamps. Plain string order happens to coincide for equal-width decimal
// names, but replay correctness must not hang on that, so the timestamps are
// compared numerically. Non-conforming names sort after conforming ones,
// lexicographically among themselves.
func SortSegments(paths []string) {
	slices.SortFunc(paths, func(a, b string) int {
		ta, aok := segmentTimestamp(a)
		tb, bok := segmentTimestamp(b)
		switch {
		case aok && bok:
			if c := cmp.Compare(ta, tb); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		case aok:
			return -1
		case bok:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
}
