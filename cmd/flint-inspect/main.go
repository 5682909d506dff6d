// flint-inspect dumps the records of WAL segment files, for debugging
// segments left behind after a crash.
//
// Usage:
//
//	flint-inspect -file 1757493847123456.wal
//	flint-inspect -dir ./data
package main

import (
	"flag"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/flintdb/flint/pkg/wal"
)

func main() {
	file := flag.String("file", "", "dump one segment file")
	dir := flag.String("dir", "", "dump every segment in a directory, oldest first")
	flag.Parse()

	switch {
	case *file != "":
		if err := dumpSegment(*file); err != nil {
			log.Fatalf("inspect %s: %v", *file, err)
		}
	case *dir != "":
		paths, err := wal.FilesWithExt(*dir, "wal")
		if err != nil {
			log.Fatalf("list %s: %v", *dir, err)
		}
		wal.SortSegments(paths)
		for _, p := range paths {
			if err := dumpSegment(p); err != nil {
				log.Fatalf("inspect %s: %v", p, err)
			}
		}
	default:
		flag.Usage()
	}
}

func dumpSegment(path string) error {
	r, err := wal.OpenSegment(path)
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Printf("== %s\n", path)
	n := 0
	for r.Next() {
		rec := r.Record()
		if rec.Deleted {
			fmt.Printf("%6d  ts=%d  DEL %s\n", n, rec.Timestamp, printable(rec.Key))
		} else {
			fmt.Printf("%6d  ts=%d  SET %s = %s\n", n, rec.Timestamp, printable(rec.Key), printable(rec.Value))
		}
		n++
	}
	if err := r.Err(); err != nil {
		return err
	}
	if r.Truncated() {
		fmt.Printf("%6d records, truncated trailing record dropped\n", n)
	} else {
		fmt.Printf("%6d records\n", n)
	}
	return nil
}

func printable(b []byte) string {
	if utf8.Valid(b) {
		return fmt.Sprintf("%q", b)
	}
	return fmt.Sprintf("0x%x", b)
}
