package memtable

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// op is one randomly generated mutation.
type op struct {
	key    string
	value  string
	delete bool
}

// recomputeSize derives the size formula from scratch over the final entry
// set: key + value (zero for tombstones) + 17 per entry.
func recomputeSize(mt *MemTable) int {
	total := 0
	for _, e := range mt.Entries() {
		total += len(e.Key) + len(e.Value) + 17
	}
	return total
}

func genOp() gopter.Gen {
	return gopter.CombineGens(
		gen.AlphaString(),
		gen.AlphaString(),
		gen.Bool(),
	).Map(func(vals []any) op {
		return op{key: vals[0].(string), value: vals[1].(string), delete: vals[2].(bool)}
	})
}

// TestMemTableInvariants drives random operation sequences against the
// incremental bookkeeping and checks it against independent recomputation.
func TestMemTableInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// Incremental size matches a from-scratch recomputation after every
	// prefix of the operation sequence.
	properties.Property("size matches recomputation for every prefix", prop.ForAll(
		func(ops []op) bool {
			mt := New()
			for i, o := range ops {
				if o.delete {
					mt.Delete([]byte(o.key), uint64(i))
				} else {
					mt.Set([]byte(o.key), []byte(o.value), uint64(i))
				}
				if mt.Size() != recomputeSize(mt) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genOp()),
	))

	// Entry count equals the number of distinct keys touched.
	properties.Property("len equals distinct keys touched", prop.ForAll(
		func(ops []op) bool {
			mt := New()
			distinct := make(map[string]struct{})
			for i, o := range ops {
				distinct[o.key] = struct{}{}
				if o.delete {
					mt.Delete([]byte(o.key), uint64(i))
				} else {
					mt.Set([]byte(o.key), []byte(o.value), uint64(i))
				}
			}
			return mt.Len() == len(distinct)
		},
		gen.SliceOf(genOp()),
	))

	// Get reflects exactly the last operation on each key.
	properties.Property("get reflects the last operation per key", prop.ForAll(
		func(ops []op) bool {
			mt := New()
			last := make(map[string]op)
			for i, o := range ops {
				last[o.key] = o
				if o.delete {
					mt.Delete([]byte(o.key), uint64(i))
				} else {
					mt.Set([]byte(o.key), []byte(o.value), uint64(i))
				}
			}
			for key, o := range last {
				entry, found := mt.Get([]byte(key))
				if !found {
					return false
				}
				if entry.Deleted != o.delete {
					return false
				}
				if !o.delete && string(entry.Value) != o.value {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genOp()),
	))

	properties.TestingRun(t)
}
