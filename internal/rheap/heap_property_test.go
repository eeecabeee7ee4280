package rheap

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestHeapPopYieldsNondecreasingKeys checks the heap property directly
// (spec §8): for any sequence of keys, Build followed by repeated Pop
// drains labels in nondecreasing key order, and the parent-child
// invariant holds after every single pop.
func TestHeapPopYieldsNondecreasingKeys(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("Pop drains a built heap in nondecreasing key order", prop.ForAll(
		func(values []float64) bool {
			keys := make(map[Label]float64, len(values))
			pos := make(map[Label]int, len(values))
			h := New(
				func(l Label) float64 { return keys[l] },
				func(l Label, p int) { pos[l] = p },
			)

			items := make([]Label, len(values))
			for i, v := range values {
				l := Label(i + 1)
				keys[l] = v
				items[i] = l
			}
			h.Build(items)

			last, first := 0.0, true
			for h.Len() > 0 {
				if !h.CheckInvariant() {
					return false
				}
				top, ok := h.Pop()
				if !ok {
					return false
				}
				k := keys[top]
				if !first && k < last {
					return false
				}
				last, first = k, false
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0, 1000)),
	))

	properties.TestingRun(t)
}
