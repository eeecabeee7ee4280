package region

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"hseg/internal/dissim"
	"hseg/internal/pixel"
)

// genMergeSequence generates a sequence of (survivorOffset, loserOffset)
// pairs, each a distance into the still-active label list at the time
// the merge is applied, used to drive an arbitrary chain of DoMerge
// calls without ever picking an already-inactive region.
func genMergeSequence() gopter.Gen {
	return gen.SliceOfN(12, gen.IntRange(0, 9999))
}

// TestDoMergeKeepsNeighborSetsSymmetric checks invariant 2 (spec §8): for
// any sequence of merges, every surviving region's neighbor set remains
// symmetric — if A lists B as a neighbor, B lists A too, and neither
// lists a label that has since been merged away.
func TestDoMergeKeepsNeighborSetsSymmetric(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("neighbor sets stay symmetric across a random merge chain", prop.ForAll(
		func(picks []int) bool {
			const n = 10
			dims := pixel.Dims{Cols: n, Rows: 1}
			pixels := make([]pixel.Pixel, n)
			for i := range pixels {
				pixels[i] = pixel.Pixel{Features: []float64{float64(i)}, Mask: true}
			}
			a := NewArena(pixels, dims, 1, pixel.Stencil2D(1), dissim.ForCriterion(dissim.MSE, false), true, false, false, n)
			for i := 0; i < n; i++ {
				a.SeedRegion(RegionIdx(i+1), i, 0, 0)
			}

			for _, pick := range picks {
				active := a.ActiveLabels()
				if len(active) < 2 {
					break
				}
				i := pick % len(active)
				j := (pick/len(active) + 1) % len(active)
				if i == j {
					continue
				}
				a.DoMerge(active[i], active[j])
			}

			for _, l := range a.ActiveLabels() {
				r := a.Get(l)
				for nb := range r.Nghbrs {
					if !a.Get(nb).Active {
						return false
					}
					if _, ok := a.Get(nb).Nghbrs[l]; !ok {
						return false
					}
				}
			}
			return true
		},
		genMergeSequence(),
	))

	properties.TestingRun(t)
}
