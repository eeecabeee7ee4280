package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hseg/internal/dissim"
	"hseg/internal/pixel"
	"hseg/internal/region"
	"hseg/internal/rheap"
)

// buildLine seeds a 1-D chain of n singleton regions, each a neighbor of
// its immediate predecessor/successor, with the given per-pixel value.
func buildLine(t *testing.T, values []float64) (*region.Arena, *rheap.Heap, *rheap.Heap) {
	t.Helper()
	dims := pixel.Dims{Cols: len(values), Rows: 1}
	pixels := make([]pixel.Pixel, dims.NPix())
	for i, v := range values {
		pixels[i] = pixel.Pixel{Features: []float64{v}, Mask: true}
	}
	a := region.NewArena(pixels, dims, 1, pixel.Stencil2D(1), dissim.ForCriterion(dissim.MSE, false), true, false, false, 16)
	for i := range values {
		a.SeedRegion(region.RegionIdx(i+1), i, 0, 0)
	}
	nghbrHeap := rheap.NewNghbrHeap(a)
	regionHeap := rheap.NewRegionHeap(a)
	var labels []rheap.Label
	for i := range values {
		labels = append(labels, rheap.Label(i+1))
		a.BestNghbrInit(region.RegionIdx(i + 1))
	}
	nghbrHeap.Build(labels)
	return a, nghbrHeap, regionHeap
}

func TestMergeRegionsStepMergesCheapestPair(t *testing.T) {
	a, nghbrHeap, regionHeap := buildLine(t, []float64{0, 0, 100, 100})
	m := New(a, nghbrHeap, regionHeap, Config{})
	st := &State{NRegions: 4}

	m.mergeRegionsStep(st, false)

	assert.Equal(t, 3, st.NRegions)
	// Regions 1 and 2 (identical value) were the cheapest pair; region 1
	// survives as the smaller-label tie-break.
	assert.True(t, a.Get(1).Active)
	assert.False(t, a.Get(2).Active)
	assert.Equal(t, region.RegionIdx(1), a.Resolve(2))
}

func TestRunStopsAtTargetRegionCount(t *testing.T) {
	a, nghbrHeap, regionHeap := buildLine(t, []float64{0, 0, 0, 0, 50, 50})
	m := New(a, nghbrHeap, regionHeap, Config{})
	st := &State{NRegions: 6}

	stop := func(nregions int, _ float64) bool { return nregions <= 2 }
	m.Run(st, stop)

	assert.Equal(t, 2, st.NRegions)
}

func TestRunConvergesWhenNoMergesRemain(t *testing.T) {
	a, nghbrHeap, regionHeap := buildLine(t, []float64{0, 100, 0, 100})
	m := New(a, nghbrHeap, regionHeap, Config{})
	st := &State{NRegions: 4}

	stop := func(nregions int, _ float64) bool { return nregions <= 1 }
	m.Run(st, stop)

	require.Equal(t, 1, st.NRegions) // every pair stays adjacent along the line, so merging continues to one region
}

func TestZeroThresholdPassMergesOnlyIdenticalPixels(t *testing.T) {
	a, nghbrHeap, regionHeap := buildLine(t, []float64{5, 5, 5, 9})
	m := New(a, nghbrHeap, regionHeap, Config{})
	st := &State{NRegions: 4}

	m.zeroThresholdPass(st)

	assert.Equal(t, 2, st.NRegions) // the three 5s collapse to one region
	assert.Greater(t, st.MaxThreshold, 0.0)
}

func TestComputeMinNpixelsRespectsSpclustMax(t *testing.T) {
	a, _, _ := buildLine(t, []float64{1, 2, 3, 4, 5, 6})
	got, heapLen := computeMinNpixels(a, 3)
	assert.LessOrEqual(t, countAtLeast(a, got), 3)
	assert.Equal(t, countAtLeast(a, got), heapLen)
}

// TestComputeMinNpixelsTiedBoundaryWalksPastTheTie reproduces the
// boundary case where several regions share the same npix: five regions
// each with npix=3 and spclustMax=2 must walk to min_npixels=4 (count
// 0), since the true count at npix>=3 is 5, not "however many sorted
// slots are left after spclustMax entries."
func TestComputeMinNpixelsTiedBoundaryWalksPastTheTie(t *testing.T) {
	a, _, _ := buildLine(t, make([]float64, 15))
	// Merge three singleton regions into one at a time, for five
	// groups, so every surviving region has npix=3.
	for base := 1; base <= 13; base += 3 {
		a.DoMerge(region.RegionIdx(base), region.RegionIdx(base+1))
		a.DoMerge(region.RegionIdx(base), region.RegionIdx(base+2))
	}
	require.Len(t, a.ActiveLabels(), 5)

	minNpixels, heapLen := computeMinNpixels(a, 2)

	assert.Equal(t, 4, minNpixels)
	assert.Equal(t, 0, heapLen)
}

func TestRetuneRebuildsRegionHeapMembership(t *testing.T) {
	a, nghbrHeap, regionHeap := buildLine(t, []float64{1, 1, 1, 1})
	st := &State{NRegions: 4, MinNpixels: 0}
	cfg := Config{SpclustWght: 0.5, SpclustMin: 1, SpclustMax: 4}

	retune(a, nghbrHeap, regionHeap, st, cfg)

	assert.Equal(t, 4, regionHeap.Len())
	assert.True(t, regionHeap.CheckInvariant())
}

// TestRetuneEnforcesHeapSizeAtLeastTwoEvenBeyondBackoffCeiling builds one
// region with npix=2 and twenty singleton npix=1 regions, with
// spclustMax=1 and spclustMin=2. computeMinNpixels alone settles on
// min_npixels=2 (heap size 1, just the npix=2 region), and the back-off
// step that would normally prefer reaching spclustMin is rejected
// because loosening to min_npixels=1 would admit all 21 regions, far
// past 6*spclustMax=6. The dedicated heap>=2 floor must still loosen
// min_npixels to 1 regardless of spclustMin or that rejected back-off.
func TestRetuneEnforcesHeapSizeAtLeastTwoEvenBeyondBackoffCeiling(t *testing.T) {
	values := make([]float64, 22)
	a, nghbrHeap, regionHeap := buildLine(t, values)
	a.DoMerge(region.RegionIdx(1), region.RegionIdx(2))
	require.Len(t, a.ActiveLabels(), 21)

	st := &State{NRegions: 21, MinNpixels: 0}
	cfg := Config{SpclustWght: 1, SpclustMin: 2, SpclustMax: 1}

	retune(a, nghbrHeap, regionHeap, st, cfg)

	assert.Equal(t, 1, st.MinNpixels)
	assert.Equal(t, 21, regionHeap.Len())
}
