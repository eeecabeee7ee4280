package rheap

import "hseg/internal/region"

// NewNghbrHeap builds the heap keyed by each region's cached
// best-spatial-neighbor dissimilarity, writing position changes back
// into Region.NghbrHeapIdx.
func NewNghbrHeap(a *region.Arena) *Heap {
	return New(
		func(l Label) float64 { return a.Get(l).BestNghbrDissim },
		func(l Label, pos int) { a.Get(l).NghbrHeapIdx = pos },
	)
}

// NewRegionHeap builds the heap keyed by each region's cached
// best-non-spatial (spectral clustering) dissimilarity, writing
// position changes back into Region.RegionHeapIdx.
func NewRegionHeap(a *region.Arena) *Heap {
	return New(
		func(l Label) float64 { return a.Get(l).BestRegionDissim },
		func(l Label, pos int) { a.Get(l).RegionHeapIdx = pos },
	)
}
