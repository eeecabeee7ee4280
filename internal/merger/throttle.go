package merger

import (
	"hseg/internal/region"
	"hseg/internal/rheap"
)

// computeMinNpixels finds the smallest min_npixels such that the number
// of active regions with npix >= min_npixels is at most spclustMax,
// incrementing one integer at a time and recomputing the true count at
// each step (original_source rhsegV1.61/rhseg/lhseg.cc:549-563), rather
// than indexing into a sorted npix array: ties at the cutoff boundary
// make "the k-th largest value" a different quantity than "the count of
// regions at or above that value" — e.g. five regions all with npix=3
// and spclustMax=2 must walk to min_npixels=4 (count 0), not stop at the
// tied value 3 (whose true count is 5, well over spclustMax).
func computeMinNpixels(a *region.Arena, spclustMax int) (minNpixels, heapLen int) {
	if len(a.ActiveLabels()) == 0 {
		return 1, 0
	}

	minNpixels = 0
	heapLen = spclustMax + 1
	for heapLen > spclustMax {
		minNpixels++
		heapLen = countAtLeast(a, minNpixels)
	}
	return minNpixels, heapLen
}

// retune recomputes min_npixels and, if it changed, rebuilds region_heap
// membership and resets max_threshold whenever min_npixels dropped
// (spec §4.D: a lowered threshold admits regions that were previously
// below the spectral-clustering floor, so the merge search must
// reconsider costs it had already ruled out).
//
// spclust_min/spclust_max bound the region_heap's *size*; min_npixels is
// the per-region pixel-count floor used to reach that size, and the two
// must never be conflated (spclust_min is never itself a min_npixels
// value). Two independent adjustments follow the initial computation:
//
//   - Back-off: if the resulting heap falls short of spclust_min, prefer
//     loosening min_npixels by one to admit more regions, but only if
//     that doesn't grow the heap past 6*spclust_max (original_source
//     lhseg.cc:407-423).
//   - Unconditional floor: regardless of spclust_min, min_npixels keeps
//     loosening until heap size >= 2 or no region remains to admit
//     (original_source lhseg.cc:425-435, 583-593) — spectral clustering
//     has nothing to compare with fewer than two candidates, and nothing
//     above this guarantees that on its own.
func retune(a *region.Arena, nghbrHeap, regionHeap *rheap.Heap, st *State, cfg Config) {
	newMin, newLen := computeMinNpixels(a, cfg.SpclustMax)

	if newMin > 1 && newLen < cfg.SpclustMin {
		loosened := countAtLeast(a, newMin-1)
		if loosened <= 6*cfg.SpclustMax {
			newMin--
			newLen = loosened
		}
	}

	for newLen < 2 && newMin > 1 {
		newMin--
		newLen = countAtLeast(a, newMin)
	}

	if newMin == st.MinNpixels {
		return
	}
	if newMin < st.MinNpixels {
		st.MaxThreshold = 0
	}
	st.MinNpixels = newMin

	rebuildRegionHeapMembership(a, regionHeap, newMin)

	// Re-sift every active region's nghbr_heap entry after the floor
	// change.
	for _, l := range a.ActiveLabels() {
		r := a.Get(l)
		if r.NghbrHeapIdx != region.NoHeapIndex {
			nghbrHeap.Fix(r.NghbrHeapIdx)
		}
	}
}

// countAtLeast counts active regions whose npix is >= m.
func countAtLeast(a *region.Arena, m int) int {
	n := 0
	for _, l := range a.ActiveLabels() {
		if a.Get(l).NPix() >= m {
			n++
		}
	}
	return n
}

// rebuildRegionHeapMembership discards region_heap's current membership
// and rebuilds it from every active region whose npix now clears
// min_npixels, recomputing each member's best-non-spatial-merge pointer
// against the new candidate set (spec §4.D / §4.E stage 3).
func rebuildRegionHeapMembership(a *region.Arena, regionHeap *rheap.Heap, minNpixels int) {
	var members []rheap.Label
	for _, l := range a.ActiveLabels() {
		if a.Get(l).NPix() >= minNpixels {
			members = append(members, l)
		}
	}
	for _, l := range members {
		a.BestRegionInit(l, members)
	}
	regionHeap.Build(members)
}
