// Package region implements the region data model of the segmentation
// engine: per-region sufficient statistics, the spatial neighbor-label
// set, the best-merge cache pointers, and the union-find merge chain that
// replaces the legacy pointer-chasing merge_region_label walk.
//
// Regions live in a contiguous Arena and are referenced everywhere else
// (heaps, the Merger, the Tiler) by RegionIdx, a dense 1-based label. This
// is the "label-indexed arena" translation pattern: no region is ever
// referenced by pointer, so the data structure is trivially safe to ship
// across a RecurDispatcher boundary.
package region

import (
	"hseg/internal/dissim"
	"hseg/internal/pixel"
)

// RegionIdx is a 1-based region-class label. 0 means "no region."
type RegionIdx = uint32

// NoRegion is the sentinel RegionIdx meaning "none."
const NoRegion RegionIdx = 0

// NoHeapIndex is the sentinel heap back-index meaning "not currently in
// this heap."
const NoHeapIndex = -1

// Region is the per-region-class state described in spec §3.
type Region struct {
	Label RegionIdx
	Stats dissim.Stats

	Nghbrs map[RegionIdx]struct{}

	BestNghbr       RegionIdx
	BestNghbrDissim float64

	BestRegion       RegionIdx
	BestRegionDissim float64

	Active           bool
	InitialMerge     bool
	Merged           bool
	LargeNghbrMerged bool

	NghbrHeapIdx  int
	RegionHeapIdx int

	// pixelIdxs holds the member pixel indices accumulated during
	// FirstMerge growth. It is only consulted by FindMerge; the Merger
	// never walks it, since post-FirstMerge relabeling is resolved
	// lazily through the Arena's union-find chain instead of by
	// touching every member pixel on each merge.
	pixelIdxs []int
}

// NPix returns the region's current pixel count.
func (r *Region) NPix() int { return r.Stats.Npix }

// Arena owns every region-class slot and the pixel array they partition.
type Arena struct {
	Pixels []pixel.Pixel
	Dims   pixel.Dims
	Bands  int

	Regions     []Region // index i holds the region with Label i+1
	mergeTarget []RegionIdx

	DissimFn dissim.Func
	Stencil  []pixel.Offset

	NeedSumSq     bool
	NeedSumXLogX  bool
	TrackStdDev   bool
}

// NewArena creates an arena over pixels with the given dimensions, band
// count, neighbor stencil, and dissimilarity function. capacityHint sizes
// the initial region slice to avoid repeated growth during FirstMerge.
func NewArena(pixels []pixel.Pixel, dims pixel.Dims, bands int, stencil []pixel.Offset,
	dissimFn dissim.Func, needSumSq, needSumXLogX, trackStdDev bool, capacityHint int,
) *Arena {
	if capacityHint < 16 {
		capacityHint = 16
	}
	return &Arena{
		Pixels:       pixels,
		Dims:         dims,
		Bands:        bands,
		Regions:      make([]Region, 0, capacityHint),
		mergeTarget:  make([]RegionIdx, 0, capacityHint),
		DissimFn:     dissimFn,
		Stencil:      stencil,
		NeedSumSq:    needSumSq,
		NeedSumXLogX: needSumXLogX,
		TrackStdDev:  trackStdDev,
	}
}

// NRegions returns the number of region slots currently allocated
// (including inactive ones still referenced by the merge chain).
func (a *Arena) NRegions() int { return len(a.Regions) }

// ensure grows Regions/mergeTarget so label is addressable.
func (a *Arena) ensure(label RegionIdx) {
	for RegionIdx(len(a.Regions)) < label {
		a.Regions = append(a.Regions, Region{})
		a.mergeTarget = append(a.mergeTarget, NoRegion)
	}
}

// Get returns the region slot for label. The caller must have already
// ensured the slot exists (via NewRegion).
func (a *Arena) Get(label RegionIdx) *Region {
	return &a.Regions[label-1]
}

// NewRegion allocates (or resets) the slot for label as a fresh, empty,
// active region.
func (a *Arena) NewRegion(label RegionIdx) *Region {
	a.ensure(label)
	r := a.Get(label)
	*r = Region{
		Label:         label,
		Stats:         dissim.NewStats(a.Bands, a.NeedSumSq, a.NeedSumXLogX, a.TrackStdDev),
		Nghbrs:        make(map[RegionIdx]struct{}),
		BestNghbr:     NoRegion,
		BestRegion:    NoRegion,
		Active:        true,
		NghbrHeapIdx:  NoHeapIndex,
		RegionHeapIdx: NoHeapIndex,
	}
	a.mergeTarget[label-1] = NoRegion
	return r
}

// Resolve follows the union-find merge chain for label to the currently
// active region it was absorbed into (or label itself if it is active),
// path-compressing as it goes so later lookups are O(1).
func (a *Arena) Resolve(label RegionIdx) RegionIdx {
	if label == NoRegion {
		return NoRegion
	}
	root := label
	for a.mergeTarget[root-1] != NoRegion {
		root = a.mergeTarget[root-1]
	}
	// Path compression.
	for label != root {
		next := a.mergeTarget[label-1]
		if next == NoRegion {
			break
		}
		a.mergeTarget[label-1] = root
		label = next
	}
	return root
}

// PixelRegion returns the currently active region label for the pixel at
// idx (0 if masked/unassigned), resolving through the merge chain.
func (a *Arena) PixelRegion(idx int) RegionIdx {
	return a.Resolve(a.Pixels[idx].Region)
}
