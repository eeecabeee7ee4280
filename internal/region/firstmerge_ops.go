package region

import (
	"math"

	"hseg/internal/pixel"
)

// SeedRegion creates a brand-new region from a single seed pixel: it
// allocates the region slot, folds the pixel's statistics in, records
// pixel membership, assigns the pixel's label, and registers adjacency
// edges to any already-labeled neighbors (spec §4.C fm_init).
func (a *Arena) SeedRegion(label RegionIdx, col, row, slice int) {
	r := a.NewRegion(label)
	idx := a.Dims.Index(col, row, slice)
	px := &a.Pixels[idx]
	px.Region = label
	r.Stats.AddPixel(px.Features, px.StdDev, px.Edge, px.EdgeSet, false)
	r.pixelIdxs = append(r.pixelIdxs, idx)
	a.registerNeighborEdges(label, col, row, slice)
}

// RescanNeighbors re-walks a pixel's neighbor stencil to pick up
// adjacency edges that did not exist yet the last time this region's
// pixels were scanned (spec §4.C fm_init, called again for a pixel that
// had already been absorbed into a region by an earlier growth step).
func (a *Arena) RescanNeighbors(label RegionIdx, col, row, slice int) {
	a.registerNeighborEdges(label, col, row, slice)
}

func (a *Arena) registerNeighborEdges(label RegionIdx, col, row, slice int) {
	r := a.Get(label)
	for _, off := range a.Stencil {
		nc, nr_, ns := col+off.DCol, row+off.DRow, slice+off.DSlice
		if !a.Dims.InBounds(nc, nr_, ns) {
			continue
		}
		nIdx := a.Dims.Index(nc, nr_, ns)
		npx := a.Pixels[nIdx]
		if !npx.Mask || npx.Region == NoRegion {
			continue
		}
		nLabel := a.Resolve(npx.Region)
		if nLabel == label || nLabel == NoRegion {
			continue
		}
		r.Nghbrs[nLabel] = struct{}{}
		a.Get(nLabel).Nghbrs[label] = struct{}{}
	}
}

// FindMerge scans the stencil neighborhood of every pixel currently in
// label's region for the lowest-dissimilarity unassigned (Region == 0)
// neighbor pixel with dissim below threshold. It returns the candidate
// pixel index and true, or false if none qualifies (spec §4.C
// find_merge).
func (a *Arena) FindMerge(label RegionIdx, threshold float64) (int, bool) {
	r := a.Get(label)
	best := -1
	bestDissim := math.Inf(1)
	seen := make(map[int]struct{})
	for _, pIdx := range r.pixelIdxs {
		col, row, slice := a.Dims.Coords(pIdx)
		for _, off := range a.Stencil {
			nc, nr_, ns := col+off.DCol, row+off.DRow, slice+off.DSlice
			if !a.Dims.InBounds(nc, nr_, ns) {
				continue
			}
			nIdx := a.Dims.Index(nc, nr_, ns)
			if _, dup := seen[nIdx]; dup {
				continue
			}
			npx := a.Pixels[nIdx]
			if !npx.Mask || npx.Region != NoRegion {
				continue
			}
			seen[nIdx] = struct{}{}
			d := a.pixelDissim(r, npx)
			if d < threshold && d < bestDissim {
				bestDissim = d
				best = nIdx
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// pixelDissim evaluates the configured dissimilarity between a growing
// region and a single candidate pixel, treating the pixel as a
// one-member region.
func (a *Arena) pixelDissim(r *Region, px pixel.Pixel) float64 {
	single := newSingleton(a.Bands, a.NeedSumSq, a.NeedSumXLogX, a.TrackStdDev, px.Features, px.StdDev, px.Edge, px.EdgeSet)
	merged := mergedStatsRaw(r.Stats, single)
	d := a.DissimFn(r.Stats, single, merged)
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

// AbsorbPixel grows label's region by one pixel: folds the pixel's
// statistics in, assigns its label, records membership, and registers
// its adjacency edges (spec §4.F "do_merge" applied to a single raw
// pixel rather than another region).
func (a *Arena) AbsorbPixel(label RegionIdx, pixelIdx int) {
	r := a.Get(label)
	px := &a.Pixels[pixelIdx]
	px.Region = label
	r.Stats.AddPixel(px.Features, px.StdDev, px.Edge, px.EdgeSet, false)
	r.pixelIdxs = append(r.pixelIdxs, pixelIdx)
	col, row, slice := a.Dims.Coords(pixelIdx)
	a.registerNeighborEdges(label, col, row, slice)
}
