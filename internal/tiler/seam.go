package tiler

import (
	"hseg/internal/pixel"
	"hseg/internal/region"
	"hseg/internal/seamfix"
)

// boundaries holds the global coordinate of every split plane introduced
// by one recurse() call, one slice per dimension (empty when that
// dimension was not split).
type boundaries struct {
	cols, rows, slices []int
}

func (b boundaries) empty() bool {
	return len(b.cols) == 0 && len(b.rows) == 0 && len(b.slices) == 0
}

// near reports whether coord lies within seamSize pixels of any entry in
// bs (spec §4.G step 4: "a band of seam_size pixels on each side of
// every split plane").
func near(coord int, bs []int, seamSize int) bool {
	for _, b := range bs {
		// A split plane sits between column b-1 and column b; the
		// seamSize columns on each side (b-seamSize..b+seamSize-1) qualify.
		if coord >= b-seamSize && coord < b+seamSize {
			return true
		}
	}
	return false
}

// sectionOwning returns the index of the child window whose bounds
// contain the global coordinates (gc, gr, gs), or -1 if none does (a
// defensive case that never triggers given how collect builds children,
// kept because a silent out-of-range write would otherwise corrupt an
// unrelated pixel).
func sectionOwning(children []SectionResult, gc, gr, gs int) int {
	for i, c := range children {
		w := c.Window
		if gc < w.ColStart || gc >= w.ColStart+w.Cols {
			continue
		}
		if gr < w.RowStart || gr >= w.RowStart+w.Rows {
			continue
		}
		if w.Slices > 0 && (gs < w.SliceStart || gs >= w.SliceStart+w.Slices) {
			continue
		}
		if w.Slices == 0 && gs != 0 {
			continue
		}
		return i
	}
	return -1
}

// buildSeamIndex scans the collected parent window for pixels lying
// within the seam band of any split plane introduced at this level,
// tagging each with the child section it came from (spec §4.G step 4).
// It also reports which regions exist solely within the seam band,
// candidates for absorption into their cross-seam counterpart (spec
// §4.H).
func buildSeamIndex(a *region.Arena, dims pixel.Dims, w Window, children []SectionResult, bnds boundaries, seamSize int) ([]seamfix.SeamPixel, map[region.RegionIdx]bool) {
	if bnds.empty() {
		return nil, nil
	}

	var seamPixels []seamfix.SeamPixel
	regionTotal := make(map[region.RegionIdx]int)
	regionSeamCount := make(map[region.RegionIdx]int)

	for gi := range a.Pixels {
		label := a.PixelRegion(gi)
		if label != region.NoRegion {
			regionTotal[label]++
		}
	}

	for gi := range a.Pixels {
		if !a.Pixels[gi].Mask {
			continue
		}
		lc, lr, ls := dims.Coords(gi)
		gc, gr, gs := w.ColStart+lc, w.RowStart+lr, w.SliceStart+ls
		if !near(gc, bnds.cols, seamSize) && !near(gr, bnds.rows, seamSize) && !near(gs, bnds.slices, seamSize) {
			continue
		}
		section := sectionOwning(children, gc, gr, gs)
		if section < 0 {
			continue
		}
		label := a.PixelRegion(gi)
		seamPixels = append(seamPixels, seamfix.SeamPixel{PixelIdx: gi, Label: label, Section: section})
		if label != region.NoRegion {
			regionSeamCount[label]++
		}
	}

	seamOnly := make(map[region.RegionIdx]bool, len(regionSeamCount))
	for label, count := range regionSeamCount {
		if count == regionTotal[label] {
			seamOnly[label] = true
		}
	}

	return seamPixels, seamOnly
}

// propagateAdjacency implements spec §4.G step 5: for every seam pixel,
// add the label of every matching-stencil neighbor on the other side of
// the seam to its region's neighbor set, symmetrically.
func propagateAdjacency(a *region.Arena, dims pixel.Dims, stencil []pixel.Offset, seamPixels []seamfix.SeamPixel) {
	bySection := make(map[int]struct{}, len(seamPixels))
	for _, sp := range seamPixels {
		bySection[sp.Section] = struct{}{}
	}
	byIdx := make(map[int]seamfix.SeamPixel, len(seamPixels))
	for _, sp := range seamPixels {
		byIdx[sp.PixelIdx] = sp
	}

	for _, sp := range seamPixels {
		col, row, slice := dims.Coords(sp.PixelIdx)
		for _, off := range stencil {
			nc, nr, ns := col+off.DCol, row+off.DRow, slice+off.DSlice
			if !dims.InBounds(nc, nr, ns) {
				continue
			}
			nIdx := dims.Index(nc, nr, ns)
			nsp, ok := byIdx[nIdx]
			if !ok || nsp.Section == sp.Section {
				continue
			}
			ra, rb := a.Resolve(sp.Label), a.Resolve(nsp.Label)
			if ra == region.NoRegion || rb == region.NoRegion || ra == rb {
				continue
			}
			a.Get(ra).Nghbrs[rb] = struct{}{}
			a.Get(rb).Nghbrs[ra] = struct{}{}
		}
	}
}
