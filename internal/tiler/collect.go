package tiler

import (
	"hseg/internal/merger"
	"hseg/internal/pixel"
	"hseg/internal/region"
	"hseg/internal/rheap"
	"hseg/internal/seamfix"
)

// collect implements spec §4.G steps 3-7: stitch every child's pixels
// and regions into the parent window, build the seam index, propagate
// cross-seam adjacency, run SeamFixer, and (under program_mode RHSEG)
// a bounded Merger pass, before compacting to a dense label range.
func (t *Tiler) collect(w Window, children []SectionResult, bnds boundaries) (SectionResult, error) {
	dims := w.dims()
	combined := make([]pixel.Pixel, dims.NPix())

	offsets := make([]region.RegionIdx, len(children))
	var running region.RegionIdx
	for i, c := range children {
		offsets[i] = running
		running += region.RegionIdx(c.Arena.NRegions())
	}

	for i, c := range children {
		childDims := c.Window.dims()
		colBase := c.Window.ColStart - w.ColStart
		rowBase := c.Window.RowStart - w.RowStart
		sliceBase := c.Window.SliceStart - w.SliceStart
		for li := range c.Pixels {
			lc, lr, ls := childDims.Coords(li)
			gi := dims.Index(colBase+lc, rowBase+lr, sliceBase+ls)
			px := c.Pixels[li]
			if px.Region != region.NoRegion {
				resolved := c.Arena.Resolve(px.Region)
				px.Region = offsets[i] + resolved
			}
			combined[gi] = px
		}
	}

	a := region.NewArena(combined, dims, t.Cfg.Bands, t.Cfg.Stencil, t.Cfg.DissimFn,
		t.Cfg.NeedSumSq, t.Cfg.NeedSumXLogX, t.Cfg.TrackStdDev, int(running)+16)

	for i, c := range children {
		for local := region.RegionIdx(1); local <= region.RegionIdx(c.Arena.NRegions()); local++ {
			cr := c.Arena.Get(local)
			if !cr.Active {
				continue
			}
			newLabel := offsets[i] + local
			r := a.NewRegion(newLabel)
			r.Stats = cr.Stats
			for n := range cr.Nghbrs {
				rn := c.Arena.Resolve(n)
				if !c.Arena.Get(rn).Active {
					continue
				}
				// rn always belongs to this same child arena: FirstMerge
				// and any per-level Merger pass only ever see pixels
				// inside their own window. Cross-child adjacency is
				// discovered fresh by propagateAdjacency below.
				r.Nghbrs[offsets[i]+rn] = struct{}{}
			}
		}
	}

	seamPixels, seamOnly := buildSeamIndex(a, dims, w, children, bnds, t.Cfg.SeamSize)
	propagateAdjacency(a, dims, t.Cfg.Stencil, seamPixels)
	seamfix.Run(a, seamPixels, t.Cfg.Stencil, t.Cfg.SeamFix, seamOnly)

	if t.Cfg.Recursive {
		t.runBoundedMerge(a)
	}

	order := a.SortByNpixDescending()
	a.Compact(order)

	return SectionResult{Window: w, Pixels: a.Pixels, Arena: a}, nil
}

// runBoundedMerge applies spec §4.G step 7's per-level Merger pass: run
// until the level's converge_nregions target is reached.
func (t *Tiler) runBoundedMerge(a *region.Arena) {
	active := a.ActiveLabels()
	for _, l := range active {
		a.BestNghbrInit(l)
	}
	nghbrHeap := rheap.NewNghbrHeap(a)
	nghbrHeap.Build(active)
	regionHeap := rheap.NewRegionHeap(a)

	// min_npixels starts at 1 (original_source lhseg.cc:106) — spclust_min
	// bounds region_heap's target size, not the initial pixel-count floor.
	st := &merger.State{NRegions: len(active), MaxThreshold: 0, MinNpixels: 1}
	m := merger.New(a, nghbrHeap, regionHeap, t.Cfg.MergerCfg)
	target := t.Cfg.LevelConvergeNregions
	stop := func(nregions int, maxThreshold float64) bool { return nregions <= target }
	m.Run(st, stop)
}
