package merger

import (
	"math"

	"hseg/internal/region"
	"hseg/internal/rheap"
)

// chooseSurvivor applies the merge-order convention of spec §4.E: the
// region with the larger pixel count survives; ties go to the smaller
// label.
func chooseSurvivor(a *region.Arena, x, y region.RegionIdx) (survivor, loser region.RegionIdx) {
	rx, ry := a.Get(x), a.Get(y)
	if rx.NPix() > ry.NPix() {
		return x, y
	}
	if ry.NPix() > rx.NPix() {
		return y, x
	}
	if x < y {
		return x, y
	}
	return y, x
}

// mergeRegionsStep applies the single cheapest spatial-neighbor merge
// currently at the top of nghbr_heap (spec §4.E "merge_regions").
// zeroOnly is purely informational bookkeeping for callers that only
// invoke this while the top-of-heap dissim is known to be zero; the
// step itself always merges whatever is on top.
func (m *Merger) mergeRegionsStep(st *State, zeroOnly bool) {
	_ = zeroOnly
	top, ok := m.NghbrHeap.Top()
	if !ok {
		st.MaxThreshold = math.MaxFloat32
		return
	}
	a := m.Arena
	rTop := a.Get(top)
	other := rTop.BestNghbr
	if other == region.NoRegion {
		st.MaxThreshold = math.MaxFloat32
		return
	}
	applied := rTop.BestNghbrDissim

	survivor, loser := chooseSurvivor(a, top, other)
	accel := m.Cfg.MergeAccel && (a.Get(top).NPix() < st.MinNpixels || a.Get(other).NPix() < st.MinNpixels)

	m.removeFromHeaps(top)
	m.removeFromHeaps(other)

	a.DoMerge(survivor, loser)
	st.NRegions--
	if applied > st.MaxThreshold {
		st.MaxThreshold = applied
	}
	if accel {
		a.Get(survivor).LargeNghbrMerged = true
	}

	m.refreshAndReinsert(st, survivor)
}

// applySpectralMerge applies the non-spatial merge whose survivor is the
// region currently at the top of region_heap.
func (m *Merger) applySpectralMerge(st *State, top region.RegionIdx) {
	a := m.Arena
	rTop := a.Get(top)
	other := rTop.BestRegion
	if other == region.NoRegion {
		return
	}
	applied := rTop.BestRegionDissim

	survivor, loser := chooseSurvivor(a, top, other)
	accel := m.Cfg.MergeAccel && (a.Get(top).NPix() < st.MinNpixels || a.Get(other).NPix() < st.MinNpixels)

	m.removeFromHeaps(top)
	m.removeFromHeaps(other)

	a.DoMerge(survivor, loser)
	st.NRegions--
	if applied > st.MaxThreshold {
		st.MaxThreshold = applied
	}
	if accel {
		a.Get(survivor).LargeNghbrMerged = true
	}

	m.refreshAndReinsert(st, survivor)
}

// removeFromHeaps evicts label from both heaps, wherever it currently
// sits (a no-op for a heap it is not in).
func (m *Merger) removeFromHeaps(label region.RegionIdx) {
	r := m.Arena.Get(label)
	if r.NghbrHeapIdx != region.NoHeapIndex {
		m.NghbrHeap.RemoveAt(r.NghbrHeapIdx)
	}
	if r.RegionHeapIdx != region.NoHeapIndex {
		m.RegionHeap.RemoveAt(r.RegionHeapIdx)
	}
}

// refreshAndReinsert recomputes survivor's own best-merge pointers plus
// every other region whose cached pointer referenced survivor or the
// label it just absorbed, then reinserts survivor into whichever heaps
// it now belongs in (spec §4.E: "For every region C that had B in its
// neighbor set: ... recompute C.best_nghbr if it was B").
func (m *Merger) refreshAndReinsert(st *State, survivor region.RegionIdx) {
	a := m.Arena
	sr := a.Get(survivor)

	a.BestNghbrInit(survivor)
	for c := range sr.Nghbrs {
		cr := a.Get(c)
		if cr.BestNghbr == survivor || cr.NghbrHeapIdx == region.NoHeapIndex {
			a.BestNghbrInit(c)
		}
		if cr.NghbrHeapIdx != region.NoHeapIndex {
			m.NghbrHeap.Fix(cr.NghbrHeapIdx)
		}
	}
	m.NghbrHeap.Push(survivor)

	if m.Cfg.SpclustWght <= 0 {
		return
	}

	candidates := append([]rheap.Label(nil), m.RegionHeap.Items()...)
	for _, c := range candidates {
		cr := a.Get(c)
		if cr.BestRegion == survivor {
			a.BestRegionInit(c, candidates)
			m.RegionHeap.Fix(cr.RegionHeapIdx)
		}
	}
	if sr.NPix() >= st.MinNpixels {
		a.BestRegionInit(survivor, candidates)
		m.RegionHeap.Push(survivor)
	}
}
