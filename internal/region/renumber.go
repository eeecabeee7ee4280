package region

import "sort"

// RelabelPair records a single label rename applied during compaction,
// satisfying the roundtrip testable property of spec §8 invariant 9:
// applying the emitted pairs to the pre-relabel map reproduces the
// post-relabel map.
type RelabelPair struct {
	OldLabel RegionIdx
	NewLabel RegionIdx
}

// activeLabels returns every currently-active region label in ascending
// order.
func (a *Arena) activeLabels() []RegionIdx {
	var active []RegionIdx
	for label := RegionIdx(1); label <= RegionIdx(len(a.Regions)); label++ {
		if a.Get(label).Active {
			active = append(active, label)
		}
	}
	return active
}

// ActiveLabels is the exported form of activeLabels, for callers outside
// the package (the Merger's throttling pass needs to scan every active
// region's pixel count when retuning min_npixels).
func (a *Arena) ActiveLabels() []RegionIdx {
	return a.activeLabels()
}

// Compact is destructive: it resolves every pixel's label through the
// current merge chain, discards inactive region slots, renumbers the
// surviving regions to a contiguous 1..N range in the order given (or
// ascending-by-current-label when order is nil), rewrites every pixel's
// stored label to match, and resets the union-find chain to the empty
// state. It is used once after initial segmentation (spec §4.J step 3)
// and between Tiler levels (spec §4.G steps 3 and 7) — points at which
// no output has yet been emitted for the labels being replaced, so
// mutating Pixels in place is safe.
func (a *Arena) Compact(order []RegionIdx) []RelabelPair {
	survivors := order
	if survivors == nil {
		survivors = a.activeLabels()
	}

	translate := make(map[RegionIdx]RegionIdx, len(survivors))
	newRegions := make([]Region, len(survivors))
	var pairs []RelabelPair

	for i, oldLabel := range survivors {
		newLabel := RegionIdx(i + 1)
		translate[oldLabel] = newLabel
		r := *a.Get(oldLabel)
		r.Label = newLabel
		r.BestNghbr = NoRegion
		r.BestNghbrDissim = 0
		r.BestRegion = NoRegion
		r.BestRegionDissim = 0
		r.NghbrHeapIdx = NoHeapIndex
		r.RegionHeapIdx = NoHeapIndex
		newRegions[i] = r
		if oldLabel != newLabel {
			pairs = append(pairs, RelabelPair{OldLabel: oldLabel, NewLabel: newLabel})
		}
	}

	for i := range newRegions {
		renumbered := make(map[RegionIdx]struct{}, len(newRegions[i].Nghbrs))
		for n := range newRegions[i].Nghbrs {
			if nn, ok := translate[n]; ok {
				renumbered[nn] = struct{}{}
			}
		}
		newRegions[i].Nghbrs = renumbered
	}

	for i := range a.Pixels {
		if a.Pixels[i].Region == NoRegion {
			continue
		}
		active := a.Resolve(a.Pixels[i].Region)
		if nn, ok := translate[active]; ok {
			a.Pixels[i].Region = nn
		} else {
			a.Pixels[i].Region = NoRegion
		}
	}

	a.Regions = newRegions
	a.mergeTarget = make([]RegionIdx, len(newRegions))

	return pairs
}

// SortByNpixDescending returns the active region labels ordered by pixel
// count, largest first, ties broken by ascending label — the order
// FirstMerge uses when sort_flag is set (spec §4.F), and a candidate
// ordering for Compact.
func (a *Arena) SortByNpixDescending() []RegionIdx {
	active := a.activeLabels()
	sort.Slice(active, func(i, j int) bool {
		ri, rj := a.Get(active[i]), a.Get(active[j])
		if ri.NPix() != rj.NPix() {
			return ri.NPix() > rj.NPix()
		}
		return active[i] < active[j]
	})
	return active
}

// SortByDistanceFromVector returns the active region labels ordered by
// ascending Euclidean distance of their mean feature vector from ref —
// the deterministic final-renumbering tie-break of spec §9 ("sort by
// distance from minimum vector... reproduce exactly for bit-identical
// outputs"), ties broken by ascending label.
func (a *Arena) SortByDistanceFromVector(ref []float64) []RegionIdx {
	active := a.activeLabels()
	dist := make(map[RegionIdx]float64, len(active))
	for _, label := range active {
		mean := a.Get(label).Stats.Mean()
		var sum float64
		for b, v := range mean {
			var rv float64
			if b < len(ref) {
				rv = ref[b]
			}
			d := v - rv
			sum += d * d
		}
		dist[label] = sum
	}
	sort.Slice(active, func(i, j int) bool {
		if dist[active[i]] != dist[active[j]] {
			return dist[active[i]] < dist[active[j]]
		}
		return active[i] < active[j]
	})
	return active
}

// SnapshotLabelMap returns a per-pixel region-class label for the
// current state of the arena, compacted to a contiguous 1..N range for
// this snapshot only (ascending by current resolved label), without
// mutating the arena or the pixel array. This is what the Driver calls
// at every emitted hierarchy level (spec §4.J step 5/7): segmentation
// continues to evolve afterward, so the live merge chain must survive
// the emission.
func (a *Arena) SnapshotLabelMap() ([]RegionIdx, int) {
	resolved := make([]RegionIdx, len(a.Pixels))
	translate := make(map[RegionIdx]RegionIdx)
	next := RegionIdx(1)

	// Assign snapshot labels in resolved-label order so that two
	// snapshots of an unchanged arena are identical, and so that a
	// snapshot's labels are always a subset compaction of the arena's
	// real (sparse, possibly-merged-away) label space.
	activeOrder := a.activeLabels()
	for _, label := range activeOrder {
		translate[label] = next
		next++
	}

	for i := range a.Pixels {
		if a.Pixels[i].Region == NoRegion {
			resolved[i] = NoRegion
			continue
		}
		active := a.Resolve(a.Pixels[i].Region)
		resolved[i] = translate[active]
	}
	return resolved, len(activeOrder)
}
