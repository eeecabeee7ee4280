package region

import "hseg/internal/dissim"

// DoMerge absorbs loser into survivor: combines sufficient statistics,
// unions neighbor-label sets (symmetrically repointing every region that
// bordered loser to border survivor instead), and deactivates loser by
// recording it in the union-find merge chain. Pixel labels are not
// touched — any pixel still bearing loser's original FirstMerge label
// resolves to survivor on its next PixelRegion lookup (spec §4.E,
// "lazily via a relabel-pairs map").
//
// DoMerge panics if survivor == loser or if either region is not active;
// those are programmer errors in the caller (Merger/SeamFixer), never a
// data-dependent condition.
func (a *Arena) DoMerge(survivor, loser RegionIdx) {
	if survivor == loser {
		panic("region: cannot merge a region into itself")
	}
	s := a.Get(survivor)
	l := a.Get(loser)
	if !s.Active || !l.Active {
		panic("region: DoMerge called on an inactive region")
	}

	s.Stats = dissim.Merge(s.Stats, l.Stats)

	delete(s.Nghbrs, loser)
	delete(l.Nghbrs, survivor)
	for n := range l.Nghbrs {
		if n == survivor {
			continue
		}
		s.Nghbrs[n] = struct{}{}
		nr := a.Get(n)
		delete(nr.Nghbrs, loser)
		nr.Nghbrs[survivor] = struct{}{}
		if nr.BestNghbr == loser {
			nr.BestNghbr = survivor
		}
	}

	l.Active = false
	l.Nghbrs = nil
	a.mergeTarget[loser-1] = survivor
}
