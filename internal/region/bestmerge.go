package region

import (
	"math"

	"hseg/internal/dissim"
)

func mergedStats(x, y *Region) dissim.Stats {
	return dissim.Merge(x.Stats, y.Stats)
}

func mergedStatsRaw(x, y dissim.Stats) dissim.Stats {
	return dissim.Merge(x, y)
}

// newSingleton builds a one-pixel Stats, used to evaluate a candidate
// pixel against a growing region during FirstMerge without materializing
// a throwaway Region.
func newSingleton(bands int, needSumSq, needSumXLogX, trackStdDev bool,
	features, stdDev []float64, edge float64, edgeSet bool,
) dissim.Stats {
	s := dissim.NewStats(bands, needSumSq, needSumXLogX, trackStdDev)
	s.AddPixel(features, stdDev, edge, edgeSet, false)
	return s
}

// BestNghbrInit recomputes label's cached best spatial-neighbor merge
// pointer by scanning its neighbor-label set (spec §4.C). It resolves
// each neighbor through the merge chain before evaluating it, so it is
// safe to call even when Nghbrs still contains recently-absorbed labels
// (DoMerge repoints those entries, but a caller may batch updates).
func (a *Arena) BestNghbrInit(label RegionIdx) {
	r := a.Get(label)
	r.BestNghbr = NoRegion
	r.BestNghbrDissim = math.Inf(1)
	for n := range r.Nghbrs {
		rn := a.Resolve(n)
		if rn == label || rn == NoRegion {
			continue
		}
		d := a.Dissim(label, rn)
		if d < r.BestNghbrDissim || (d == r.BestNghbrDissim && rn < r.BestNghbr) {
			r.BestNghbrDissim = d
			r.BestNghbr = rn
		}
	}
}

// BestRegionInit recomputes label's cached best non-spatial merge
// pointer by scanning the supplied candidate set (typically every region
// currently resident in the region_heap). candidates need not exclude
// label itself; it is skipped.
func (a *Arena) BestRegionInit(label RegionIdx, candidates []RegionIdx) {
	r := a.Get(label)
	r.BestRegion = NoRegion
	r.BestRegionDissim = math.Inf(1)
	for _, c := range candidates {
		if c == label || c == NoRegion {
			continue
		}
		d := a.Dissim(label, c)
		if d < r.BestRegionDissim || (d == r.BestRegionDissim && c < r.BestRegion) {
			r.BestRegionDissim = d
			r.BestRegion = c
		}
	}
}

// Dissim returns the configured dissimilarity between two active
// regions, computed over their as-if-merged combination. NaN inputs
// (e.g. a zero-variance region under a criterion that divides by
// variance) surface as +Inf, per spec §7 "Numeric edge cases": such a
// region is simply never selected for merge.
func (a *Arena) Dissim(x, y RegionIdx) float64 {
	rx, ry := a.Get(x), a.Get(y)
	merged := mergedStats(rx, ry)
	d := a.DissimFn(rx.Stats, ry.Stats, merged)
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}
