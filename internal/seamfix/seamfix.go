// Package seamfix implements the artifact-elimination pass the Tiler
// runs after collecting a parent section's children (spec §4.H): force
// merging the regions straddling a seam in increasing order of
// edge-weighted dissimilarity, wherever that dissimilarity stays below
// seam_edge_threshold, and folding away regions that exist solely to
// describe one side of a seam.
package seamfix

import (
	"hseg/internal/pixel"
	"hseg/internal/region"
	"hseg/internal/rheap"
)

// SeamPixel records one seam-band pixel (spec §4.G step 4: "its label,
// its pixel index, its originating child section, and a reserved slot
// for the boundary map").
type SeamPixel struct {
	PixelIdx int
	Label    region.RegionIdx
	Section  int
	Boundary bool
}

// Config holds SeamFixer's tunables (spec §4.H).
type Config struct {
	// SeamEdgeThreshold gates which cross-seam pixel pairs are eligible
	// for forced merging: only pairs whose edge-scaled dissimilarity
	// stays strictly below this value are candidates.
	SeamEdgeThreshold float64
}

// candidate is one cross-seam pixel pair with its precomputed
// edge-weighted dissimilarity, the unit seamfix's indexed heap orders.
type candidate struct {
	a, b   region.RegionIdx
	pa, pb int
	dissim float64
}

// Run force-merges seam-straddling regions in increasing
// edge-weighted-dissimilarity order, then returns the largest
// dissimilarity actually applied (spec: "max_threshold is raised to the
// largest dissimilarity actually applied"). seamRegions lists labels
// that exist solely to describe one side of the seam and are absorption
// candidates once their cross-seam counterpart is known.
func Run(a *region.Arena, seamPixels []SeamPixel, stencil []pixel.Offset, cfg Config, seamRegions map[region.RegionIdx]bool) float64 {
	candidates := findCandidates(a, seamPixels, stencil, cfg)
	if len(candidates) == 0 {
		return 0
	}

	keys := make(map[region.RegionIdx]float64, len(candidates))
	index := make(map[region.RegionIdx]*candidate, len(candidates))
	var labels []rheap.Label
	for i := range candidates {
		c := &candidates[i]
		keys[c.a] = c.dissim
		index[c.a] = c
		labels = append(labels, rheap.Label(c.a))
	}
	pos := make(map[region.RegionIdx]int, len(candidates))
	h := rheap.New(
		func(l rheap.Label) float64 { return keys[region.RegionIdx(l)] },
		func(l rheap.Label, p int) { pos[region.RegionIdx(l)] = p },
	)
	h.Build(labels)

	var maxApplied float64
	merged := make(map[region.RegionIdx]bool)
	for h.Len() > 0 {
		top, ok := h.Pop()
		if !ok {
			break
		}
		c := index[region.RegionIdx(top)]
		if c == nil {
			continue
		}
		ra, rb := a.Resolve(c.a), a.Resolve(c.b)
		if ra == rb || merged[ra] || merged[rb] {
			continue
		}
		survivor, loser := ra, rb
		if seamRegions[loser] && !seamRegions[survivor] {
			// Prefer absorbing a seam-only region into its real
			// cross-seam counterpart.
		} else if seamRegions[survivor] && !seamRegions[loser] {
			survivor, loser = loser, survivor
		} else if a.Get(rb).NPix() > a.Get(ra).NPix() {
			survivor, loser = rb, ra
		}
		a.DoMerge(survivor, loser)
		merged[loser] = true
		if c.dissim > maxApplied {
			maxApplied = c.dissim
		}
	}
	return maxApplied
}

// findCandidates scans seamPixels for cross-seam stencil-adjacent pairs
// belonging to different regions, keeping the single cheapest
// edge-weighted dissimilarity observed per region (spec §4.H: "force-merge
// the two regions they belong to, in order of increasing edge-weighted
// dissimilarity").
func findCandidates(a *region.Arena, seamPixels []SeamPixel, stencil []pixel.Offset, cfg Config) []candidate {
	byIdx := make(map[int]SeamPixel, len(seamPixels))
	for _, sp := range seamPixels {
		byIdx[sp.PixelIdx] = sp
	}

	best := make(map[region.RegionIdx]candidate)
	for _, sp := range seamPixels {
		col, row, slice := a.Dims.Coords(sp.PixelIdx)
		for _, off := range stencil {
			nc, nr, ns := col+off.DCol, row+off.DRow, slice+off.DSlice
			if !a.Dims.InBounds(nc, nr, ns) {
				continue
			}
			nIdx := a.Dims.Index(nc, nr, ns)
			nsp, ok := byIdx[nIdx]
			if !ok || nsp.Section == sp.Section {
				continue
			}
			ra, rb := a.Resolve(sp.Label), a.Resolve(nsp.Label)
			if ra == rb {
				continue
			}
			d := a.Dissim(ra, rb)
			if d >= cfg.SeamEdgeThreshold {
				continue
			}
			if cur, exists := best[ra]; !exists || d < cur.dissim {
				best[ra] = candidate{a: ra, b: rb, pa: sp.PixelIdx, pb: nIdx, dissim: d}
			}
		}
	}

	out := make([]candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	return out
}
