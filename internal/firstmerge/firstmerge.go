// Package firstmerge implements the cheap region-growing initializer
// (spec §4.F) that coalesces trivially-similar neighboring pixels before
// the expensive dual-heap Merger loop ever runs. It is grounded on
// original_source's shuffle-and-grow walk (first_merge_reg_grow.cc):
// shuffle the non-masked pixel index list, then walk it assigning fresh
// region labels and growing each by repeated find_merge/do_merge while a
// neighbor stays under init_threshold.
package firstmerge

import (
	"math/rand/v2"
	"time"

	"hseg/internal/region"
)

// Config holds FirstMerge's tunables (spec §4.F).
type Config struct {
	// InitThreshold is the growth ceiling: a candidate neighbor pixel is
	// absorbed only while its dissimilarity to the growing region stays
	// strictly below this value. Zero disables growth entirely — every
	// pixel becomes its own singleton region and no shuffle is needed.
	InitThreshold float64

	// RandomInitSeed selects the wall-clock seed path (random_init_seed_flag)
	// instead of the fixed, reproducible seed 1234.
	RandomInitSeed bool

	// SortByNpix enables sort_flag: regions are renumbered in descending
	// npix order after growth (the spec's default is true).
	SortByNpix bool
}

// Run executes FirstMerge over every non-masked pixel in a, returning
// the number of regions produced. a must already be empty of regions
// (a fresh Arena, or one reset since the last run).
func Run(a *region.Arena, cfg Config) int {
	order := nonMaskedPixelIndices(a)

	if cfg.InitThreshold > 0 {
		shuffle(order, cfg.RandomInitSeed)
	}

	nextLabel := region.RegionIdx(1)
	for _, pIdx := range order {
		px := &a.Pixels[pIdx]
		if px.InitFlag {
			continue
		}
		var label region.RegionIdx
		if px.Region == region.NoRegion {
			label = nextLabel
			nextLabel++
			col, row, slice := a.Dims.Coords(pIdx)
			a.SeedRegion(label, col, row, slice)
		} else {
			label = a.Resolve(px.Region)
		}
		px.InitFlag = true
		growRegion(a, label, cfg.InitThreshold)
	}

	var survivors []region.RegionIdx
	if cfg.SortByNpix {
		survivors = a.SortByNpixDescending()
	} else {
		survivors = a.ActiveLabels()
	}
	a.Compact(survivors)

	return len(survivors)
}

// growRegion repeatedly absorbs the cheapest unassigned neighbor pixel
// while it stays under threshold, re-scanning adjacency after each
// absorption so newly-adjacent regions are discovered (spec §4.F /
// §4.C find_merge, do_merge).
func growRegion(a *region.Arena, label region.RegionIdx, threshold float64) {
	if threshold <= 0 {
		return
	}
	for {
		pIdx, ok := a.FindMerge(label, threshold)
		if !ok {
			break
		}
		a.Pixels[pIdx].InitFlag = true
		a.AbsorbPixel(label, pIdx)
	}
}

func nonMaskedPixelIndices(a *region.Arena) []int {
	var order []int
	for i := range a.Pixels {
		if a.Pixels[i].Mask {
			order = append(order, i)
		}
	}
	return order
}

// shuffle performs a Fisher-Yates shuffle using math/rand/v2's PCG
// source. A fixed seed (1234, extended to the 128-bit PCG seed
// deterministically) reproduces the same order run after run, matching
// spec §8 invariant 7's determinism requirement, without depending on
// the legacy C srand/rand sequence — byte-identical-to-the-legacy-binary
// output was never a goal, byte-identical-across-runs-of-this-engine is.
func shuffle(order []int, useWallClock bool) {
	var seed1, seed2 uint64
	if useWallClock {
		now := uint64(time.Now().UnixNano())
		seed1, seed2 = now, now^0x9e3779b97f4a7c15
	} else {
		seed1, seed2 = 1234, 1234
	}
	r := rand.New(rand.NewPCG(seed1, seed2))
	r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
}
