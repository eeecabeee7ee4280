// Package merger implements the iterated best-merge loop (the legacy
// lhseg routine): repeatedly applying the cheapest available spatial
// (neighbor) merge or, once spectral clustering is warranted, the
// cheaper of that and the cheapest non-spatial merge, until a
// caller-supplied stopping condition fires.
package merger

import (
	"log/slog"
	"math"

	"hseg/internal/region"
	"hseg/internal/rheap"
)

// Config holds the merge-loop parameters of spec §4.D/§4.E that are
// fixed for the lifetime of a Merger (as opposed to the live nregions /
// max_threshold / min_npixels state threaded through Run's arguments).
type Config struct {
	// SpclustWght in (0,1] enables spectral clustering and scales a
	// spectral merge's dissimilarity before it is compared against the
	// cheapest neighbor merge. 0 disables spectral clustering entirely
	// (spec §8 invariant 8: no non-adjacent pair is ever merged).
	SpclustWght float64

	// SpclustMin/SpclustMax bound the region_heap's target size (spec
	// §4.D throttling policy).
	SpclustMin int
	SpclustMax int

	// MergeAccel mirrors merge_accel_flag: when set, a merge step marks
	// the surviving region's LargeNghbrMerged flag. No other step reads
	// that flag, so best_nghbr refreshes are the same with or without it.
	MergeAccel bool

	// HsegOutThresholdCap, when non-zero, caps the zero-threshold pass's
	// max_threshold the way hseg_out_thresholds[0] does in the legacy
	// code (spec §9 open question: preserve this capping even though a
	// literal reading of the surrounding comments would omit it).
	HsegOutThresholdCap float64
}

// State is the mutable segmentation state threaded through repeated Run
// calls (one call per emitted hierarchy level, per spec §4.J step 6).
type State struct {
	NRegions     int
	MaxThreshold float64
	MinNpixels   int
}

// StopFunc reports whether the merge loop should stop given the current
// region count and max_threshold — i.e. the negation of the legacy
// process_flag. Driver supplies this per checkpoint mode (spec §4.J
// step 6): by region count, by explicit threshold/region-count list, or
// "converge only".
type StopFunc func(nregions int, maxThreshold float64) bool

// Merger runs the region-growing / spectral-clustering merge loop over a
// shared region.Arena and its two heaps.
type Merger struct {
	Arena      *region.Arena
	NghbrHeap  *rheap.Heap
	RegionHeap *rheap.Heap
	Cfg        Config
}

// New constructs a Merger over an already-built arena and its two
// (possibly empty) heaps.
func New(a *region.Arena, nghbrHeap, regionHeap *rheap.Heap, cfg Config) *Merger {
	if cfg.SpclustMax == 0 {
		cfg.SpclustMax = 1 << 20
	}
	if cfg.SpclustMin == 0 {
		cfg.SpclustMin = 2
	}
	return &Merger{Arena: a, NghbrHeap: nghbrHeap, RegionHeap: regionHeap, Cfg: cfg}
}

// Run executes spec §4.E's four-stage algorithm until stop reports true
// (process_flag becomes false) or no further merges are possible. It
// mutates st in place.
func (m *Merger) Run(st *State, stop StopFunc) {
	slog.Debug("merger: starting run", "nregions", st.NRegions, "max_threshold", st.MaxThreshold)

	// Stage 1: fast homogeneous-neighbor pass, only at max_threshold==0.
	if st.MaxThreshold == 0 {
		m.zeroThresholdPass(st)
	}

	// Stage 2: neighbor-only loop while spectral clustering is not yet
	// warranted (region_heap_size < 2).
	processFlag := !stop(st.NRegions, st.MaxThreshold)
	if m.Cfg.SpclustWght > 0 {
		m.retuneMinNpixels(st)
	}
	processFlag = processFlag && m.RegionHeap.Len() < 2

	for processFlag {
		prevNRegions := st.NRegions
		m.mergeRegionsStep(st, false)

		processFlag = !stop(st.NRegions, st.MaxThreshold)
		if st.MaxThreshold >= math.MaxFloat32 || prevNRegions == st.NRegions {
			processFlag = false
		}
		if m.Cfg.SpclustWght > 0 {
			m.retuneMinNpixels(st)
			// Bug-fix form (spec §9 open question): AND with the
			// existing processFlag rather than overwriting it.
			processFlag = processFlag && m.RegionHeap.Len() < 2
		}
	}

	// Stage 3: re-evaluate throttling, rebuild region_heap.
	if m.Cfg.SpclustWght > 0 {
		m.rebuildRegionHeap(st)
	}

	// Stage 4: combined loop.
	processFlag = !stop(st.NRegions, st.MaxThreshold)
	for processFlag {
		prevNRegions := st.NRegions
		m.combinedStep(st)

		processFlag = !stop(st.NRegions, st.MaxThreshold)
		if st.MaxThreshold >= math.MaxFloat32 || prevNRegions == st.NRegions {
			processFlag = false
		}
		if m.Cfg.SpclustWght > 0 {
			m.retuneMinNpixels(st)
		}
	}

	slog.Debug("merger: run complete", "nregions", st.NRegions, "max_threshold", st.MaxThreshold)
}

// zeroThresholdPass applies every currently-available zero-dissimilarity
// neighbor merge, then raises max_threshold to the new cheapest merge
// (capped by HsegOutThresholdCap, spec §9).
func (m *Merger) zeroThresholdPass(st *State) {
	for {
		top, ok := m.NghbrHeap.Top()
		if !ok {
			break
		}
		if m.Arena.Get(top).BestNghbrDissim != 0 {
			break
		}
		m.mergeRegionsStep(st, true)
	}
	if top, ok := m.NghbrHeap.Top(); ok && m.Arena.Get(top).BestNghbr != region.NoRegion {
		st.MaxThreshold = m.Arena.Get(top).BestNghbrDissim
		if m.Cfg.HsegOutThresholdCap > 0 && st.MaxThreshold > m.Cfg.HsegOutThresholdCap {
			st.MaxThreshold = m.Cfg.HsegOutThresholdCap
		}
	}
}

// combinedStep applies the cheaper of the best neighbor merge and the
// best spectral merge (spectral dissim scaled by SpclustWght).
func (m *Merger) combinedStep(st *State) {
	nTop, nOK := m.NghbrHeap.Top()
	rTop, rOK := m.RegionHeap.Top()

	useSpectral := false
	if rOK && m.RegionHeap.Len() >= 2 {
		nDissim := math.Inf(1)
		if nOK {
			nDissim = m.Arena.Get(nTop).BestNghbrDissim
		}
		rDissim := m.Arena.Get(rTop).BestRegionDissim * m.Cfg.SpclustWght
		if rDissim < nDissim {
			useSpectral = true
		}
	}

	if useSpectral {
		m.applySpectralMerge(st, rTop)
	} else {
		m.mergeRegionsStep(st, false)
	}
}

func (m *Merger) retuneMinNpixels(st *State) {
	retune(m.Arena, m.NghbrHeap, m.RegionHeap, st, m.Cfg)
}

func (m *Merger) rebuildRegionHeap(st *State) {
	rebuildRegionHeapMembership(m.Arena, m.RegionHeap, st.MinNpixels)
}
