// Package tiler implements the recursive image-splitting driver (the
// legacy lrhseg routine, spec §4.G): split a processing window into
// balanced children, recurse into each (serially or through a
// dispatch.Dispatcher), collect their regions into the parent window,
// stitch seams across the split planes, and — under program_mode RHSEG
// — run a bounded Merger pass before returning to the grandparent.
package tiler

import (
	"context"
	"fmt"

	"hseg/internal/dispatch"
	"hseg/internal/dissim"
	"hseg/internal/firstmerge"
	"hseg/internal/merger"
	"hseg/internal/pixel"
	"hseg/internal/region"
	"hseg/internal/seamfix"
	"hseg/internal/tilestore"
)

// Window is a rectangular (2-D) or box (3-D) sub-region of the full
// image, addressed in global column/row/slice coordinates (spec §4.G:
// "a processing window in column/row(/slice)").
type Window struct {
	ColStart, RowStart, SliceStart int
	Cols, Rows, Slices             int // Slices == 0 selects 2-D addressing
}

func (w Window) dims() pixel.Dims {
	return pixel.Dims{Cols: w.Cols, Rows: w.Rows, Slices: w.Slices}
}

// splittable reports whether any dimension of w is still wide enough to
// halve, independent of the configured recursion depth — a 1-pixel-wide
// strip is always a leaf regardless of how many recursion levels remain.
func (w Window) splittable() bool {
	return w.Cols > 1 || w.Rows > 1 || w.Slices > 1
}

// Config holds the Tiler's parameters for the lifetime of one Driver run.
type Config struct {
	Bands                                int
	DissimFn                             dissim.Func
	Stencil                              []pixel.Offset
	NeedSumSq, NeedSumXLogX, TrackStdDev bool

	// MaxRecursionDepth is the level at the root; Recur counts down to 0
	// at a leaf.
	MaxRecursionDepth int

	// SeamSize is the half-width (in pixels) of the seam band collected
	// on each side of a split plane (spec §4.G step 4).
	SeamSize int

	// RecurMaskFlags, if non-nil, fixes which dimensions split at each
	// recursion level (spec §4.G step 1). A nil or out-of-range entry
	// falls back to auto-splitting the window's single largest
	// dimension, which always keeps the two children balanced.
	RecurMaskFlags []SplitMask

	FirstMerge firstmerge.Config
	SeamFix    seamfix.Config

	// Recursive selects program_mode RHSEG's per-level bounded Merger
	// pass after collecting a non-leaf level (spec §4.G step 7).
	Recursive             bool
	LevelConvergeNregions int
	MergerCfg             merger.Config

	Dispatcher dispatch.Dispatcher

	// Store, if non-nil, routes leaf pixel buffers through it (serial
	// mode's TileStore spill, spec §5). Nil keeps every leaf's pixels
	// in memory (parallel mode).
	Store *tilestore.Store
}

// SplitMask selects which dimensions a given recursion level halves.
type SplitMask struct {
	Cols, Rows, Slices bool
}

// SectionResult is what one Recur call hands back to its caller: the
// window's pixels, with region labels renumbered into a dense 1..N range
// local to this call, and the Arena built to hold them (spec §4.G steps
// 3/6/7: "assign fresh contiguous labels").
type SectionResult struct {
	Window Window
	Pixels []pixel.Pixel
	Arena  *region.Arena
}

// Tiler recurses a full image into windows and stitches the results
// back together.
type Tiler struct {
	Cfg Config
}

// New constructs a Tiler over cfg.
func New(cfg Config) *Tiler { return &Tiler{Cfg: cfg} }

// Recur implements spec §4.G. level counts down from Cfg.MaxRecursionDepth
// at the root to 0 at a leaf; section identifies this window among its
// siblings (used as the TileStore section key and the seam index's
// originating-child id). globalPixels/globalDims describe the full
// image; w is this call's window into it.
func (t *Tiler) Recur(ctx context.Context, level, section int, globalPixels []pixel.Pixel, globalDims pixel.Dims, w Window) (SectionResult, error) {
	if err := ctx.Err(); err != nil {
		return SectionResult{}, err
	}
	if level <= 0 || !w.splittable() {
		return t.leaf(level, section, globalPixels, globalDims, w)
	}
	return t.recurse(ctx, level, section, globalPixels, globalDims, w)
}

// leaf implements spec §4.G's leaf-level contract: restore Pixel[] from
// the tile store (serial) or keep in memory (parallel), run FirstMerge,
// return to the parent.
func (t *Tiler) leaf(level, section int, globalPixels []pixel.Pixel, globalDims pixel.Dims, w Window) (SectionResult, error) {
	local := extractWindow(globalPixels, globalDims, w)

	if t.Cfg.Store != nil {
		key := tilestore.Key{Level: level, Section: section}
		if err := t.Cfg.Store.Put(key, local, w.dims()); err != nil {
			return SectionResult{}, fmt.Errorf("tiler: spill leaf L%d/S%d: %w", level, section, err)
		}
		restored, _, release, err := t.Cfg.Store.Acquire(key)
		if err != nil {
			return SectionResult{}, fmt.Errorf("tiler: restore leaf L%d/S%d: %w", level, section, err)
		}
		local = restored
		defer func() { _ = release() }()
	}

	a := region.NewArena(local, w.dims(), t.Cfg.Bands, t.Cfg.Stencil, t.Cfg.DissimFn,
		t.Cfg.NeedSumSq, t.Cfg.NeedSumXLogX, t.Cfg.TrackStdDev, len(local)/4+16)
	firstmerge.Run(a, t.Cfg.FirstMerge)

	return SectionResult{Window: w, Pixels: a.Pixels, Arena: a}, nil
}

// recurse implements spec §4.G steps 1-3 and 6-7 around the dispatcher
// boundary: split, recurse (through Cfg.Dispatcher), collect.
func (t *Tiler) recurse(ctx context.Context, level, section int, globalPixels []pixel.Pixel, globalDims pixel.Dims, w Window) (SectionResult, error) {
	mask := t.maskFor(level, w)
	children, colBounds, rowBounds, sliceBounds := split(w, mask)

	work := func(ctx context.Context, childIdx int) (any, error) {
		return t.Recur(ctx, level-1, childIdx, globalPixels, globalDims, children[childIdx])
	}
	raw, err := t.Cfg.Dispatcher.Run(ctx, len(children), work)
	if err != nil {
		return SectionResult{}, fmt.Errorf("tiler: recurse level %d section %d: %w", level, section, err)
	}

	results := make([]SectionResult, len(raw))
	for i, r := range raw {
		sr, ok := r.(SectionResult)
		if !ok {
			return SectionResult{}, fmt.Errorf("tiler: recurse level %d section %d: child %d returned %T", level, section, i, r)
		}
		results[i] = sr
	}

	return t.collect(w, results, boundaries{cols: colBounds, rows: rowBounds, slices: sliceBounds})
}

func (t *Tiler) maskFor(level int, w Window) SplitMask {
	if level >= 0 && level < len(t.Cfg.RecurMaskFlags) {
		m := t.Cfg.RecurMaskFlags[level]
		if m.Cols || m.Rows || m.Slices {
			return m
		}
	}
	return autoMask(w)
}

// autoMask splits only the single largest dimension, which always keeps
// a window's two children as balanced as a binary split can make them
// (spec §4.G step 1: "chosen to keep child dimensions balanced").
func autoMask(w Window) SplitMask {
	largest := w.Cols
	mask := SplitMask{Cols: true}
	if w.Rows > largest {
		largest = w.Rows
		mask = SplitMask{Rows: true}
	}
	if w.Slices > largest {
		mask = SplitMask{Slices: true}
	}
	return mask
}

func extractWindow(globalPixels []pixel.Pixel, globalDims pixel.Dims, w Window) []pixel.Pixel {
	dims := w.dims()
	out := make([]pixel.Pixel, dims.NPix())
	for idx := range out {
		lc, lr, ls := dims.Coords(idx)
		gi := globalDims.Index(w.ColStart+lc, w.RowStart+lr, w.SliceStart+ls)
		out[idx] = globalPixels[gi]
	}
	return out
}
