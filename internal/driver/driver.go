// Package driver implements the top-level `hseg` orchestrator (spec
// §4.J): load rasters, build the initial segmentation via Tiler /
// FirstMerge, iterate the Merger loop to each configured checkpoint,
// and write every emitted hierarchy level plus the output-parameter
// sidecar.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hseg/internal/config"
	"hseg/internal/dispatch"
	"hseg/internal/dissim"
	"hseg/internal/imageio"
	"hseg/internal/merger"
	"hseg/internal/metrics"
	"hseg/internal/outparams"
	"hseg/internal/pixel"
	"hseg/internal/progress"
	"hseg/internal/rheap"
	"hseg/internal/tiler"
)

// Level is one emitted point in the hierarchy (spec §4.J steps 5-7).
type Level struct {
	Threshold    float64
	NRegions     int
	ClassLabels  []uint32
	ObjectLabels []uint32 // nil unless RegionNbObjectsFlag/RegionObjectsListFlag enabled
	Boundary     []bool   // nil unless BoundaryMapFlag enabled
	Records      []outparams.ClassRecord
}

// Result is everything the Driver produced over one run.
type Result struct {
	Dims     pixel.Dims
	Levels   []Level
	Sidecar  outparams.Sidecar
}

// Driver runs the full spec §4.J pipeline once.
type Driver struct {
	cfg      *config.Config
	io       imageio.ImageIO
	progress progress.Callback
	noOutput bool // skip raster/sidecar writes (hseg validate's dry-run path)

	// Set by Run before the emission loop starts; emit/buildSidecar read
	// them rather than recomputing from cfg.
	dims         pixel.Dims
	stencil      []pixel.Offset
	bands        int
	needSumSq    bool
	needSumXLogX bool
	trackStdDev  bool
}

// Option configures a Driver beyond what *config.Config carries.
type Option func(*Driver)

// WithProgress attaches a progress.Callback. Defaults to progress.NoOp.
func WithProgress(cb progress.Callback) Option {
	return func(d *Driver) { d.progress = cb }
}

// WithDryRun skips every raster and sidecar write, segmenting only —
// the path `hseg validate` uses for CLI-level testability without
// touching the filesystem (spec §3.11, supplementing original_source's
// `-nooutput` style flag).
func WithDryRun() Option {
	return func(d *Driver) { d.noOutput = true }
}

// New constructs a Driver over cfg, which must already have passed
// Validate.
func New(cfg *config.Config, opts ...Option) *Driver {
	d := &Driver{cfg: cfg, io: cfg.ImageIOBackend(), progress: progress.NoOp{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes spec §4.J's nine numbered steps.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	loaded, err := d.io.Load(d.cfg.ToImageIORequest(), d.cfg.ToScaleOffset())
	if err != nil {
		return nil, fmt.Errorf("driver: load rasters: %w", err)
	}
	slog.Info("driver: loaded rasters", "cols", loaded.Dims.Cols, "rows", loaded.Dims.Rows, "bands", loaded.Bands)

	levels := recursionLevels(loaded.Dims, d.cfg.Recursion.RnbLevels, d.cfg.Recursion.MinRecursionSide)
	if d.cfg.Segmentation.ProgramMode != config.ProgramModeRHSEG {
		levels = 0
	}
	paddedDims := padDims(loaded.Dims, levels)
	pixels := padPixels(loaded.Pixels, loaded.Dims, paddedDims)

	criterion := dissim.Criterion(d.cfg.Segmentation.DissimCrit)
	dissimFn := dissim.ForCriterion(criterion, d.cfg.Segmentation.SARSpeckleNoise)
	if d.cfg.Segmentation.EdgeWght > 0 {
		maxEdge := maxEdgeValue(pixels)
		edgeOpt := dissim.EdgeEnhance
		if d.cfg.Segmentation.EdgeDissimOption == "suppress" {
			edgeOpt = dissim.EdgeSuppress
		}
		dissimFn = dissim.WithEdgeWeight(dissimFn, edgeOpt,
			d.cfg.Segmentation.EdgeWght, d.cfg.Segmentation.EdgePower, maxEdge, d.cfg.Segmentation.SpclustWght > 0)
	}

	stencil := pixel.Stencil(paddedDims, d.cfg.Segmentation.ConnType)
	needSumSq := dissim.NeedsSumSq(criterion)
	needSumXLogX := dissim.NeedsSumXLogX(criterion)
	trackStdDev := d.cfg.Output.RegionStdDevFlag || loaded.Pixels[0].StdDev != nil

	d.dims = paddedDims
	d.stencil = stencil
	d.bands = loaded.Bands
	d.needSumSq = needSumSq
	d.needSumXLogX = needSumXLogX
	d.trackStdDev = trackStdDev

	tl := tiler.New(tiler.Config{
		Bands:                 loaded.Bands,
		DissimFn:              dissimFn,
		Stencil:               stencil,
		NeedSumSq:             needSumSq,
		NeedSumXLogX:          needSumXLogX,
		TrackStdDev:           trackStdDev,
		MaxRecursionDepth:     levels,
		SeamSize:              1,
		FirstMerge:            d.cfg.ToFirstMergeConfig(),
		SeamFix:               d.cfg.ToSeamFixConfig(),
		Recursive:             d.cfg.Segmentation.ProgramMode == config.ProgramModeRHSEG,
		LevelConvergeNregions: d.cfg.Segmentation.MinNregions,
		MergerCfg:             d.cfg.ToMergerConfig(),
		Dispatcher:            d.dispatcher(),
	})

	root := tiler.Window{Cols: paddedDims.Cols, Rows: paddedDims.Rows, Slices: paddedDims.Slices}
	tileResult, err := tl.Recur(ctx, levels, 0, pixels, paddedDims, root)
	if err != nil {
		d.progress.OnError(0, err)
		return nil, fmt.Errorf("driver: initial segmentation: %w", err)
	}

	a := tileResult.Arena

	// Step 3: deterministic renumbering by distance from the per-band
	// minimum vector (spec §4.J step 3, §9 open question).
	order := a.SortByDistanceFromVector(loaded.BandMin)
	a.Compact(order)

	// Step 4: build nghbr_heap over every region; region_heap only when
	// spectral clustering is enabled.
	for _, l := range a.ActiveLabels() {
		a.BestNghbrInit(l)
	}
	nghbrHeap := rheap.NewNghbrHeap(a)
	nghbrHeap.Build(a.ActiveLabels())
	regionHeap := rheap.NewRegionHeap(a)

	// min_npixels starts at 1 (original_source lhseg.cc:106) — spclust_min
	// bounds region_heap's target size, not the initial pixel-count floor.
	st := &merger.State{NRegions: a.NRegions(), MaxThreshold: 0, MinNpixels: 1}
	m := merger.New(a, nghbrHeap, regionHeap, d.cfg.ToMergerConfig())

	plan := newCheckpointPlan(d.cfg)
	fieldFlags := d.cfg.ToFieldFlags()
	boundary := make([]bool, len(a.Pixels))
	boundaryLevel := make([]int, len(a.Pixels))

	d.progress.OnStart(estimateLevelCount(d.cfg))

	var result Result
	result.Dims = paddedDims

	levelIdx := 0
	for {
		lvl, err := d.emit(a, st, levelIdx, fieldFlags, boundary, boundaryLevel)
		if err != nil {
			d.progress.OnError(levelIdx, err)
			return nil, err
		}
		result.Levels = append(result.Levels, lvl)
		d.progress.OnLevel(levelIdx, lvl.NRegions, lvl.Threshold)
		metrics.LevelsEmitted.Inc()
		metrics.LevelRegionCount.Observe(float64(lvl.NRegions))

		if st.NRegions <= d.cfg.Segmentation.ConvNregions {
			break
		}
		start := time.Now()
		prevNRegions := st.NRegions
		m.Run(st, plan.stopFunc())
		metrics.LevelDuration.Observe(time.Since(start).Seconds())
		levelIdx++

		done := plan.advance(st.NRegions, st.MaxThreshold)
		if done || st.NRegions == prevNRegions {
			lvl, err := d.emit(a, st, levelIdx, fieldFlags, boundary, boundaryLevel)
			if err != nil {
				d.progress.OnError(levelIdx, err)
				return nil, err
			}
			result.Levels = append(result.Levels, lvl)
			d.progress.OnLevel(levelIdx, lvl.NRegions, lvl.Threshold)
			metrics.LevelsEmitted.Inc()
			metrics.LevelRegionCount.Observe(float64(lvl.NRegions))
			break
		}
	}

	if d.noOutput {
		result.Sidecar = d.buildSidecar(result.Levels, make([]int, len(result.Levels)), loaded)
	} else {
		sidecar, err := d.writeOutputs(result, loaded)
		if err != nil {
			d.progress.OnError(levelIdx, err)
			return nil, fmt.Errorf("driver: write outputs: %w", err)
		}
		result.Sidecar = sidecar
	}

	d.progress.OnComplete()
	return &result, nil
}

func (d *Driver) dispatcher() dispatch.Dispatcher {
	switch d.cfg.Dispatch.Kind {
	case "local":
		return dispatch.Local{}
	case "mpi":
		return dispatch.MPI{}
	default:
		return dispatch.WorkerPool{MaxWorkers: d.cfg.Recursion.MaxWorkers}
	}
}

func maxEdgeValue(pixels []pixel.Pixel) float64 {
	var max float64
	for _, px := range pixels {
		if px.EdgeSet && px.Edge > max {
			max = px.Edge
		}
	}
	return max
}

// estimateLevelCount gives progress.Callback.OnStart a rough total; it
// is advisory only (console progress display), never consulted by the
// merge loop itself.
func estimateLevelCount(cfg *config.Config) int {
	switch {
	case cfg.Checkpoint.HsegOutNregionsFlag:
		return len(cfg.Checkpoint.HsegOutNregions) + 1
	case cfg.Checkpoint.HsegOutThresholdsFlag:
		return len(cfg.Checkpoint.HsegOutThresholds) + 1
	case cfg.Checkpoint.ChkNregionsFlag:
		return 8
	default:
		return 2
	}
}

