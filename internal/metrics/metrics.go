// Package metrics registers counters and histograms for a hierarchy run
// (spec §1.6). Only the driver updates any of them (LevelsEmitted,
// LevelRegionCount, LevelDuration); the other registered collectors are
// not updated anywhere in the engine. It is pure
// observability: nothing here sits on the merge loop's control flow, and
// the engine runs identically with the collector unregistered.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MergesApplied counts region merges performed by the merge loop, per
	// merge kind (spectral clustering vs. nearest-neighbor region growing).
	MergesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hseg_merges_applied_total",
			Help: "Total number of region merges applied by the merge loop",
		},
		[]string{"kind"}, // kind: nearest_neighbor, spectral_clustering, seam
	)

	// LevelsEmitted counts hierarchy levels written to the output rasters.
	LevelsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hseg_levels_emitted_total",
			Help: "Total number of hierarchy levels emitted",
		},
	)

	// LevelRegionCount records the region count at each emitted level.
	LevelRegionCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hseg_level_region_count",
			Help:    "Number of active regions at each emitted level",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		},
	)

	// LevelDuration records wall-clock time spent merging down to each
	// emitted level.
	LevelDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hseg_level_duration_seconds",
			Help:    "Time spent merging down to each emitted level",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SeamMergesForced counts cross-tile seam merges forced by the seam
	// fixer after a recursive split (spec §4.G).
	SeamMergesForced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hseg_seam_merges_forced_total",
			Help: "Total number of cross-seam merges forced during seam elimination",
		},
	)

	// HeapRebuilds counts full region_heap membership rebuilds triggered by
	// min_npixels retuning (spec §4.D throttling policy).
	HeapRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hseg_heap_rebuilds_total",
			Help: "Total number of region_heap membership rebuilds triggered by min_npixels retuning",
		},
	)

	// MinNpixels tracks the current min_npixels throttle value.
	MinNpixels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hseg_min_npixels",
			Help: "Current min_npixels spectral-clustering throttle value",
		},
	)

	// TilesInFlight tracks the number of tiles currently being processed by
	// the recursive divide-and-conquer dispatcher.
	TilesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hseg_tiles_in_flight",
			Help: "Number of tiles currently dispatched for recursive processing",
		},
	)
)
