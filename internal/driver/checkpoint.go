package driver

import (
	"hseg/internal/config"
	"hseg/internal/merger"
)

// checkpointPlan decides when the Driver should ask the Merger to pause
// and emit a hierarchy level, implementing the three mutually exclusive
// modes of spec §4.J step 6.
type checkpointPlan interface {
	// stopFunc returns the StopFunc for the next Merger.Run call.
	stopFunc() merger.StopFunc
	// advance is called after a Run call reaches its checkpoint,
	// reporting the state reached, and returns whether the plan has
	// nothing further to emit.
	advance(nregions int, maxThreshold float64) (done bool)
}

// newCheckpointPlan selects a plan from the three mutually exclusive
// checkpoint configuration modes (validated at config load time by
// config.Config.Validate, so at most one of these flags is set here).
func newCheckpointPlan(cfg *config.Config) checkpointPlan {
	switch {
	case cfg.Checkpoint.ChkNregionsFlag:
		return &countPlan{target: cfg.Checkpoint.ChkNregions, floor: cfg.Segmentation.ConvNregions}
	case cfg.Checkpoint.HsegOutNregionsFlag:
		return &listPlan{nregionsTargets: cfg.Checkpoint.HsegOutNregions}
	case cfg.Checkpoint.HsegOutThresholdsFlag:
		return &listPlan{thresholdTargets: cfg.Checkpoint.HsegOutThresholds}
	default:
		return &convergeOnlyPlan{target: cfg.Segmentation.ConvNregions}
	}
}

// countPlan implements "by count": merge until nregions <= target, emit,
// halve target, repeat, until target would fall below floor.
type countPlan struct {
	target int
	floor  int
	done   bool
}

func (p *countPlan) stopFunc() merger.StopFunc {
	target := p.target
	return func(nregions int, _ float64) bool { return nregions <= target }
}

func (p *countPlan) advance(nregions int, _ float64) bool {
	if p.done || nregions <= p.floor {
		p.done = true
		return true
	}
	p.target /= 2
	if p.target < p.floor {
		p.target = p.floor
	}
	return false
}

// listPlan implements "by explicit list": emit once nregions drops to (or
// below) the next entry in nregionsTargets, or once maxThreshold climbs
// to (or above) the next entry in thresholdTargets — whichever list was
// configured (spec: "hseg_out_nregions_flag or hseg_out_thresholds_flag").
type listPlan struct {
	nregionsTargets []int
	thresholdTargets []float64
	idx             int
}

func (p *listPlan) stopFunc() merger.StopFunc {
	idx := p.idx
	return func(nregions int, maxThreshold float64) bool {
		if idx < len(p.nregionsTargets) {
			return nregions <= p.nregionsTargets[idx]
		}
		if idx < len(p.thresholdTargets) {
			return maxThreshold >= p.thresholdTargets[idx]
		}
		return true
	}
}

func (p *listPlan) advance(int, float64) bool {
	p.idx++
	return p.idx >= len(p.nregionsTargets) && p.idx >= len(p.thresholdTargets)
}

// convergeOnlyPlan implements "to convergence only": a single emission
// once nregions reaches target.
type convergeOnlyPlan struct {
	target int
}

func (p *convergeOnlyPlan) stopFunc() merger.StopFunc {
	target := p.target
	return func(nregions int, _ float64) bool { return nregions <= target }
}

func (p *convergeOnlyPlan) advance(int, float64) bool { return true }
