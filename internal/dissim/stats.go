// Package dissim computes the pairwise merge cost between two regions'
// sufficient statistics under one of the ten configured criteria, plus the
// optional std-dev and edge-evidence modifiers spec'd for the merge loop.
//
// Every function here is pure: it is handed two regions' statistics (and,
// where needed, their as-if-merged combination) and returns a scalar. No
// pair-specific state is ever retained between calls.
package dissim

import "math"

// Stats holds the banded sufficient statistics a region accumulates.
// SumSq and SumXLogX are only populated when the active Criterion needs
// them (see NeedsSumSq / NeedsSumXLogX); a nil slice means
// "not tracked", not "all zero".
type Stats struct {
	Npix      int
	Sum       []float64 // per band
	SumSq     []float64 // per band, optional
	SumXLogX  []float64 // per band, optional
	SumStdDev []float64 // per band, sum of per-pixel std-dev; optional
	MaxStdDev []float64 // per band, max per-pixel std-dev observed; optional
	SumEdge   float64   // sum of per-pixel edge value over the region
	BoundaryN int       // boundary-pixel count
}

// NewStats allocates a zeroed Stats for bands bands, with SumSq/SumXLogX
// allocated only when needed and std-dev tracking allocated only when
// trackStdDev is set.
func NewStats(bands int, needSumSq, needSumXLogX, trackStdDev bool) Stats {
	s := Stats{Sum: make([]float64, bands)}
	if needSumSq {
		s.SumSq = make([]float64, bands)
	}
	if needSumXLogX {
		s.SumXLogX = make([]float64, bands)
	}
	if trackStdDev {
		s.SumStdDev = make([]float64, bands)
		s.MaxStdDev = make([]float64, bands)
	}
	return s
}

// AddPixel folds a single pixel's feature vector (and optional per-band
// std-dev / scalar edge value) into s.
func (s *Stats) AddPixel(features []float64, stdDev []float64, edge float64, edgeSet, boundary bool) {
	s.Npix++
	for b, v := range features {
		s.Sum[b] += v
		if s.SumSq != nil {
			s.SumSq[b] += v * v
		}
		if s.SumXLogX != nil {
			s.SumXLogX[b] += xlogx(v)
		}
	}
	if s.SumStdDev != nil && stdDev != nil {
		for b, v := range stdDev {
			s.SumStdDev[b] += v
			if v > s.MaxStdDev[b] {
				s.MaxStdDev[b] = v
			}
		}
	}
	if edgeSet {
		s.SumEdge += edge
	}
	if boundary {
		s.BoundaryN++
	}
}

// Merge returns the statistics of the union of a and b, as if they had
// always been a single region. Neither a nor b is mutated.
func Merge(a, b Stats) Stats {
	out := Stats{
		Npix:      a.Npix + b.Npix,
		Sum:       addSlices(a.Sum, b.Sum),
		SumEdge:   a.SumEdge + b.SumEdge,
		BoundaryN: a.BoundaryN + b.BoundaryN,
	}
	if a.SumSq != nil || b.SumSq != nil {
		out.SumSq = addSlices(a.SumSq, b.SumSq)
	}
	if a.SumXLogX != nil || b.SumXLogX != nil {
		out.SumXLogX = addSlices(a.SumXLogX, b.SumXLogX)
	}
	if a.SumStdDev != nil || b.SumStdDev != nil {
		out.SumStdDev = addSlices(a.SumStdDev, b.SumStdDev)
		out.MaxStdDev = maxSlices(a.MaxStdDev, b.MaxStdDev)
	}
	return out
}

// Mean returns the per-band mean feature value.
func (s Stats) Mean() []float64 {
	mean := make([]float64, len(s.Sum))
	if s.Npix == 0 {
		return mean
	}
	n := float64(s.Npix)
	for b, v := range s.Sum {
		mean[b] = v / n
	}
	return mean
}

// MaxStdDevAcrossBands returns the maximum per-band std-dev statistic,
// i.e. the scalar used by the std-dev weighting modifier. Returns 0 when
// std-dev tracking is disabled.
func (s Stats) MaxStdDevAcrossBands() float64 {
	var m float64
	for _, v := range s.MaxStdDev {
		if v > m {
			m = v
		}
	}
	return m
}

func addSlices(a, b []float64) []float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]float64, n)
	for i := range out {
		if i < len(a) {
			out[i] += a[i]
		}
		if i < len(b) {
			out[i] += b[i]
		}
	}
	return out
}

func maxSlices(a, b []float64) []float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]float64, n)
	for i := range out {
		var av, bv float64
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = math.Max(av, bv)
	}
	return out
}

// xlogx returns x*ln(x), with the conventional limit 0 at x==0. Negative x
// (not expected for radiometric data) also yields 0 rather than NaN, so a
// bad pixel degrades the entropy criterion instead of poisoning it.
func xlogx(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x * math.Log(x)
}
