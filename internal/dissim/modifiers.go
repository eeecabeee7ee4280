package dissim

import "math"

// WithStdDevWeight wraps base so that the resulting dissimilarity is
// scaled up by the standard deviation of the combined (merged) region:
// dissim *= (1 + w * maxStdDev(merged)), per spec §4.B.
func WithStdDevWeight(base Func, w float64) Func {
	if w == 0 {
		return base
	}
	return func(a, b, merged Stats) float64 {
		d := base(a, b, merged)
		if math.IsInf(d, 1) {
			return d
		}
		return d * (1 + w*merged.MaxStdDevAcrossBands())
	}
}

// EdgeOption selects how edge evidence modifies dissimilarity at merge
// time: Enhance makes a strong edge between regions more expensive to
// merge across (pushing merges on weak edges to happen first); Suppress
// scales dissimilarity by (1 + e·f^p), so it too raises the cost across
// an edge, by at most a factor of 1+e. Neither option lowers it.
type EdgeOption int

const (
	EdgeNone EdgeOption = iota
	EdgeEnhance
	EdgeSuppress
)

// EdgeFeature scales the combined region's edge evidence (its sum of
// per-pixel edge value over its boundary pixel count, i.e. the mean edge
// strength at the boundary) into [0, 1]. maxEdge is the largest edge value
// observed anywhere in the image, supplied by the caller.
func EdgeFeature(merged Stats, maxEdge float64) float64 {
	if merged.BoundaryN == 0 || maxEdge <= 0 {
		return 0
	}
	f := (merged.SumEdge / float64(merged.BoundaryN)) / maxEdge
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// WithEdgeWeight wraps base with the edge enhancement/suppression modifier
// of spec §4.B: weight e in [0,1), power p, feature f in [0,1] computed by
// EdgeFeature. Suppress is invalid when spectral clustering is disabled
// (spclustEnabled == false); callers must not construct a Suppress
// modifier in that configuration (spec §4.B), so this constructor panics
// on that misuse rather than silently ignoring it.
func WithEdgeWeight(base Func, opt EdgeOption, e, p, maxEdge float64, spclustEnabled bool) Func {
	if opt == EdgeNone || e <= 0 {
		return base
	}
	if opt == EdgeSuppress && !spclustEnabled {
		panic("dissim: edge suppression requires spectral clustering to be enabled")
	}
	return func(a, b, merged Stats) float64 {
		d := base(a, b, merged)
		if math.IsInf(d, 1) {
			return d
		}
		f := math.Pow(EdgeFeature(merged, maxEdge), p)
		switch opt {
		case EdgeEnhance:
			return d / (1 - (1-e)*f)
		case EdgeSuppress:
			return d * (1 + e*f)
		default:
			return d
		}
	}
}
