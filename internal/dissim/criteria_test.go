package dissim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformStats(value float64, npix int, bands int) Stats {
	s := NewStats(bands, true, true, false)
	features := make([]float64, bands)
	for b := range features {
		features[b] = value
	}
	for i := 0; i < npix; i++ {
		s.AddPixel(features, nil, 0, false, false)
	}
	return s
}

func TestMSEZeroWithinSameValue(t *testing.T) {
	a := uniformStats(10, 4, 1)
	b := uniformStats(10, 4, 1)
	merged := Merge(a, b)
	require.Equal(t, 8, merged.Npix)
	assert.Equal(t, 0.0, mse(a, b, merged))
}

func TestMSEPositiveAcrossDifferentMeans(t *testing.T) {
	a := uniformStats(10, 8, 1)
	b := uniformStats(20, 8, 1)
	merged := Merge(a, b)
	d := mse(a, b, merged)
	assert.Greater(t, d, 0.0)
}

func TestOneNormTwoNormInfNormAgreeOnSingleBand(t *testing.T) {
	a := uniformStats(10, 4, 1)
	b := uniformStats(13, 4, 1)
	merged := Merge(a, b)
	assert.InDelta(t, 3.0, oneNorm(a, b, merged), 1e-9)
	assert.InDelta(t, 3.0, twoNorm(a, b, merged), 1e-9)
	assert.InDelta(t, 3.0, infNorm(a, b, merged), 1e-9)
}

func TestSpectralAngleIdenticalVectorsIsZero(t *testing.T) {
	a := uniformStats(5, 4, 3)
	b := uniformStats(5, 4, 3)
	merged := Merge(a, b)
	assert.InDelta(t, 0.0, spectralAngle(a, b, merged), 1e-9)
}

func TestStdDevWeightIncreasesCost(t *testing.T) {
	a := uniformStats(10, 4, 1)
	b := uniformStats(20, 4, 1)
	merged := Merge(a, b)
	base := ForCriterion(MSE, false)
	unweighted := base(a, b, merged)
	merged.MaxStdDev = []float64{2.0}
	weighted := WithStdDevWeight(base, 0.5)(a, b, merged)
	assert.Greater(t, weighted, unweighted)
}

func TestEdgeSuppressPanicsWithoutSpectralClustering(t *testing.T) {
	base := ForCriterion(MSE, false)
	assert.Panics(t, func() {
		WithEdgeWeight(base, EdgeSuppress, 0.5, 1, 1.0, false)
	})
}

func TestEdgeEnhanceRaisesCostOnStrongEdge(t *testing.T) {
	a := uniformStats(10, 4, 1)
	b := uniformStats(20, 4, 1)
	merged := Merge(a, b)
	merged.SumEdge = 1.0
	merged.BoundaryN = 1
	base := ForCriterion(MSE, false)
	plain := base(a, b, merged)
	enhanced := WithEdgeWeight(base, EdgeEnhance, 0.5, 1, 1.0, true)(a, b, merged)
	assert.Greater(t, enhanced, plain)
}

func TestMSEInfiniteForEmptyRegion(t *testing.T) {
	a := Stats{Sum: []float64{0}, SumSq: []float64{0}}
	b := uniformStats(5, 4, 1)
	merged := Merge(a, b)
	assert.True(t, math.IsInf(mse(a, b, merged), 1))
}
