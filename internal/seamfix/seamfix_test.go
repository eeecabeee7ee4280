package seamfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hseg/internal/dissim"
	"hseg/internal/pixel"
	"hseg/internal/region"
)

func buildSplitGrid(t *testing.T) *region.Arena {
	t.Helper()
	// 4x1 grid split into two 2x1 sections at column 2; pixel values are
	// identical across the seam so the regions should force-merge.
	dims := pixel.Dims{Cols: 4, Rows: 1}
	pixels := make([]pixel.Pixel, dims.NPix())
	for i := range pixels {
		pixels[i] = pixel.Pixel{Features: []float64{10}, Mask: true}
	}
	a := region.NewArena(pixels, dims, 1, pixel.Stencil2D(1), dissim.ForCriterion(dissim.MSE, false), true, false, false, 8)
	a.SeedRegion(1, 0, 0, 0)
	a.SeedRegion(1, 1, 0, 0) // left section: one region, label 1
	a.SeedRegion(2, 2, 0, 0)
	a.SeedRegion(2, 3, 0, 0) // right section: one region, label 2
	return a
}

func TestRunForceMergesAcrossSeam(t *testing.T) {
	a := buildSplitGrid(t)
	seamPixels := []SeamPixel{
		{PixelIdx: 1, Label: 1, Section: 0},
		{PixelIdx: 2, Label: 2, Section: 1},
	}
	applied := Run(a, seamPixels, pixel.Stencil2D(1), Config{SeamEdgeThreshold: 0.5}, nil)
	assert.GreaterOrEqual(t, applied, 0.0)
	assert.Equal(t, a.Resolve(1), a.Resolve(2))
}

func TestRunSkipsPairsAboveThreshold(t *testing.T) {
	dims := pixel.Dims{Cols: 4, Rows: 1}
	pixels := []pixel.Pixel{
		{Features: []float64{0}, Mask: true},
		{Features: []float64{0}, Mask: true},
		{Features: []float64{100}, Mask: true},
		{Features: []float64{100}, Mask: true},
	}
	a := region.NewArena(pixels, dims, 1, pixel.Stencil2D(1), dissim.ForCriterion(dissim.MSE, false), true, false, false, 8)
	a.SeedRegion(1, 0, 0, 0)
	a.SeedRegion(1, 1, 0, 0)
	a.SeedRegion(2, 2, 0, 0)
	a.SeedRegion(2, 3, 0, 0)

	seamPixels := []SeamPixel{
		{PixelIdx: 1, Label: 1, Section: 0},
		{PixelIdx: 2, Label: 2, Section: 1},
	}
	Run(a, seamPixels, pixel.Stencil2D(1), Config{SeamEdgeThreshold: 0.01}, nil)
	require.NotEqual(t, a.Resolve(1), a.Resolve(2))
}

func TestRunPrefersAbsorbingSeamOnlyRegion(t *testing.T) {
	a := buildSplitGrid(t)
	seamPixels := []SeamPixel{
		{PixelIdx: 1, Label: 1, Section: 0},
		{PixelIdx: 2, Label: 2, Section: 1},
	}
	seamRegions := map[region.RegionIdx]bool{2: true}
	Run(a, seamPixels, pixel.Stencil2D(1), Config{SeamEdgeThreshold: 0.5}, seamRegions)
	assert.True(t, a.Get(1).Active)
}
