package tiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hseg/internal/dispatch"
	"hseg/internal/dissim"
	"hseg/internal/firstmerge"
	"hseg/internal/pixel"
	"hseg/internal/seamfix"
)

// checkerboardImage builds a 4x4, 1-band image with two homogeneous
// halves (left columns near 0, right columns near 100) so a low
// init_threshold keeps FirstMerge from ever merging across the middle,
// while same-half neighbors merge freely.
func checkerboardImage() ([]pixel.Pixel, pixel.Dims) {
	dims := pixel.Dims{Cols: 4, Rows: 4}
	pixels := make([]pixel.Pixel, dims.NPix())
	for i := range pixels {
		col, _, _ := dims.Coords(i)
		val := 0.0
		if col >= 2 {
			val = 100.0
		}
		pixels[i] = pixel.Pixel{Features: []float64{val}, Mask: true}
	}
	return pixels, dims
}

func baseConfig() Config {
	return Config{
		Bands:      1,
		DissimFn:   dissim.ForCriterion(dissim.TwoNorm, false),
		Stencil:    pixel.Stencil2D(2),
		SeamSize:   1,
		FirstMerge: firstmerge.Config{InitThreshold: 5, SortByNpix: true},
		SeamFix:    seamfix.Config{SeamEdgeThreshold: 1},
		Dispatcher: dispatch.Local{},
	}
}

func TestRecurLeafRunsFirstMerge(t *testing.T) {
	pixels, dims := checkerboardImage()
	cfg := baseConfig()
	tl := New(cfg)

	w := Window{Cols: dims.Cols, Rows: dims.Rows}
	result, err := tl.Recur(context.Background(), 0, 0, pixels, dims, w)
	require.NoError(t, err)
	assert.NotNil(t, result.Arena)
	assert.Equal(t, dims.NPix(), len(result.Pixels))
	for _, px := range result.Pixels {
		assert.NotEqual(t, uint32(0), px.Region)
	}
}

func TestRecurSplitsAndStitchesSeam(t *testing.T) {
	pixels, dims := checkerboardImage()
	cfg := baseConfig()
	tl := New(cfg)

	w := Window{Cols: dims.Cols, Rows: dims.Rows}
	result, err := tl.Recur(context.Background(), 1, 0, pixels, dims, w)
	require.NoError(t, err)

	// Every same-value half should have collapsed to a single region:
	// two distinct labels total across the whole image.
	seen := make(map[uint32]bool)
	for _, px := range result.Pixels {
		seen[result.Arena.Resolve(px.Region)] = true
	}
	assert.LessOrEqual(t, len(seen), 2)
}

func TestRecurWithWorkerPoolDispatcher(t *testing.T) {
	pixels, dims := checkerboardImage()
	cfg := baseConfig()
	cfg.Dispatcher = dispatch.WorkerPool{MaxWorkers: 2}
	tl := New(cfg)

	w := Window{Cols: dims.Cols, Rows: dims.Rows}
	result, err := tl.Recur(context.Background(), 1, 0, pixels, dims, w)
	require.NoError(t, err)
	assert.Equal(t, dims.NPix(), len(result.Pixels))
}

func TestSplitAutoPicksLargestDimension(t *testing.T) {
	w := Window{Cols: 8, Rows: 4}
	mask := autoMask(w)
	assert.True(t, mask.Cols)
	assert.False(t, mask.Rows)

	children, colBounds, _, _ := split(w, mask)
	assert.Len(t, children, 2)
	assert.Equal(t, []int{4}, colBounds)
}

func TestWindowNotSplittableWhenDegenerate(t *testing.T) {
	w := Window{Cols: 1, Rows: 1}
	assert.False(t, w.splittable())
}
