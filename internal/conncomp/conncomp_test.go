package conncomp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hseg/internal/pixel"
)

func TestRunSplitsDisjointSameLabelBlobs(t *testing.T) {
	// 4x1 grid: two pixels of class 1, a gap of class 2, then one more
	// pixel of class 1 -- two separate objects within class 1.
	dims := pixel.Dims{Cols: 4, Rows: 1}
	pixels := []pixel.Pixel{
		{Mask: true}, {Mask: true}, {Mask: true}, {Mask: true},
	}
	classLabels := []uint32{1, 1, 2, 1}

	res := Run(pixels, dims, classLabels, 1, false, false, false, Config{ConnType: 1})
	require.Len(t, res.Objects, 3)
	assert.NotEqual(t, res.ObjectLabels[0], res.ObjectLabels[3])
	assert.Equal(t, res.ObjectLabels[0], res.ObjectLabels[1])
}

func TestRunSkipsUnmaskedPixels(t *testing.T) {
	dims := pixel.Dims{Cols: 2, Rows: 1}
	pixels := []pixel.Pixel{{Mask: true}, {Mask: false}}
	classLabels := []uint32{1, 1}

	res := Run(pixels, dims, classLabels, 1, false, false, false, Config{ConnType: 1})
	assert.Len(t, res.Objects, 1)
	assert.Equal(t, uint32(0), res.ObjectLabels[1])
}

func TestRunForceType1OverridesConnType(t *testing.T) {
	dims := pixel.Dims{Cols: 2, Rows: 2}
	pixels := make([]pixel.Pixel, 4)
	for i := range pixels {
		pixels[i] = pixel.Pixel{Mask: true}
	}
	// Diagonal-only adjacency: (0,0) and (1,1) share class 1 but are only
	// 8-connected, not 4-connected.
	classLabels := []uint32{1, 2, 2, 1}

	res := Run(pixels, dims, classLabels, 1, false, false, false, Config{ConnType: 2, ForceType1: true})
	assert.NotEqual(t, res.ObjectLabels[0], res.ObjectLabels[3])
}
