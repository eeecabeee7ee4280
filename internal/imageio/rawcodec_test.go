package imageio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hseg/internal/pixel"
)

// writeRawFixture writes values (band-major, row-major within a band) in
// exactly the layout readRaw expects, for building test fixtures.
func writeRawFixture(t *testing.T, path string, dims pixel.Dims, bands int, values []float64) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(rawMagic)
	require.NoError(t, err)
	h := rawHeader{Cols: int32(dims.Cols), Rows: int32(dims.Rows), Slices: int32(dims.Slices), Bands: int32(bands)}
	require.NoError(t, binary.Write(f, binary.LittleEndian, h))
	require.NoError(t, binary.Write(f, binary.LittleEndian, values))
}

func TestRawCodecLoadAppliesScaleOffset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "primary.raw")
	dims := pixel.Dims{Cols: 2, Rows: 2}
	writeRawFixture(t, path, dims, 1, []float64{0, 1, 2, 3})

	res, err := RawCodec{}.Load(Request{PrimaryPath: path}, ScaleOffset{Scale: []float64{2}, Offset: []float64{1}})
	require.NoError(t, err)
	assert.Equal(t, dims, res.Dims)
	assert.Equal(t, 1, res.Bands)
	assert.InDelta(t, 1.0, res.Pixels[0].Features[0], 1e-9)
	assert.InDelta(t, 7.0, res.Pixels[3].Features[0], 1e-9)
}

func TestRawCodecLoadAppliesMask(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "primary.raw")
	mask := filepath.Join(dir, "mask.raw")
	dims := pixel.Dims{Cols: 2, Rows: 1}
	writeRawFixture(t, primary, dims, 1, []float64{5, 6})
	writeRawFixture(t, mask, dims, 1, []float64{0, 1})

	res, err := RawCodec{}.Load(Request{PrimaryPath: primary, MaskPath: mask, MaskValue: 0}, ScaleOffset{})
	require.NoError(t, err)
	assert.False(t, res.Pixels[0].Mask)
	assert.True(t, res.Pixels[1].Mask)
}

func TestRawCodecWriteClassLabelsRoundtrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.raw")
	dims := pixel.Dims{Cols: 2, Rows: 1}
	labels := []uint32{7, 9}
	require.NoError(t, RawCodec{}.WriteClassLabels(path, labels, dims))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gotDims, _, values, err := readRaw(f)
	require.NoError(t, err)
	assert.Equal(t, dims, gotDims)
	assert.Equal(t, []float64{7, 9}, values)
}
