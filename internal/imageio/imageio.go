// Package imageio is the ImageIO collaborator spec §6 treats as out of
// scope for the segmentation core proper ("image file I/O and mask
// ingestion... external collaborators whose interface is specified in
// §6 only"): it loads the primary multi-band raster plus optional mask,
// std-dev, and edge rasters into the engine's internal Pixel
// representation, and writes the region-class/object label maps and
// boundary map back out.
package imageio

import "hseg/internal/pixel"

// Request describes what to load: a primary raster path plus optional
// companion rasters (spec §6 "Input rasters").
type Request struct {
	PrimaryPath string
	MaskPath    string // optional; single-band, mask_value means excluded
	MaskValue   int
	StdDevPath  string // optional
	EdgePath    string // optional, single-band
}

// LoadResult is everything the Driver needs to build its initial Arena:
// the raw pixel array, dimensions, band count, and the per-band
// min/max/mean scan spec §4.J item (a) calls for (the renumbering
// tie-break vector, and sidecar reporting).
type LoadResult struct {
	Pixels   []pixel.Pixel
	Dims     pixel.Dims
	Bands    int
	BandMin  []float64
	BandMax  []float64
	BandMean []float64
}

// ScaleOffset rescales a raw per-band value: scaled = raw*Scale + Offset
// (spec §4.J step 1 "scale/offset per band").
type ScaleOffset struct {
	Scale  []float64
	Offset []float64
}

// ImageIO is the collaborator interface the Driver depends on. Two
// implementations exist: Godal (production, backed by
// github.com/airbusgeo/godal) and the pure-Go RawCodec (a
// dependency-free fallback used by unit tests that must run without
// cgo/GDAL installed, spec §3.2's "rawcodec fallback").
type ImageIO interface {
	Load(req Request, so ScaleOffset) (LoadResult, error)
	WriteClassLabels(path string, labels []uint32, dims pixel.Dims) error
	WriteObjectLabels(path string, labels []uint32, dims pixel.Dims) error
	WriteBoundaryMap(path string, boundary []bool, dims pixel.Dims) error
}
