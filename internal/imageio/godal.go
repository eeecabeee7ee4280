package imageio

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"

	"hseg/internal/pixel"
)

// Godal is the production ImageIO implementation, backed by
// github.com/airbusgeo/godal's GDAL bindings. It supports every raster
// format GDAL itself supports for the primary image, mask, std-dev, and
// edge rasters (spec §6 "Input rasters" / "Output rasters").
type Godal struct{}

func init() {
	godal.RegisterAll()
}

// Load implements ImageIO.
func (Godal) Load(req Request, so ScaleOffset) (LoadResult, error) {
	ds, err := godal.Open(req.PrimaryPath)
	if err != nil {
		return LoadResult{}, fmt.Errorf("imageio: open primary %s: %w", req.PrimaryPath, err)
	}
	defer ds.Close()

	structure := ds.Structure()
	dims := pixel.Dims{Cols: structure.SizeX, Rows: structure.SizeY}
	bands := ds.Bands()
	nBands := len(bands)
	npix := dims.NPix()

	raw := make([][]float64, nBands)
	for b, band := range bands {
		buf := make([]float64, npix)
		if err := band.Read(0, 0, buf, dims.Cols, dims.Rows); err != nil {
			return LoadResult{}, fmt.Errorf("imageio: read band %d: %w", b, err)
		}
		raw[b] = buf
	}

	pixels := make([]pixel.Pixel, npix)
	for i := 0; i < npix; i++ {
		features := make([]float64, nBands)
		for b := 0; b < nBands; b++ {
			v := raw[b][i]
			if len(so.Scale) > b {
				v = v*so.Scale[b] + so.Offset[b]
			}
			features[b] = v
		}
		pixels[i] = pixel.Pixel{Features: features, Mask: true}
	}

	if req.MaskPath != "" {
		if err := applyGodalMask(req.MaskPath, req.MaskValue, dims, pixels); err != nil {
			return LoadResult{}, err
		}
	}
	if req.StdDevPath != "" {
		if err := applyGodalStdDev(req.StdDevPath, dims, nBands, pixels); err != nil {
			return LoadResult{}, err
		}
	}
	if req.EdgePath != "" {
		if err := applyGodalEdge(req.EdgePath, dims, pixels); err != nil {
			return LoadResult{}, err
		}
	}

	bandMin, bandMax, bandMean := scanBands(pixels, nBands)
	return LoadResult{Pixels: pixels, Dims: dims, Bands: nBands, BandMin: bandMin, BandMax: bandMax, BandMean: bandMean}, nil
}

func applyGodalMask(path string, maskValue int, dims pixel.Dims, pixels []pixel.Pixel) error {
	ds, err := godal.Open(path)
	if err != nil {
		return fmt.Errorf("imageio: open mask %s: %w", path, err)
	}
	defer ds.Close()
	buf := make([]float64, dims.NPix())
	if err := ds.Bands()[0].Read(0, 0, buf, dims.Cols, dims.Rows); err != nil {
		return fmt.Errorf("imageio: read mask: %w", err)
	}
	for i, v := range buf {
		if int(v) == maskValue {
			pixels[i].Mask = false
		}
	}
	return nil
}

func applyGodalStdDev(path string, dims pixel.Dims, bands int, pixels []pixel.Pixel) error {
	ds, err := godal.Open(path)
	if err != nil {
		return fmt.Errorf("imageio: open std-dev %s: %w", path, err)
	}
	defer ds.Close()
	npix := dims.NPix()
	raw := make([][]float64, bands)
	for b, band := range ds.Bands() {
		if b >= bands {
			break
		}
		buf := make([]float64, npix)
		if err := band.Read(0, 0, buf, dims.Cols, dims.Rows); err != nil {
			return fmt.Errorf("imageio: read std-dev band %d: %w", b, err)
		}
		raw[b] = buf
	}
	for i := range pixels {
		sd := make([]float64, bands)
		for b := 0; b < bands; b++ {
			sd[b] = raw[b][i]
		}
		pixels[i].StdDev = sd
	}
	return nil
}

func applyGodalEdge(path string, dims pixel.Dims, pixels []pixel.Pixel) error {
	ds, err := godal.Open(path)
	if err != nil {
		return fmt.Errorf("imageio: open edge %s: %w", path, err)
	}
	defer ds.Close()
	buf := make([]float64, dims.NPix())
	if err := ds.Bands()[0].Read(0, 0, buf, dims.Cols, dims.Rows); err != nil {
		return fmt.Errorf("imageio: read edge: %w", err)
	}
	for i, v := range buf {
		pixels[i].Edge = v
		pixels[i].EdgeSet = true
	}
	return nil
}

// WriteClassLabels implements ImageIO, writing a single-band 32-bit
// integer GeoTIFF (spec §6 "Region-class label map: 32-bit integer, one
// band per emitted level").
func (Godal) WriteClassLabels(path string, labels []uint32, dims pixel.Dims) error {
	return writeGodalLabels(path, labels, dims)
}

// WriteObjectLabels implements ImageIO.
func (Godal) WriteObjectLabels(path string, labels []uint32, dims pixel.Dims) error {
	return writeGodalLabels(path, labels, dims)
}

// WriteBoundaryMap implements ImageIO.
func (Godal) WriteBoundaryMap(path string, boundary []bool, dims pixel.Dims) error {
	labels := make([]uint32, len(boundary))
	for i, b := range boundary {
		if b {
			labels[i] = 1
		}
	}
	return writeGodalLabels(path, labels, dims)
}

func writeGodalLabels(path string, labels []uint32, dims pixel.Dims) error {
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Int32, dims.Cols, dims.Rows)
	if err != nil {
		return fmt.Errorf("imageio: create %s: %w", path, err)
	}
	defer ds.Close()

	buf := make([]int32, len(labels))
	for i, l := range labels {
		if l > math.MaxInt32 {
			return fmt.Errorf("imageio: label %d overflows int32", l)
		}
		buf[i] = int32(l)
	}
	if err := ds.Bands()[0].Write(0, 0, buf, dims.Cols, dims.Rows); err != nil {
		return fmt.Errorf("imageio: write %s: %w", path, err)
	}
	return nil
}
