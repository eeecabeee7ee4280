package imageio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"hseg/internal/pixel"
)

// rawHeader is RawCodec's on-disk layout: a tiny self-describing header
// (magic, dims, band count) followed by band-sequential float64 pixel
// values: each band's full row-major plane in turn (value of pixel i in
// band b at index b*npix+i). It exists purely so imageio and Driver logic can be
// unit-tested without cgo/GDAL installed; it is never the production
// input format (spec §6 names GeoTIFF-class formats as ImageIO's real
// concern, delegated to Godal).
type rawHeader struct {
	Cols, Rows, Slices int32
	Bands              int32
}

const rawMagic = "HSEGRAW1"

// RawCodec is a dependency-free ImageIO implementation over a minimal
// custom binary raster format.
type RawCodec struct{}

// Load implements ImageIO.
func (RawCodec) Load(req Request, so ScaleOffset) (LoadResult, error) {
	f, err := os.Open(req.PrimaryPath)
	if err != nil {
		return LoadResult{}, fmt.Errorf("imageio: open primary %s: %w", req.PrimaryPath, err)
	}
	defer f.Close()

	dims, bands, values, err := readRaw(f)
	if err != nil {
		return LoadResult{}, fmt.Errorf("imageio: decode primary: %w", err)
	}

	npix := dims.NPix()
	pixels := make([]pixel.Pixel, npix)
	for i := 0; i < npix; i++ {
		features := make([]float64, bands)
		for b := 0; b < bands; b++ {
			v := values[b*npix+i]
			if len(so.Scale) > b {
				v = v*so.Scale[b] + so.Offset[b]
			}
			features[b] = v
		}
		pixels[i] = pixel.Pixel{Features: features, Mask: true}
	}

	if req.MaskPath != "" {
		if err := applyMask(req.MaskPath, req.MaskValue, dims, pixels); err != nil {
			return LoadResult{}, err
		}
	}
	if req.StdDevPath != "" {
		if err := applyStdDev(req.StdDevPath, dims, bands, pixels); err != nil {
			return LoadResult{}, err
		}
	}
	if req.EdgePath != "" {
		if err := applyEdge(req.EdgePath, dims, pixels); err != nil {
			return LoadResult{}, err
		}
	}

	bandMin, bandMax, bandMean := scanBands(pixels, bands)

	return LoadResult{
		Pixels:   pixels,
		Dims:     dims,
		Bands:    bands,
		BandMin:  bandMin,
		BandMax:  bandMax,
		BandMean: bandMean,
	}, nil
}

func scanBands(pixels []pixel.Pixel, bands int) (min, max, mean []float64) {
	min = make([]float64, bands)
	max = make([]float64, bands)
	sum := make([]float64, bands)
	n := 0
	for b := range min {
		min[b] = math.Inf(1)
		max[b] = math.Inf(-1)
	}
	for _, px := range pixels {
		if !px.Mask {
			continue
		}
		n++
		for b, v := range px.Features {
			if v < min[b] {
				min[b] = v
			}
			if v > max[b] {
				max[b] = v
			}
			sum[b] += v
		}
	}
	mean = make([]float64, bands)
	if n > 0 {
		for b := range mean {
			mean[b] = sum[b] / float64(n)
		}
	}
	return min, max, mean
}

func readRaw(r io.Reader) (pixel.Dims, int, []float64, error) {
	magic := make([]byte, len(rawMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return pixel.Dims{}, 0, nil, err
	}
	if string(magic) != rawMagic {
		return pixel.Dims{}, 0, nil, fmt.Errorf("imageio: bad magic %q", magic)
	}
	var h rawHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return pixel.Dims{}, 0, nil, err
	}
	dims := pixel.Dims{Cols: int(h.Cols), Rows: int(h.Rows), Slices: int(h.Slices)}
	n := dims.NPix() * int(h.Bands)
	values := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, values); err != nil {
		return pixel.Dims{}, 0, nil, err
	}
	return dims, int(h.Bands), values, nil
}

func applyMask(path string, maskValue int, dims pixel.Dims, pixels []pixel.Pixel) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("imageio: open mask %s: %w", path, err)
	}
	defer f.Close()
	mdims, _, values, err := readRaw(f)
	if err != nil {
		return fmt.Errorf("imageio: decode mask: %w", err)
	}
	if mdims != dims {
		return fmt.Errorf("imageio: mask dims %+v do not match primary dims %+v", mdims, dims)
	}
	for i := range pixels {
		if int(values[i]) == maskValue {
			pixels[i].Mask = false
		}
	}
	return nil
}

func applyStdDev(path string, dims pixel.Dims, bands int, pixels []pixel.Pixel) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("imageio: open std-dev %s: %w", path, err)
	}
	defer f.Close()
	sdims, sbands, values, err := readRaw(f)
	if err != nil {
		return fmt.Errorf("imageio: decode std-dev: %w", err)
	}
	if sdims != dims || sbands != bands {
		return fmt.Errorf("imageio: std-dev shape mismatch")
	}
	npix := dims.NPix()
	for i := range pixels {
		sd := make([]float64, bands)
		for b := 0; b < bands; b++ {
			sd[b] = values[b*npix+i]
		}
		pixels[i].StdDev = sd
	}
	return nil
}

func applyEdge(path string, dims pixel.Dims, pixels []pixel.Pixel) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("imageio: open edge %s: %w", path, err)
	}
	defer f.Close()
	edims, _, values, err := readRaw(f)
	if err != nil {
		return fmt.Errorf("imageio: decode edge: %w", err)
	}
	if edims != dims {
		return fmt.Errorf("imageio: edge dims mismatch")
	}
	for i := range pixels {
		pixels[i].Edge = values[i]
		pixels[i].EdgeSet = true
	}
	return nil
}

// WriteClassLabels implements ImageIO.
func (RawCodec) WriteClassLabels(path string, labels []uint32, dims pixel.Dims) error {
	return writeLabels(path, labels, dims)
}

// WriteObjectLabels implements ImageIO.
func (RawCodec) WriteObjectLabels(path string, labels []uint32, dims pixel.Dims) error {
	return writeLabels(path, labels, dims)
}

// WriteBoundaryMap implements ImageIO.
func (RawCodec) WriteBoundaryMap(path string, boundary []bool, dims pixel.Dims) error {
	labels := make([]uint32, len(boundary))
	for i, b := range boundary {
		if b {
			labels[i] = 1
		}
	}
	return writeLabels(path, labels, dims)
}

func writeLabels(path string, labels []uint32, dims pixel.Dims) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(rawMagic); err != nil {
		return err
	}
	h := rawHeader{Cols: int32(dims.Cols), Rows: int32(dims.Rows), Slices: int32(dims.Slices), Bands: 1}
	if err := binary.Write(f, binary.LittleEndian, h); err != nil {
		return err
	}
	values := make([]float64, len(labels))
	for i, l := range labels {
		values[i] = float64(l)
	}
	return binary.Write(f, binary.LittleEndian, values)
}
