package driver

import "hseg/internal/pixel"

// recursionLevels picks how many times the Tiler halves the image before
// hitting a leaf (spec §4.G step 1). RHSEG honors an explicit
// rnb_levels override; otherwise it derives the deepest depth (at most
// 8) at which every leaf window's longest side still clears minSide. HSEG and
// HSWO never recurse (spec §6 "program_mode").
func recursionLevels(dims pixel.Dims, explicit, minSide int) int {
	if explicit > 0 {
		return explicit
	}
	if minSide <= 0 {
		minSide = 1
	}
	longest := dims.Cols
	if dims.Rows > longest {
		longest = dims.Rows
	}
	if dims.Slices > longest {
		longest = dims.Slices
	}
	levels := 0
	for longest>>uint(levels+1) >= minSide && levels < 8 {
		levels++
	}
	return levels
}

// padDims rounds every active dimension up to a multiple of 2^levels, so
// the Tiler can halve each dimension exactly at every recursion level
// (spec §4.J step 1: "establish padded dimensions (each tile divisible
// by 2 the required number of times)").
func padDims(dims pixel.Dims, levels int) pixel.Dims {
	multiple := 1 << uint(levels)
	padded := dims
	padded.Cols = roundUp(dims.Cols, multiple)
	padded.Rows = roundUp(dims.Rows, multiple)
	if dims.Is3D() {
		padded.Slices = roundUp(dims.Slices, multiple)
	}
	return padded
}

func roundUp(v, multiple int) int {
	if multiple <= 1 {
		return v
	}
	rem := v % multiple
	if rem == 0 {
		return v
	}
	return v + (multiple - rem)
}

// padPixels copies pixels/dims into a padded-dims buffer, leaving every
// newly-introduced pixel masked out (Mask: false) so it never
// participates in segmentation (spec §3 pixel.Pixel invariant: "if Mask
// is false then Region is 0 and the pixel never participates in
// dissimilarity evaluation").
func padPixels(pixels []pixel.Pixel, dims, paddedDims pixel.Dims) []pixel.Pixel {
	if dims == paddedDims {
		return pixels
	}
	out := make([]pixel.Pixel, paddedDims.NPix())
	for i := range pixels {
		col, row, slice := dims.Coords(i)
		out[paddedDims.Index(col, row, slice)] = pixels[i]
	}
	return out
}
