// Package conncomp generalizes the BFS connected-component labelling
// pattern from the teacher's detector package (container/list queue plus
// a running per-component stats accumulator) from a single binary mask
// to a full region-class label map (spec §4.I): within each region
// class, pixels are further split into spatially-connected objects,
// using the same stencil set the rest of the engine uses (4-/8-/12-/...-
// connected in 2-D, up to 26-connected in 3-D), or forced 4-connected
// (2-D) / 6-connected (3-D) when object_conn_type1 is set.
package conncomp

import (
	"container/list"

	"hseg/internal/dissim"
	"hseg/internal/mempool"
	"hseg/internal/pixel"
)

// Config selects the stencil used for object splitting.
type Config struct {
	ConnType int // as pixel.Stencil2D/Stencil3D expects
	// ForceType1 mirrors object_conn_type1: regardless of ConnType,
	// objects are found using the minimal (4- or 6-connected) stencil.
	ForceType1 bool
}

// Result is the per-level output of connected-component labelling: a
// dense per-pixel object-label map (0 = masked/unassigned, matching
// region.NoRegion's convention) and each object's sufficient statistics.
type Result struct {
	ObjectLabels []uint32
	Objects      []dissim.Stats
}

// Run computes object labels within each region class of classLabels
// (a per-pixel region-class label map, as produced by
// region.Arena.SnapshotLabelMap), culling any component that ends up
// with zero member pixels (spec: "Components with zero pixels are
// culled" — this never actually happens for a component discovered by
// BFS from a seed pixel, but is preserved as an explicit filter since a
// caller-supplied classLabels could contain gaps).
func Run(pixels []pixel.Pixel, dims pixel.Dims, classLabels []uint32, bands int,
	needSumSq, needSumXLogX, trackStdDev bool, cfg Config,
) Result {
	stencil := resolveStencil(dims, cfg)

	objectLabels := make([]uint32, len(pixels))
	visited := mempool.GetBool(len(pixels))
	defer mempool.PutBool(visited)
	var stats []dissim.Stats
	nextLabel := uint32(1)

	for i := range pixels {
		if visited[i] || classLabels[i] == 0 || !pixels[i].Mask {
			continue
		}
		st := bfsComponent(pixels, dims, classLabels, stencil, visited, objectLabels, i, nextLabel, bands, needSumSq, needSumXLogX, trackStdDev)
		if st.Npix == 0 {
			continue
		}
		stats = append(stats, st)
		nextLabel++
	}

	return Result{ObjectLabels: objectLabels, Objects: stats}
}

func resolveStencil(dims pixel.Dims, cfg Config) []pixel.Offset {
	connType := cfg.ConnType
	if cfg.ForceType1 {
		connType = 1
	}
	return pixel.Stencil(dims, connType)
}

func bfsComponent(pixels []pixel.Pixel, dims pixel.Dims, classLabels []uint32, stencil []pixel.Offset,
	visited []bool, objectLabels []uint32, start int, label uint32,
	bands int, needSumSq, needSumXLogX, trackStdDev bool,
) dissim.Stats {
	st := dissim.NewStats(bands, needSumSq, needSumXLogX, trackStdDev)
	classID := classLabels[start]

	q := list.New()
	q.PushBack(start)
	visited[start] = true
	objectLabels[start] = label

	for q.Len() > 0 {
		e := q.Front()
		q.Remove(e)
		idx, _ := e.Value.(int)

		px := pixels[idx]
		st.AddPixel(px.Features, px.StdDev, px.Edge, px.EdgeSet, false)

		col, row, slice := dims.Coords(idx)
		for _, off := range stencil {
			nc, nr, ns := col+off.DCol, row+off.DRow, slice+off.DSlice
			if !dims.InBounds(nc, nr, ns) {
				continue
			}
			nIdx := dims.Index(nc, nr, ns)
			if visited[nIdx] || classLabels[nIdx] != classID || !pixels[nIdx].Mask {
				continue
			}
			visited[nIdx] = true
			objectLabels[nIdx] = label
			q.PushBack(nIdx)
		}
	}
	return st
}
