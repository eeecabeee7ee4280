package driver

import (
	"hseg/internal/conncomp"
	"hseg/internal/dissim"
	"hseg/internal/merger"
	"hseg/internal/outparams"
	"hseg/internal/pixel"
	"hseg/internal/region"
)

// emit builds one hierarchy Level from the Arena's current state (spec
// §4.J steps 5 and 7): a per-pixel class-label map, optional object
// labels and boundary map, and the per-region ClassRecord list. boundary
// and boundaryLevel are updated in place and carried across calls: a
// pixel's boundary flag is set at the first level where it borders a
// differently-labeled pixel and stays set at every later level, so the
// emitted map marks pixels that are or were a boundary at this or an
// earlier level. The highest level at which a pixel still borders another
// label is not recorded; boundaryLevel holds the first level and is not
// part of the emitted Level.
func (d *Driver) emit(a *region.Arena, st *merger.State, levelIdx int,
	flags outparams.FieldFlags, boundary []bool, boundaryLevel []int,
) (Level, error) {
	classLabels := make([]uint32, len(a.Pixels))
	for i := range a.Pixels {
		if a.Pixels[i].Mask {
			classLabels[i] = a.PixelRegion(i)
		}
	}

	updateBoundary(classLabels, d.dims, d.stencil, levelIdx, boundary, boundaryLevel)

	var objectLabels []uint32
	records := buildRecords(a, flags)

	if flags.NbObjects || flags.ObjectLabels {
		ccCfg := conncomp.Config{ConnType: d.cfg.Segmentation.ConnType, ForceType1: d.cfg.Output.ObjectConnType1}
		result := conncomp.Run(a.Pixels, d.dims, classLabels, d.bands, d.needSumSq, d.needSumXLogX, d.trackStdDev, ccCfg)
		objectLabels = result.ObjectLabels
		attachObjectCounts(records, classLabels, objectLabels, flags)
	}

	lvl := Level{
		Threshold:   st.MaxThreshold,
		NRegions:    st.NRegions,
		ClassLabels: classLabels,
		Records:     records,
	}
	if flags.ObjectLabels || flags.NbObjects {
		lvl.ObjectLabels = objectLabels
	}
	if d.cfg.Output.BoundaryMapFlag {
		lvl.Boundary = append([]bool(nil), boundary...)
	}
	return lvl, nil
}

// attachObjectCounts fills each record's NbObjects/ObjectLabels by
// scanning every pixel once and tracking, per class label, the set of
// distinct object labels observed.
func attachObjectCounts(records []outparams.ClassRecord, classLabels, objectLabels []uint32, flags outparams.FieldFlags) {
	seen := make(map[uint32]map[uint32]bool)
	for i, cl := range classLabels {
		if cl == 0 {
			continue
		}
		set := seen[cl]
		if set == nil {
			set = make(map[uint32]bool)
			seen[cl] = set
		}
		set[objectLabels[i]] = true
	}
	for idx := range records {
		set := seen[records[idx].Label]
		records[idx].NbObjects = len(set)
		if flags.ObjectLabels {
			for obj := range set {
				records[idx].ObjectLabels = append(records[idx].ObjectLabels, obj)
			}
		}
	}
}

// updateBoundary marks every pixel adjacent (under stencil) to a
// differently-labeled active pixel as a boundary pixel at this level,
// and records the level at which it first became one.
func updateBoundary(classLabels []uint32, dims pixel.Dims, stencil []pixel.Offset, levelIdx int, boundary []bool, boundaryLevel []int) {
	for i, label := range classLabels {
		if label == 0 {
			continue
		}
		col, row, slice := dims.Coords(i)
		for _, off := range stencil {
			nc, nr, ns := col+off.DCol, row+off.DRow, slice+off.DSlice
			if !dims.InBounds(nc, nr, ns) {
				continue
			}
			ni := dims.Index(nc, nr, ns)
			if classLabels[ni] != 0 && classLabels[ni] != label {
				if !boundary[i] {
					boundary[i] = true
					boundaryLevel[i] = levelIdx
				}
				break
			}
		}
	}
}

// buildRecords produces one ClassRecord per active region, in ascending
// label order (the order Compact leaves the Arena in).
func buildRecords(a *region.Arena, flags outparams.FieldFlags) []outparams.ClassRecord {
	active := a.ActiveLabels()
	records := make([]outparams.ClassRecord, 0, len(active))
	for _, label := range active {
		r := a.Get(label)
		rec := outparams.ClassRecord{Label: label, Npix: r.Stats.Npix}
		if flags.Sum {
			rec.Sum = r.Stats.Sum
		}
		if flags.SumSq {
			rec.SumSq = r.Stats.SumSq
		}
		if flags.SumXLogX {
			rec.SumXLogX = r.Stats.SumXLogX
		}
		if flags.StdDev {
			rec.StdDev = meanStdDev(r.Stats)
		}
		if flags.BoundaryNpix {
			rec.BoundaryNpix = r.Stats.BoundaryN
		}
		if flags.MergeThresh {
			rec.MergeThresh = r.BestNghbrDissim
		}
		records = append(records, rec)
	}
	return records
}

// meanStdDev derives each band's mean per-pixel std-dev from the
// region's running sum; nil if std-dev tracking was never enabled.
func meanStdDev(s dissim.Stats) []float64 {
	if s.SumStdDev == nil || s.Npix == 0 {
		return nil
	}
	out := make([]float64, len(s.SumStdDev))
	for i, sum := range s.SumStdDev {
		out[i] = sum / float64(s.Npix)
	}
	return out
}
