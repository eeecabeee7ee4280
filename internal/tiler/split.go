package tiler

// halfRange is one half of a bisected dimension: its global start offset
// and length.
type halfRange struct{ start, length int }

// halve bisects [start, start+length) into one or two ranges. A
// dimension is only actually split when asked to and long enough; the
// returned boundary slice holds the global coordinate of the split
// plane, empty when no split happened.
func halve(start, length int, split bool) (ranges []halfRange, boundary []int) {
	if !split || length <= 1 {
		return []halfRange{{start, length}}, nil
	}
	half := length / 2
	return []halfRange{{start, half}, {start + half, length - half}}, []int{start + half}
}

// split partitions w into 2, 4, or 8 children according to mask,
// halving every flagged dimension (spec §4.G step 1), and reports the
// global coordinate of each split plane introduced (consulted when
// building the seam index).
func split(w Window, mask SplitMask) (children []Window, colBounds, rowBounds, sliceBounds []int) {
	colRanges, colBounds := halve(w.ColStart, w.Cols, mask.Cols)
	rowRanges, rowBounds := halve(w.RowStart, w.Rows, mask.Rows)
	sliceRanges, sliceBounds := halve(w.SliceStart, w.Slices, mask.Slices)

	for _, sr := range sliceRanges {
		for _, rr := range rowRanges {
			for _, cr := range colRanges {
				children = append(children, Window{
					ColStart: cr.start, Cols: cr.length,
					RowStart: rr.start, Rows: rr.length,
					SliceStart: sr.start, Slices: sr.length,
				})
			}
		}
	}
	return children, colBounds, rowBounds, sliceBounds
}
