package pixel

// Offset is a relative (col, row, slice) displacement used to enumerate a
// pixel's spatial neighbors under a given connectivity stencil.
type Offset struct {
	DCol, DRow, DSlice int
}

// Stencil2D returns the neighbor-direction offsets for the 2-D connectivity
// types enumerated in the legacy -conn_type option: 1 (4 nearest), 2 (8
// nearest, the default), 3 (12 nearest), 4 (20 nearest), 5 (24 nearest).
func Stencil2D(connType int) []Offset {
	four := []Offset{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}}
	eight := append(append([]Offset{}, four...),
		Offset{1, 1, 0}, Offset{1, -1, 0}, Offset{-1, 1, 0}, Offset{-1, -1, 0})
	switch connType {
	case 1:
		return four
	case 3:
		return append(append([]Offset{}, eight...),
			Offset{2, 0, 0}, Offset{-2, 0, 0}, Offset{0, 2, 0}, Offset{0, -2, 0})
	case 4, 5:
		var s []Offset
		for dr := -2; dr <= 2; dr++ {
			for dc := -2; dc <= 2; dc++ {
				if dc == 0 && dr == 0 {
					continue
				}
				if connType == 4 && abs(dc) == 2 && abs(dr) == 2 {
					continue // 20-NN excludes the four outer corners
				}
				s = append(s, Offset{dc, dr, 0})
			}
		}
		return s
	default:
		return eight
	}
}

// Stencil3D returns the neighbor-direction offsets for the 3-D connectivity
// types: 1 (6 nearest), 2 (18 nearest), 3 (26 nearest, the default).
func Stencil3D(connType int) []Offset {
	six := []Offset{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
	}
	switch connType {
	case 1:
		return six
	case 2:
		var s []Offset
		for ds := -1; ds <= 1; ds++ {
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if dc == 0 && dr == 0 && ds == 0 {
						continue
					}
					nz := 0
					if dc != 0 {
						nz++
					}
					if dr != 0 {
						nz++
					}
					if ds != 0 {
						nz++
					}
					if nz <= 2 {
						s = append(s, Offset{dc, dr, ds})
					}
				}
			}
		}
		return s
	default:
		var s []Offset
		for ds := -1; ds <= 1; ds++ {
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if dc == 0 && dr == 0 && ds == 0 {
						continue
					}
					s = append(s, Offset{dc, dr, ds})
				}
			}
		}
		return s
	}
}

// Stencil returns the appropriate offsets for d's dimensionality and the
// given connectivity type.
func Stencil(d Dims, connType int) []Offset {
	if d.Is3D() {
		return Stencil3D(connType)
	}
	return Stencil2D(connType)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
