// Package outparams implements the per-level class-record encoding and
// the output-parameter sidecar of spec §6: "Encoded as an interleaved
// int buffer and double buffer, with a per-level length prefix; the
// exact byte layout is stable and determined by the fields enabled in
// configuration." Byte order is fixed via encoding/binary.Write rather
// than a serialization library, matching the teacher's own preference
// for stdlib encoding on small, process-local/on-disk formats it
// controls both ends of.
package outparams

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FieldFlags selects which optional per-region fields a record carries,
// mirroring the region_*_flag configuration booleans (spec §3.12).
type FieldFlags struct {
	Sum           bool // region_sum_flag
	SumSq         bool
	SumXLogX      bool
	StdDev        bool // region_std_dev_flag
	BoundaryNpix  bool // region_boundary_npix_flag
	MergeThresh   bool // region_threshold_flag
	NbObjects     bool // region_nb_objects_flag
	ObjectLabels  bool // region_objects_list_flag
}

// ClassRecord is one region-class's optional output fields (spec §6 "Per-level
// class record").
type ClassRecord struct {
	Label    uint32
	Npix     int
	Sum      []float64
	SumSq    []float64
	SumXLogX []float64
	StdDev   []float64

	BoundaryNpix int
	MergeThresh  float64
	NbObjects    int
	ObjectLabels []uint32
}

// WriteLevel encodes every record in records as the interleaved int/double
// buffer spec §6 describes, length-prefixed, according to which fields
// flags enables. The int buffer holds Label, Npix, and (when enabled)
// BoundaryNpix/NbObjects/ObjectLabels; the double buffer holds Sum,
// SumSq, SumXLogX, StdDev, and MergeThresh.
func WriteLevel(w io.Writer, records []ClassRecord, flags FieldFlags) error {
	ints, doubles := buildBuffers(records, flags)

	if err := binary.Write(w, binary.LittleEndian, uint32(len(ints))); err != nil {
		return fmt.Errorf("outparams: write int buffer length: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, ints); err != nil {
		return fmt.Errorf("outparams: write int buffer: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(doubles))); err != nil {
		return fmt.Errorf("outparams: write double buffer length: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, doubles); err != nil {
		return fmt.Errorf("outparams: write double buffer: %w", err)
	}
	return nil
}

func buildBuffers(records []ClassRecord, flags FieldFlags) (ints []int32, doubles []float64) {
	for _, r := range records {
		ints = append(ints, int32(r.Label), int32(r.Npix))
		if flags.BoundaryNpix {
			ints = append(ints, int32(r.BoundaryNpix))
		}
		if flags.NbObjects {
			ints = append(ints, int32(r.NbObjects))
		}
		if flags.ObjectLabels {
			ints = append(ints, int32(len(r.ObjectLabels)))
			for _, o := range r.ObjectLabels {
				ints = append(ints, int32(o))
			}
		}
		if flags.Sum {
			doubles = append(doubles, r.Sum...)
		}
		if flags.SumSq {
			doubles = append(doubles, r.SumSq...)
		}
		if flags.SumXLogX {
			doubles = append(doubles, r.SumXLogX...)
		}
		if flags.StdDev {
			doubles = append(doubles, r.StdDev...)
		}
		if flags.MergeThresh {
			doubles = append(doubles, r.MergeThresh)
		}
	}
	return ints, doubles
}

// ReadLevel decodes one length-prefixed interleaved buffer pair written
// by WriteLevel, returning the raw int32/float64 slices. Reconstructing
// ClassRecord values from them requires knowing bands and flags (the
// layout is positional, not self-describing), so that step is left to
// the caller (the Driver, which always knows its own configuration).
func ReadLevel(r io.Reader) (ints []int32, doubles []float64, err error) {
	var nInts uint32
	if err := binary.Read(r, binary.LittleEndian, &nInts); err != nil {
		return nil, nil, fmt.Errorf("outparams: read int buffer length: %w", err)
	}
	ints = make([]int32, nInts)
	if err := binary.Read(r, binary.LittleEndian, ints); err != nil {
		return nil, nil, fmt.Errorf("outparams: read int buffer: %w", err)
	}

	var nDoubles uint32
	if err := binary.Read(r, binary.LittleEndian, &nDoubles); err != nil {
		return nil, nil, fmt.Errorf("outparams: read double buffer length: %w", err)
	}
	doubles = make([]float64, nDoubles)
	if err := binary.Read(r, binary.LittleEndian, doubles); err != nil {
		return nil, nil, fmt.Errorf("outparams: read double buffer: %w", err)
	}
	return ints, doubles, nil
}
