package outparams

import (
	"encoding/binary"
	"fmt"
	"io"
)

// LevelSummary is one hierarchy level's entry in the output-parameter
// sidecar (spec §6 "Output-parameter sidecar").
type LevelSummary struct {
	Threshold       float64
	RecordBufferLen int // total bytes written for this level's class records
	GlobalDissim    float64
	HasGlobalDissim bool
}

// Sidecar is the finalize-step summary file (spec §4.J step 9: "write
// per-level record counts and thresholds to an output-parameter
// sidecar").
type Sidecar struct {
	Levels            []LevelSummary
	RegionClassCount0 int // region-class count at level 0
	RegionObjectCount0 int
	BandMin           []float64
	BandMax           []float64
	BandMean          []float64
}

// Write encodes s in a fixed field order: level count, then per-level
// (threshold, buffer length, has-global-dissim flag, global dissim),
// then the level-0 counts, then the three per-band scan slices prefixed
// by band count.
func (s Sidecar) Write(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Levels))); err != nil {
		return fmt.Errorf("outparams: write level count: %w", err)
	}
	for _, lvl := range s.Levels {
		if err := binary.Write(w, binary.LittleEndian, lvl.Threshold); err != nil {
			return fmt.Errorf("outparams: write level threshold: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(lvl.RecordBufferLen)); err != nil {
			return fmt.Errorf("outparams: write level buffer length: %w", err)
		}
		has := uint8(0)
		if lvl.HasGlobalDissim {
			has = 1
		}
		if err := binary.Write(w, binary.LittleEndian, has); err != nil {
			return fmt.Errorf("outparams: write global-dissim flag: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, lvl.GlobalDissim); err != nil {
			return fmt.Errorf("outparams: write global dissim: %w", err)
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(s.RegionClassCount0)); err != nil {
		return fmt.Errorf("outparams: write region class count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(s.RegionObjectCount0)); err != nil {
		return fmt.Errorf("outparams: write region object count: %w", err)
	}

	for _, bandSlice := range [][]float64{s.BandMin, s.BandMax, s.BandMean} {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(bandSlice))); err != nil {
			return fmt.Errorf("outparams: write band slice length: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, bandSlice); err != nil {
			return fmt.Errorf("outparams: write band slice: %w", err)
		}
	}
	return nil
}

// ReadSidecar decodes a Sidecar written by Write.
func ReadSidecar(r io.Reader) (Sidecar, error) {
	var s Sidecar
	var nLevels uint32
	if err := binary.Read(r, binary.LittleEndian, &nLevels); err != nil {
		return s, fmt.Errorf("outparams: read level count: %w", err)
	}
	s.Levels = make([]LevelSummary, nLevels)
	for i := range s.Levels {
		if err := binary.Read(r, binary.LittleEndian, &s.Levels[i].Threshold); err != nil {
			return s, fmt.Errorf("outparams: read level threshold: %w", err)
		}
		var bufLen uint32
		if err := binary.Read(r, binary.LittleEndian, &bufLen); err != nil {
			return s, fmt.Errorf("outparams: read level buffer length: %w", err)
		}
		s.Levels[i].RecordBufferLen = int(bufLen)
		var has uint8
		if err := binary.Read(r, binary.LittleEndian, &has); err != nil {
			return s, fmt.Errorf("outparams: read global-dissim flag: %w", err)
		}
		s.Levels[i].HasGlobalDissim = has != 0
		if err := binary.Read(r, binary.LittleEndian, &s.Levels[i].GlobalDissim); err != nil {
			return s, fmt.Errorf("outparams: read global dissim: %w", err)
		}
	}

	var classCount, objectCount uint32
	if err := binary.Read(r, binary.LittleEndian, &classCount); err != nil {
		return s, fmt.Errorf("outparams: read region class count: %w", err)
	}
	s.RegionClassCount0 = int(classCount)
	if err := binary.Read(r, binary.LittleEndian, &objectCount); err != nil {
		return s, fmt.Errorf("outparams: read region object count: %w", err)
	}
	s.RegionObjectCount0 = int(objectCount)

	for _, dst := range []*[]float64{&s.BandMin, &s.BandMax, &s.BandMean} {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return s, fmt.Errorf("outparams: read band slice length: %w", err)
		}
		*dst = make([]float64, n)
		if err := binary.Read(r, binary.LittleEndian, *dst); err != nil {
			return s, fmt.Errorf("outparams: read band slice: %w", err)
		}
	}
	return s, nil
}
