package driver

import (
	"fmt"
	"io"
	"os"

	"hseg/internal/imageio"
	"hseg/internal/outparams"
)

// countingWriter tracks bytes written so writeOutputs can record each
// level's record-buffer length in the sidecar without re-encoding it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// buildSidecar assembles the output-parameter sidecar (spec §4.J step 9)
// from the levels already emitted, their encoded record-buffer lengths,
// and the raster scan loaded alongside the primary image.
func (d *Driver) buildSidecar(levels []Level, recordBufferLens []int, loaded imageio.LoadResult) outparams.Sidecar {
	s := outparams.Sidecar{
		BandMin:  loaded.BandMin,
		BandMax:  loaded.BandMax,
		BandMean: loaded.BandMean,
	}
	if len(levels) > 0 {
		s.RegionClassCount0 = levels[0].NRegions
		if len(levels[0].ObjectLabels) > 0 {
			s.RegionObjectCount0 = distinctNonZero(levels[0].ObjectLabels)
		}
	}
	for i, lvl := range levels {
		summary := outparams.LevelSummary{Threshold: lvl.Threshold, RecordBufferLen: recordBufferLens[i]}
		if d.cfg.Segmentation.GdissimFlag {
			summary.HasGlobalDissim = true
			summary.GlobalDissim = lvl.Threshold
		}
		s.Levels = append(s.Levels, summary)
	}
	return s
}

func distinctNonZero(labels []uint32) int {
	seen := make(map[uint32]bool)
	for _, l := range labels {
		if l != 0 {
			seen[l] = true
		}
	}
	return len(seen)
}

// writeOutputs writes every raster output and the per-level
// class-record buffers, then finalizes and writes the sidecar with the
// lengths just written (spec §4.J step 9 / §6 "Output rasters").
func (d *Driver) writeOutputs(result Result, loaded imageio.LoadResult) (outparams.Sidecar, error) {
	last := result.Levels[len(result.Levels)-1]

	if d.cfg.Raster.ClassLabelsOutPath != "" {
		if err := d.io.WriteClassLabels(d.cfg.Raster.ClassLabelsOutPath, last.ClassLabels, result.Dims); err != nil {
			return outparams.Sidecar{}, fmt.Errorf("write class labels: %w", err)
		}
	}
	if d.cfg.Raster.ObjectLabelsOutPath != "" && last.ObjectLabels != nil {
		if err := d.io.WriteObjectLabels(d.cfg.Raster.ObjectLabelsOutPath, last.ObjectLabels, result.Dims); err != nil {
			return outparams.Sidecar{}, fmt.Errorf("write object labels: %w", err)
		}
	}
	if d.cfg.Raster.BoundaryMapOutPath != "" && last.Boundary != nil {
		if err := d.io.WriteBoundaryMap(d.cfg.Raster.BoundaryMapOutPath, last.Boundary, result.Dims); err != nil {
			return outparams.Sidecar{}, fmt.Errorf("write boundary map: %w", err)
		}
	}

	recordBufferLens := make([]int, len(result.Levels))

	if d.cfg.Output.SidecarPath != "" {
		f, err := os.Create(d.cfg.Output.SidecarPath)
		if err != nil {
			return outparams.Sidecar{}, fmt.Errorf("create sidecar: %w", err)
		}
		defer f.Close()

		flags := d.cfg.ToFieldFlags()
		for i, lvl := range result.Levels {
			cw := &countingWriter{w: f}
			if err := outparams.WriteLevel(cw, lvl.Records, flags); err != nil {
				return outparams.Sidecar{}, fmt.Errorf("write level %d records: %w", i, err)
			}
			recordBufferLens[i] = cw.n
		}

		sidecar := d.buildSidecar(result.Levels, recordBufferLens, loaded)
		if err := sidecar.Write(f); err != nil {
			return outparams.Sidecar{}, fmt.Errorf("write sidecar summary: %w", err)
		}
		return sidecar, nil
	}

	return d.buildSidecar(result.Levels, recordBufferLens, loaded), nil
}
