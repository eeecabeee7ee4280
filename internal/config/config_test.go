package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadProgramMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segmentation.ProgramMode = "QUANTUM"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeDissimCrit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segmentation.DissimCrit = 11
	assert.Error(t, cfg.Validate())

	cfg.Segmentation.DissimCrit = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresSpclustWghtOutsideHSWO(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segmentation.ProgramMode = ProgramModeRHSEG
	cfg.Segmentation.SpclustWght = 1.5
	assert.Error(t, cfg.Validate())

	cfg.Segmentation.ProgramMode = ProgramModeHSWO
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsMultipleCheckpointModes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Checkpoint.ChkNregionsFlag = true
	cfg.Checkpoint.HsegOutNregionsFlag = true
	assert.ErrorIs(t, cfg.Validate(), ErrMutuallyExclusiveCheckpoints)
}

func TestValidateRejectsSpclustMaxBelowMin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segmentation.SpclustMin = 10
	cfg.Segmentation.SpclustMax = 5
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsRecursionWithoutMinSide(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segmentation.ProgramMode = ProgramModeRHSEG
	cfg.Recursion.MinRecursionSide = 0
	assert.ErrorIs(t, cfg.Validate(), ErrDimensionTooSmallForRecursion)
}

func TestToMergerConfigCapsFromFirstThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Checkpoint.HsegOutThresholdsFlag = true
	cfg.Checkpoint.HsegOutThresholds = []float64{5, 10, 20}

	mc := cfg.ToMergerConfig()
	assert.InDelta(t, 5.0, mc.HsegOutThresholdCap, 1e-9)
}

func TestToFirstMergeConfigRoundtrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segmentation.InitThreshold = 3.5
	cfg.Segmentation.RandomInitSeedFlag = true

	fc := cfg.ToFirstMergeConfig()
	assert.InDelta(t, 3.5, fc.InitThreshold, 1e-9)
	assert.True(t, fc.RandomInitSeed)
	assert.True(t, fc.SortByNpix)
}

func TestToFieldFlagsReflectsDissimCrit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segmentation.DissimCrit = 10
	flags := cfg.ToFieldFlags()
	assert.True(t, flags.SumXLogX)
	assert.False(t, flags.SumSq)
}

func TestImageIOBackendSelection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Raster.UseGodal = false
	require.NotNil(t, cfg.ImageIOBackend())
}
