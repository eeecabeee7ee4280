package config

import (
	"errors"
	"fmt"

	"hseg/internal/conncomp"
	"hseg/internal/firstmerge"
	"hseg/internal/imageio"
	"hseg/internal/merger"
	"hseg/internal/outparams"
	"hseg/internal/seamfix"
)

const (
	infoLevel = "info"
)

// Sentinel configuration errors (spec §7 "Configuration errors").
var (
	ErrMutuallyExclusiveCheckpoints    = errors.New("config: chk_nregions_flag, hseg_out_nregions_flag, and hseg_out_thresholds_flag are mutually exclusive")
	ErrDimensionTooSmallForRecursion   = errors.New("config: min_recursion_side must be positive")
	ErrMaskShapeMismatch               = errors.New("config: mask raster shape does not match primary raster shape")
	ErrSpclustWghtRequired             = errors.New("config: spclust_wght is required unless program_mode is HSWO")
)

// DefaultConfig returns a configuration with sensible defaults, mirroring
// spec §6's bracketed defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:   infoLevel,
		Verbose:    false,
		DebugLevel: 0,
		Raster: RasterConfig{
			MaskValue: 0,
			UseGodal:  true,
		},
		Segmentation: SegmentationConfig{
			ProgramMode:        ProgramModeRHSEG,
			DissimCrit:         6,
			ConnType:           2,
			SpclustWght:        0.0,
			SpclustMin:         2,
			SpclustMax:         20,
			InitThreshold:      0,
			EdgeThreshold:      0,
			EdgeWght:           0,
			EdgePower:          1,
			EdgeDissimOption:   "enhance",
			SeamEdgeThreshold:  0,
			MinNregions:        1,
			ConvNregions:       1,
			SortFlag:           true,
			RandomInitSeedFlag: false,
		},
		Checkpoint: CheckpointConfig{},
		Recursion: RecursionConfig{
			MaxWorkers:       4,
			MinRecursionSide: 2,
		},
		Output: OutputConfig{
			RegionSumFlag: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9090",
		},
		Dispatch: DispatchConfig{
			Kind: "pool",
		},
	}
}

// Validate validates the configuration and returns any errors (spec §7
// "Configuration errors: ... surfaced to the CLI with a message and a
// non-zero exit. No recovery.").
func (c *Config) Validate() error {
	if err := c.validateBasicEnums(); err != nil {
		return err
	}
	if err := c.validateCheckpoints(); err != nil {
		return err
	}
	if err := c.validateThresholds(); err != nil {
		return err
	}
	if err := c.validateRecursion(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBasicEnums() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	switch c.Segmentation.ProgramMode {
	case ProgramModeHSWO, ProgramModeHSEG, ProgramModeRHSEG:
	default:
		return fmt.Errorf("invalid program_mode: %s (must be HSWO, HSEG, or RHSEG)", c.Segmentation.ProgramMode)
	}

	if c.Segmentation.DissimCrit < 1 || c.Segmentation.DissimCrit > 10 {
		return fmt.Errorf("invalid dissim_crit: %d (must be between 1 and 10)", c.Segmentation.DissimCrit)
	}

	if c.Segmentation.ProgramMode != ProgramModeHSWO {
		if c.Segmentation.SpclustWght < 0 || c.Segmentation.SpclustWght > 1 {
			return fmt.Errorf("invalid spclust_wght: %.4f (must be between 0 and 1)", c.Segmentation.SpclustWght)
		}
	}

	switch c.Segmentation.EdgeDissimOption {
	case "", "enhance", "suppress":
	default:
		return fmt.Errorf("invalid edge_dissim_option: %s (must be enhance or suppress)", c.Segmentation.EdgeDissimOption)
	}
	if c.Segmentation.EdgeDissimOption == "suppress" && c.Segmentation.EdgeWght > 0 && c.Segmentation.SpclustWght <= 0 {
		return fmt.Errorf("edge_dissim_option suppress requires spclust_wght > 0")
	}

	return nil
}

func (c *Config) validateCheckpoints() error {
	set := 0
	if c.Checkpoint.ChkNregionsFlag {
		set++
	}
	if c.Checkpoint.HsegOutNregionsFlag {
		set++
	}
	if c.Checkpoint.HsegOutThresholdsFlag {
		set++
	}
	if set > 1 {
		return ErrMutuallyExclusiveCheckpoints
	}
	return nil
}

func (c *Config) validateThresholds() error {
	if c.Segmentation.InitThreshold < 0 {
		return fmt.Errorf("invalid init_threshold: %.4f (must be >= 0)", c.Segmentation.InitThreshold)
	}
	if c.Segmentation.SpclustMin < 0 {
		return fmt.Errorf("invalid spclust_min: %d (must be >= 0)", c.Segmentation.SpclustMin)
	}
	if c.Segmentation.SpclustMax < c.Segmentation.SpclustMin {
		return fmt.Errorf("spclust_max (%d) must be >= spclust_min (%d)", c.Segmentation.SpclustMax, c.Segmentation.SpclustMin)
	}
	if c.Segmentation.MinNregions < 1 {
		return fmt.Errorf("invalid min_nregions: %d (must be >= 1)", c.Segmentation.MinNregions)
	}
	return nil
}

func (c *Config) validateRecursion() error {
	if c.Segmentation.ProgramMode != ProgramModeRHSEG {
		return nil
	}
	if c.Recursion.MinRecursionSide <= 0 {
		return ErrDimensionTooSmallForRecursion
	}
	if c.Recursion.MaxWorkers <= 0 {
		return fmt.Errorf("invalid recursion max_workers: %d (must be positive)", c.Recursion.MaxWorkers)
	}
	return nil
}

// ToMergerConfig converts the resolved configuration to merger.Config.
func (c *Config) ToMergerConfig() merger.Config {
	thresholdCap := 0.0
	if c.Checkpoint.HsegOutThresholdsFlag && len(c.Checkpoint.HsegOutThresholds) > 0 {
		thresholdCap = c.Checkpoint.HsegOutThresholds[0]
	}
	return merger.Config{
		SpclustWght:         c.Segmentation.SpclustWght,
		SpclustMin:          c.Segmentation.SpclustMin,
		SpclustMax:          c.Segmentation.SpclustMax,
		MergeAccel:          c.Segmentation.MergeAccelFlag,
		HsegOutThresholdCap: thresholdCap,
	}
}

// ToFirstMergeConfig converts to firstmerge.Config.
func (c *Config) ToFirstMergeConfig() firstmerge.Config {
	return firstmerge.Config{
		InitThreshold:   c.Segmentation.InitThreshold,
		RandomInitSeed:  c.Segmentation.RandomInitSeedFlag,
		SortByNpix:      c.Segmentation.SortFlag,
	}
}

// ToSeamFixConfig converts to seamfix.Config.
func (c *Config) ToSeamFixConfig() seamfix.Config {
	return seamfix.Config{SeamEdgeThreshold: c.Segmentation.SeamEdgeThreshold}
}

// ToConnCompConfig converts to conncomp.Config.
func (c *Config) ToConnCompConfig() conncomp.Config {
	return conncomp.Config{
		ConnType:   c.Segmentation.ConnType,
		ForceType1: c.Output.ObjectConnType1,
	}
}

// ToImageIORequest converts to an imageio.Request describing the input
// rasters to load.
func (c *Config) ToImageIORequest() imageio.Request {
	return imageio.Request{
		PrimaryPath: c.Raster.PrimaryPath,
		MaskPath:    c.Raster.MaskPath,
		MaskValue:   c.Raster.MaskValue,
		StdDevPath:  c.Raster.StdDevPath,
		EdgePath:    c.Raster.EdgePath,
	}
}

// ToScaleOffset converts to an imageio.ScaleOffset.
func (c *Config) ToScaleOffset() imageio.ScaleOffset {
	return imageio.ScaleOffset{Scale: c.Raster.ScaleFactors, Offset: c.Raster.OffsetValues}
}

// ToFieldFlags converts to outparams.FieldFlags.
func (c *Config) ToFieldFlags() outparams.FieldFlags {
	return outparams.FieldFlags{
		Sum:          c.Output.RegionSumFlag,
		SumSq:        c.Segmentation.DissimCrit == 6 || c.Segmentation.DissimCrit == 7,
		SumXLogX:     c.Segmentation.DissimCrit == 10,
		StdDev:       c.Output.RegionStdDevFlag,
		BoundaryNpix: c.Output.RegionBoundaryNpixFlag,
		MergeThresh:  c.Output.RegionThresholdFlag,
		NbObjects:    c.Output.RegionNbObjectsFlag,
		ObjectLabels: c.Output.RegionObjectsListFlag,
	}
}

// ImageIOBackend selects the ImageIO implementation named by the config.
func (c *Config) ImageIOBackend() imageio.ImageIO {
	if c.Raster.UseGodal {
		return imageio.Godal{}
	}
	return imageio.RawCodec{}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
