package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "hseg"

	// EnvPrefix is the prefix for environment variables (spec §1.2).
	EnvPrefix = "HSEG"
)

// Loader handles loading configuration from the legacy parameter file (if
// given), a hseg.yaml, environment variables, and CLI flags, in that
// order of increasing precedence.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader over the global viper
// instance, so flag bindings set up by cobra/pflag take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from a legacy parameter file plus environment
// variables and flag overrides, then validates it.
func (l *Loader) Load(paramFile string) (*Config, error) {
	cfg, err := l.LoadWithoutValidation(paramFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutValidation loads configuration without validating it
// afterward — used by `hseg validate` to show the resolved config even
// when it would fail validation.
func (l *Loader) LoadWithoutValidation(paramFile string) (*Config, error) {
	l.setupEnvironmentVariables()
	l.setDefaults()

	if paramFile != "" {
		fields, err := ParseParamFile(paramFile)
		if err != nil {
			return nil, fmt.Errorf("reading param file %s: %w", paramFile, err)
		}
		for k, v := range fields {
			l.v.SetDefault(k, v)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadFromYAML reads a hseg.yaml-style config file instead of (or layered
// under) a legacy parameter file.
func (l *Loader) LoadFromYAML(path string) (*Config, error) {
	l.setupEnvironmentVariables()
	l.setDefaults()

	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// BindFlag binds nothing: its arguments are ignored. The CLI binds its
// flags directly with viper.BindPFlag in cmd/hseg/cmd/root.go.
func (l *Loader) BindFlag(key string, flag interface{ Name() string }) {
	_ = key
	_ = flag
}

// Get returns a resolved value from the configuration.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// Set overrides a single resolved value (used by flag-bound overrides).
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// GetViper returns the underlying viper instance for advanced usage (flag
// binding, etc.)
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)
	l.v.SetDefault("debug_level", d.DebugLevel)

	l.v.SetDefault("raster.mask_value", d.Raster.MaskValue)
	l.v.SetDefault("raster.use_godal", d.Raster.UseGodal)

	l.v.SetDefault("segmentation.program_mode", string(d.Segmentation.ProgramMode))
	l.v.SetDefault("segmentation.dissim_crit", d.Segmentation.DissimCrit)
	l.v.SetDefault("segmentation.conn_type", d.Segmentation.ConnType)
	l.v.SetDefault("segmentation.spclust_wght", d.Segmentation.SpclustWght)
	l.v.SetDefault("segmentation.spclust_min", d.Segmentation.SpclustMin)
	l.v.SetDefault("segmentation.spclust_max", d.Segmentation.SpclustMax)
	l.v.SetDefault("segmentation.init_threshold", d.Segmentation.InitThreshold)
	l.v.SetDefault("segmentation.edge_threshold", d.Segmentation.EdgeThreshold)
	l.v.SetDefault("segmentation.edge_wght", d.Segmentation.EdgeWght)
	l.v.SetDefault("segmentation.edge_power", d.Segmentation.EdgePower)
	l.v.SetDefault("segmentation.edge_dissim_option", d.Segmentation.EdgeDissimOption)
	l.v.SetDefault("segmentation.seam_edge_threshold", d.Segmentation.SeamEdgeThreshold)
	l.v.SetDefault("segmentation.min_nregions", d.Segmentation.MinNregions)
	l.v.SetDefault("segmentation.conv_nregions", d.Segmentation.ConvNregions)
	l.v.SetDefault("segmentation.sort_flag", d.Segmentation.SortFlag)

	l.v.SetDefault("recursion.max_workers", d.Recursion.MaxWorkers)
	l.v.SetDefault("recursion.min_recursion_side", d.Recursion.MinRecursionSide)

	l.v.SetDefault("output.region_sum_flag", d.Output.RegionSumFlag)

	l.v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	l.v.SetDefault("metrics.addr", d.Metrics.Addr)

	l.v.SetDefault("dispatch.kind", d.Dispatch.Kind)
}
