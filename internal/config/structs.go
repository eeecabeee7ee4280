//nolint:lll
package config

// Config represents the complete resolved configuration for a hseg run.
// It is assembled the way the teacher's internal/config package does it —
// defaults set centrally, overridable by HSEG_-prefixed environment
// variables and CLI flags bound through viper — but every field here
// mirrors a parameter the legacy flat parameter file declares (spec §6
// "Configuration (enumerated, defaults in brackets)").
type Config struct {
	// Global settings
	LogLevel   string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose    bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	DebugLevel int    `mapstructure:"debug_level" yaml:"debug_level" json:"debug_level"`

	// Raster I/O
	Raster RasterConfig `mapstructure:"raster" yaml:"raster" json:"raster"`

	// Segmentation algorithm parameters
	Segmentation SegmentationConfig `mapstructure:"segmentation" yaml:"segmentation" json:"segmentation"`

	// Output-level checkpointing
	Checkpoint CheckpointConfig `mapstructure:"checkpoint" yaml:"checkpoint" json:"checkpoint"`

	// Recursive tiling (program_mode = RHSEG)
	Recursion RecursionConfig `mapstructure:"recursion" yaml:"recursion" json:"recursion"`

	// Output record fields
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Metrics server (optional, observability only)
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`

	// Parallel dispatch (local worker pool vs MPI vs serial)
	Dispatch DispatchConfig `mapstructure:"dispatch" yaml:"dispatch" json:"dispatch"`
}

// RasterConfig names the input/output raster paths and per-band rescaling
// (spec §6 "Input rasters" / "Output rasters").
type RasterConfig struct {
	PrimaryPath string `mapstructure:"primary_path" yaml:"primary_path" json:"primary_path"`
	MaskPath    string `mapstructure:"mask_path" yaml:"mask_path" json:"mask_path"`
	MaskValue   int    `mapstructure:"mask_value" yaml:"mask_value" json:"mask_value"`
	StdDevPath  string `mapstructure:"std_dev_path" yaml:"std_dev_path" json:"std_dev_path"`
	EdgePath    string `mapstructure:"edge_path" yaml:"edge_path" json:"edge_path"`
	InputLabelPath string `mapstructure:"input_label_path" yaml:"input_label_path" json:"input_label_path"`

	ScaleFactors []float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
	OffsetValues []float64 `mapstructure:"offset" yaml:"offset" json:"offset"`

	ClassLabelsOutPath  string `mapstructure:"class_labels_out" yaml:"class_labels_out" json:"class_labels_out"`
	ObjectLabelsOutPath string `mapstructure:"object_labels_out" yaml:"object_labels_out" json:"object_labels_out"`
	BoundaryMapOutPath  string `mapstructure:"boundary_map_out" yaml:"boundary_map_out" json:"boundary_map_out"`

	// UseGodal selects the production github.com/airbusgeo/godal-backed
	// ImageIO. When false, RawCodec is used (dependency-free, test-only in
	// practice, but not gated behind a build tag so `hseg validate` can run
	// anywhere).
	UseGodal bool `mapstructure:"use_godal" yaml:"use_godal" json:"use_godal"`
}

// ProgramMode selects the merge strategy (spec §6 "program_mode").
type ProgramMode string

const (
	ProgramModeHSWO  ProgramMode = "HSWO"  // no recursion, no spectral clustering
	ProgramModeHSEG  ProgramMode = "HSEG"  // no recursion
	ProgramModeRHSEG ProgramMode = "RHSEG" // recursive
)

// SegmentationConfig carries the `lhseg`/`FirstMerge` tuning parameters
// (spec §4.B through §4.F).
type SegmentationConfig struct {
	ProgramMode ProgramMode `mapstructure:"program_mode" yaml:"program_mode" json:"program_mode"`

	DissimCrit int `mapstructure:"dissim_crit" yaml:"dissim_crit" json:"dissim_crit"`
	ConnType   int `mapstructure:"conn_type" yaml:"conn_type" json:"conn_type"`

	SpclustWght float64 `mapstructure:"spclust_wght" yaml:"spclust_wght" json:"spclust_wght"`
	SpclustMin  int     `mapstructure:"spclust_min" yaml:"spclust_min" json:"spclust_min"`
	SpclustMax  int     `mapstructure:"spclust_max" yaml:"spclust_max" json:"spclust_max"`

	InitThreshold float64 `mapstructure:"init_threshold" yaml:"init_threshold" json:"init_threshold"`

	EdgeThreshold     float64 `mapstructure:"edge_threshold" yaml:"edge_threshold" json:"edge_threshold"`
	EdgeWght          float64 `mapstructure:"edge_wght" yaml:"edge_wght" json:"edge_wght"`
	EdgePower         float64 `mapstructure:"edge_power" yaml:"edge_power" json:"edge_power"`
	// EdgeDissimOption selects enhance (strong edges cost more to merge
	// across) or suppress (forces seam-spanning merges to wait longer,
	// spec §4.B); suppress requires spclust_wght > 0.
	EdgeDissimOption  string  `mapstructure:"edge_dissim_option" yaml:"edge_dissim_option" json:"edge_dissim_option"`
	SeamEdgeThreshold float64 `mapstructure:"seam_edge_threshold" yaml:"seam_edge_threshold" json:"seam_edge_threshold"`

	MinNregions  int `mapstructure:"min_nregions" yaml:"min_nregions" json:"min_nregions"`
	ConvNregions int `mapstructure:"conv_nregions" yaml:"conv_nregions" json:"conv_nregions"`

	GdissimFlag        bool `mapstructure:"gdissim_flag" yaml:"gdissim_flag" json:"gdissim_flag"`
	MergeAccelFlag      bool `mapstructure:"merge_accel_flag" yaml:"merge_accel_flag" json:"merge_accel_flag"`
	SortFlag            bool `mapstructure:"sort_flag" yaml:"sort_flag" json:"sort_flag"`
	RandomInitSeedFlag  bool `mapstructure:"random_init_seed_flag" yaml:"random_init_seed_flag" json:"random_init_seed_flag"`
	CompleteLabelingFlag bool `mapstructure:"complete_labeling_flag" yaml:"complete_labeling_flag" json:"complete_labeling_flag"`

	// SAR speckle-noise modifier applied to the MSE and SqrtMSE criteria
	// (Open Question resolution, DESIGN.md).
	SARSpeckleNoise bool `mapstructure:"sar_speckle_noise" yaml:"sar_speckle_noise" json:"sar_speckle_noise"`
}

// CheckpointConfig selects how the driver decides when to emit a level
// (spec §4.J step 8, mutually-exclusive checkpoint modes).
type CheckpointConfig struct {
	ChkNregionsFlag       bool  `mapstructure:"chk_nregions_flag" yaml:"chk_nregions_flag" json:"chk_nregions_flag"`
	ChkNregions           int   `mapstructure:"chk_nregions" yaml:"chk_nregions" json:"chk_nregions"`
	HsegOutNregionsFlag   bool  `mapstructure:"hseg_out_nregions_flag" yaml:"hseg_out_nregions_flag" json:"hseg_out_nregions_flag"`
	HsegOutNregions       []int `mapstructure:"hseg_out_nregions" yaml:"hseg_out_nregions" json:"hseg_out_nregions"`
	HsegOutThresholdsFlag bool      `mapstructure:"hseg_out_thresholds_flag" yaml:"hseg_out_thresholds_flag" json:"hseg_out_thresholds_flag"`
	HsegOutThresholds     []float64 `mapstructure:"hseg_out_thresholds" yaml:"hseg_out_thresholds" json:"hseg_out_thresholds"`
}

// RecursionConfig carries the `lrhseg` recursive-tiling parameters (spec
// §4.G), consulted only when Segmentation.ProgramMode == RHSEG.
type RecursionConfig struct {
	RnbLevels  int `mapstructure:"rnb_levels" yaml:"rnb_levels" json:"rnb_levels"`
	IonbLevels int `mapstructure:"ionb_levels" yaml:"ionb_levels" json:"ionb_levels"`

	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" json:"max_workers"`

	// MinRecursionSide bounds how far the recursive split can go before a
	// window is too small to subdivide further (spec §9 error condition
	// ErrDimensionTooSmallForRecursion).
	MinRecursionSide int `mapstructure:"min_recursion_side" yaml:"min_recursion_side" json:"min_recursion_side"`

	TileStoreDir string `mapstructure:"tile_store_dir" yaml:"tile_store_dir" json:"tile_store_dir"`
}

// OutputConfig toggles which optional fields the per-level class record
// carries (spec §6 "Per-level class record").
type OutputConfig struct {
	RegionNbObjectsFlag    bool `mapstructure:"region_nb_objects_flag" yaml:"region_nb_objects_flag" json:"region_nb_objects_flag"`
	ObjectConnType1        bool `mapstructure:"object_conn_type1" yaml:"object_conn_type1" json:"object_conn_type1"`
	RegionSumFlag          bool `mapstructure:"region_sum_flag" yaml:"region_sum_flag" json:"region_sum_flag"`
	RegionStdDevFlag       bool `mapstructure:"region_std_dev_flag" yaml:"region_std_dev_flag" json:"region_std_dev_flag"`
	RegionBoundaryNpixFlag bool `mapstructure:"region_boundary_npix_flag" yaml:"region_boundary_npix_flag" json:"region_boundary_npix_flag"`
	RegionThresholdFlag    bool `mapstructure:"region_threshold_flag" yaml:"region_threshold_flag" json:"region_threshold_flag"`
	RegionObjectsListFlag  bool `mapstructure:"region_objects_list_flag" yaml:"region_objects_list_flag" json:"region_objects_list_flag"`
	BoundaryMapFlag        bool `mapstructure:"boundary_map_flag" yaml:"boundary_map_flag" json:"boundary_map_flag"`

	SidecarPath string `mapstructure:"sidecar_path" yaml:"sidecar_path" json:"sidecar_path"`
}

// MetricsConfig controls the optional prometheus /metrics endpoint (spec
// §1.6 — pure observability, never on the merge loop's control flow).
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr" json:"addr"`
}

// DispatchConfig selects the collaborator that fans a recursive tiling
// pass out to siblings (spec §5, the opaque `RecurDispatcher`).
type DispatchConfig struct {
	Kind string `mapstructure:"kind" yaml:"kind" json:"kind"` // "local", "pool", "mpi"
}
