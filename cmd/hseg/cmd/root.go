// Package cmd implements the hseg CLI (spec §1.1): hseg run, hseg
// validate, and hseg version, wired over internal/config's Loader and
// internal/driver's orchestrator.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hseg/internal/config"
	"hseg/internal/version"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Configuration file path (legacy parameter file or hseg.yaml).
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hseg",
	Short: "Hierarchical image segmentation",
	Long: `hseg builds a hierarchy of image segmentations by recursively tiling
an input raster, growing regions within each tile, merging across tile
seams, and iteratively merging neighboring regions up to one or more
configured checkpoints.

This tool provides:
- Recursive divide-and-conquer segmentation (RHSEG/HSEG/HSWO modes)
- Region merging driven by a configurable dissimilarity criterion
- Checkpointed hierarchy output (by region count, threshold, or both)
- An optional Prometheus /metrics endpoint for long-running jobs

Examples:
  hseg run params.txt
  hseg validate params.txt
  hseg version`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runRun(cmd, args)
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it. It is
// called by main.main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCommand returns the root command for testing purposes.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

// setupLogging configures the global logger based on the resolved config.
func setupLogging(cfg *config.Config) {
	var logLevel slog.Level
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			logLevel = slog.LevelDebug
		case "info":
			logLevel = slog.LevelInfo
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		default:
			logLevel = slog.LevelInfo
		}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"hseg.yaml config file (default is search in ., $HOME, /etc/hseg)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("metrics-addr", "", "address to serve Prometheus metrics on (served only when metrics.enabled is true and the address is non-empty)")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("metrics.addr", rootCmd.PersistentFlags().Lookup("metrics-addr")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig sets up the configuration loader. Validation happens in
// individual commands, once the param-file argument is known.
func initConfig() {
	configLoader = config.NewLoader()

	if cfgFile != "" {
		configLoader.GetViper().SetConfigFile(cfgFile)
		_ = configLoader.GetViper().ReadInConfig()
	}
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}

// versionString renders version.Info() the way `hseg version` and
// `--version` both print it.
func versionString() string {
	v, commit, date := version.Info()
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, commit, date)
}
