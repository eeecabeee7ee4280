package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hseg/internal/driver"
)

var validateCmd = &cobra.Command{
	Use:   "validate <param-file>",
	Short: "Resolve and validate a parameter file, segmenting without writing any output",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	loader := GetConfigLoader()
	cfg, err := loader.LoadWithoutValidation(args[0])
	if err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	setupLogging(cfg)

	resolved, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("rendering resolved configuration: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "resolved configuration:")
	fmt.Fprint(cmd.OutOrStdout(), string(resolved))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	d := driver.New(cfg, driver.WithDryRun())
	result, err := d.Run(context.Background())
	if err != nil {
		return fmt.Errorf("dry-run segmentation failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "configuration valid: would emit %d levels, %d x %d padded raster\n",
		len(result.Levels), result.Dims.Cols, result.Dims.Rows)
	return nil
}
