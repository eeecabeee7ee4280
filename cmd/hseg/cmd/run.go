package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hseg/internal/driver"
	"hseg/internal/progress"
	"hseg/internal/server"
)

var runCmd = &cobra.Command{
	Use:   "run <param-file>",
	Short: "Run a segmentation to completion, writing every checkpointed level",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfigLoader().Load(args[0])
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	setupLogging(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Metrics.Enabled && cfg.Metrics.Addr != "" {
		srv := server.NewServer(server.Config{Addr: cfg.Metrics.Addr})
		go func() {
			if err := srv.Start(ctx); err != nil {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
		slog.Info("serving metrics", "addr", cfg.Metrics.Addr)
	}

	d := driver.New(cfg, driver.WithProgress(progress.NewConsole(cmd.OutOrStdout(), "hseg: ")))
	result, err := d.Run(ctx)
	if err != nil {
		return fmt.Errorf("running segmentation: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d levels, final region count %d\n",
		len(result.Levels), result.Levels[len(result.Levels)-1].NRegions)
	return nil
}
