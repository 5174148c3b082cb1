package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morphkit/morph/pkg/pipeline"
)

// applyCommand creates the apply command for running a pipeline.
func (c *CLI) applyCommand() *cobra.Command {
	var (
		configPath string
		backends   backendFlags
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "apply [images...]",
		Short: "Run an augmentation pipeline over input images",
		Long: `Run an augmentation pipeline over input images.

The pipeline is defined in a TOML config of ordered [[step]] tables.
Each input produces --samples augmented variants; the per-sample random
draws are derived from the seed and the sample index, so re-running the
same config over the same inputs reproduces the same outputs.

Inputs can be local paths or http(s) URLs. With --keypoints, a JSON
sidecar next to each input (image.json for image.png) is augmented in
lockstep with the image.

Samples are cached locally; use --refresh to force recomputation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Inputs = args
			return c.runApply(cmd.Context(), configPath, opts, backends)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "augment.toml", "pipeline config file")
	cmd.Flags().StringVarP(&opts.OutputDir, "out", "o", "out", "output directory")
	cmd.Flags().IntVarP(&opts.Samples, "samples", "n", 0, "augmented variants per input (default 1)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (default from config)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format: png (default), jpeg")
	cmd.Flags().BoolVar(&opts.Keypoints, "keypoints", false, "augment JSON keypoint sidecars alongside images")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the sample cache")
	backends.register(cmd)

	return cmd
}

// runApply loads the config and executes the run.
func (c *CLI) runApply(ctx context.Context, configPath string, opts pipeline.Options, backends backendFlags) error {
	cfg, err := pipeline.LoadConfig(configPath)
	if err != nil {
		return err
	}
	opts.Config = cfg
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx, backends)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Augmenting %d input(s)...", len(opts.Inputs)))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Augmentation failed")
		return err
	}
	spinner.Stop()

	prog.done(fmt.Sprintf("Generated %d samples", len(result.Samples)))
	printSuccess("Wrote %d samples to %s", len(result.Samples), opts.OutputDir)
	printRunStats(len(result.Samples), result.CacheInfo.Hits)
	for _, s := range result.Samples {
		if s.OutputPath != "" {
			printFile(s.OutputPath)
		}
	}
	printNewline()
	printNextStep("Inspect the pipeline", fmt.Sprintf("morph inspect -c %s", configPath))
	return nil
}
