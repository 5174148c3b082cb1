package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/morphkit/morph/pkg/augment"
	"github.com/morphkit/morph/pkg/pipeline"
)

// inspectCommand creates the inspect command for examining a pipeline.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		configPath string
		dotOut     string
		svgOut     string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the composed pipeline for a config",
		Long: `Show the composed pipeline for a config.

The printed pipeline is the simplified form actually executed: identity
steps are eliminated, nested sequences are flattened, and adjacent
fusable steps (such as consecutive rotations) are merged.

Use --dot or --svg to export the pipeline tree for documentation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, configPath, dotOut, svgOut)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "augment.toml", "pipeline config file")
	cmd.Flags().StringVar(&dotOut, "dot", "", "write the pipeline tree as DOT to this file")
	cmd.Flags().StringVar(&svgOut, "svg", "", "render the pipeline tree as SVG to this file")

	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, configPath, dotOut, svgOut string) error {
	cfg, err := pipeline.LoadConfig(configPath)
	if err != nil {
		return err
	}
	tr, err := cfg.Build()
	if err != nil {
		return err
	}

	printKeyValue("Config", configPath)
	printKeyValue("Hash", cfg.Hash()[:16])
	printKeyValue("Steps", fmt.Sprintf("%d declared", len(cfg.Steps)))
	printKeyValue("Pipeline", augment.Name(tr))

	if seq, ok := tr.(*augment.Sequence); ok {
		printNewline()
		for i, child := range seq.Transforms() {
			printDetail("%d. %s", i+1, augment.Name(child))
		}
	}

	if dotOut != "" {
		if err := os.WriteFile(dotOut, []byte(pipeline.ToDOT(tr)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dotOut, err)
		}
		printFile(dotOut)
	}

	if svgOut != "" {
		svg, err := pipeline.RenderSVG(cmd.Context(), pipeline.ToDOT(tr))
		if err != nil {
			return fmt.Errorf("render pipeline tree: %w", err)
		}
		if err := os.WriteFile(svgOut, svg, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", svgOut, err)
		}
		printFile(svgOut)
	}

	return nil
}
