package cli

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/morphkit/morph/pkg/augment"
	"github.com/morphkit/morph/pkg/imageio"
	"github.com/morphkit/morph/pkg/item"
	"github.com/morphkit/morph/pkg/pipeline"
)

// previewCommand creates the preview command for interactive exploration.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		configPath string
		seed       uint64
	)

	cmd := &cobra.Command{
		Use:   "preview [image]",
		Short: "Interactively step through random draws for one input",
		Long: `Interactively step through random draws for one input.

Each draw applies the configured pipeline to the image with a fresh
per-sample random state, exactly as 'apply' would for consecutive
sample indices. Step forward and back to see how the stochastic steps
resolve, and save any draw you like to disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pipeline.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = cfg.Seed
			}
			if seed == 0 {
				seed = pipeline.DefaultSeed
			}

			model, err := newPreviewModel(cfg, args[0], seed)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "augment.toml", "pipeline config file")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default from config)")

	return cmd
}

// previewModel is the bubbletea model for interactive pipeline preview.
type previewModel struct {
	transform augment.Transform
	pipeline  string
	input     string
	image     item.Image
	seed      uint64

	index     int
	outBounds string
	saved     string
	err       error
}

func newPreviewModel(cfg *pipeline.Config, input string, seed uint64) (*previewModel, error) {
	tr, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	img, err := imageio.Load(input)
	if err != nil {
		return nil, err
	}

	m := &previewModel{
		transform: tr,
		pipeline:  augment.Name(tr),
		input:     input,
		image:     img,
		seed:      seed,
	}
	m.draw()
	return m, nil
}

// draw applies the pipeline with the current sample index.
func (m *previewModel) draw() {
	m.saved = ""
	out, err := m.apply()
	if err != nil {
		m.err = err
		m.outBounds = ""
		return
	}
	m.err = nil
	b := out.Img.Bounds()
	m.outBounds = fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
}

func (m *previewModel) apply() (item.Image, error) {
	rng := rand.New(rand.NewPCG(m.seed, uint64(m.index)))
	out, err := augment.Apply(rng, m.transform, m.image)
	if err != nil {
		return item.Image{}, err
	}
	img, ok := out.(item.Image)
	if !ok {
		return item.Image{}, fmt.Errorf("pipeline produced %T, want an image", out)
	}
	return img, nil
}

// save writes the current draw next to the input.
func (m *previewModel) save() {
	out, err := m.apply()
	if err != nil {
		m.err = err
		return
	}

	ext := filepath.Ext(m.input)
	path := fmt.Sprintf("%s_preview_%04d%s", strings.TrimSuffix(m.input, ext), m.index, ext)
	if err := imageio.Save(path, out); err != nil {
		m.err = err
		return
	}
	m.saved = path
}

func (m *previewModel) Init() tea.Cmd {
	return nil
}

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "n", " ":
			m.index++
			m.draw()
		case "left", "p":
			if m.index > 0 {
				m.index--
				m.draw()
			}
		case "s", "enter":
			m.save()
		}
	}
	return m, nil
}

func (m *previewModel) View() string {
	var b strings.Builder

	inBounds := m.image.Img.Bounds()

	b.WriteString(StyleTitle.Render("Pipeline Preview"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ step draws  s save  q quit"))
	b.WriteString("\n\n")

	writePreviewRow(&b, "Input", fmt.Sprintf("%s (%dx%d)", m.input, inBounds.Dx(), inBounds.Dy()))
	writePreviewRow(&b, "Pipeline", m.pipeline)
	writePreviewRow(&b, "Seed", fmt.Sprintf("%d", m.seed))
	writePreviewRow(&b, "Draw", StyleHighlight.Render(fmt.Sprintf("#%d", m.index)))

	switch {
	case m.err != nil:
		writePreviewRow(&b, "Error", StyleWarning.Render(m.err.Error()))
	default:
		writePreviewRow(&b, "Output", m.outBounds)
	}

	if m.saved != "" {
		b.WriteString("\n")
		b.WriteString(StyleSuccess.Render(iconSuccess) + " " + StyleValue.Render(m.saved))
	}

	b.WriteString("\n")
	return b.String()
}

func writePreviewRow(b *strings.Builder, key, value string) {
	b.WriteString(fmt.Sprintf("  %s %s\n", StyleDim.Render(fmt.Sprintf("%-9s", key)), value))
}
