package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/morphkit/morph/pkg/augment"
	"github.com/morphkit/morph/pkg/cache"
	"github.com/morphkit/morph/pkg/transform"
)

// ErrUnknownStep is returned when a config names a step kind that is not
// registered.
var ErrUnknownStep = errors.New("unknown step kind")

// Step is one entry in a pipeline definition. Kind selects the transform
// and the remaining fields carry its parameters; which fields matter
// depends on the kind.
type Step struct {
	// Kind names the transform, e.g. "flip_x" or "random_crop".
	Kind string `toml:"kind" json:"kind"`

	// P is the probability parameter for stochastic steps.
	P float64 `toml:"p,omitempty" json:"p,omitempty"`

	// Turns is the quarter-turn count for rotation steps.
	Turns int `toml:"turns,omitempty" json:"turns,omitempty"`

	// Width and Height parameterize crop and resize steps.
	Width  int `toml:"width,omitempty" json:"width,omitempty"`
	Height int `toml:"height,omitempty" json:"height,omitempty"`

	// Choices holds the nested candidates of a one_of step.
	Choices []Step `toml:"choice,omitempty" json:"choice,omitempty"`
}

// Config is a declarative pipeline definition, typically loaded from a
// TOML file:
//
//	seed = 42
//
//	[[step]]
//	kind = "random_flip_x"
//	p = 0.5
//
//	[[step]]
//	kind = "random_crop"
//	width = 224
//	height = 224
type Config struct {
	// Seed is the default run seed; flags may override it.
	Seed uint64 `toml:"seed,omitempty" json:"seed,omitempty"`

	// Steps are applied in order.
	Steps []Step `toml:"step" json:"step"`
}

// stepBuilder constructs a transform from one config step.
type stepBuilder func(Step) (augment.Transform, error)

// stepRegistry maps step kinds to builders. Kinds are stable names: they
// appear in config files and in cache keys via the config hash.
var stepRegistry map[string]stepBuilder

func init() {
	stepRegistry = map[string]stepBuilder{
		"identity": func(Step) (augment.Transform, error) {
			return augment.Identity{}, nil
		},
		"flip_x": func(Step) (augment.Transform, error) {
			return transform.FlipX{}, nil
		},
		"flip_y": func(Step) (augment.Transform, error) {
			return transform.FlipY{}, nil
		},
		"rotate90": func(s Step) (augment.Transform, error) {
			return transform.Rotate90{Turns: s.Turns}, nil
		},
		"resize": func(s Step) (augment.Transform, error) {
			if s.Width <= 0 || s.Height <= 0 {
				return nil, fmt.Errorf("resize needs a positive width and height, got %dx%d", s.Width, s.Height)
			}
			return transform.Resize{Width: s.Width, Height: s.Height}, nil
		},
		"random_flip_x": func(s Step) (augment.Transform, error) {
			if s.P < 0 || s.P > 1 {
				return nil, fmt.Errorf("random_flip_x probability %v outside [0, 1]", s.P)
			}
			return transform.RandomFlipX{P: s.P}, nil
		},
		"random_rotate90": func(Step) (augment.Transform, error) {
			return transform.RandomRotate90{}, nil
		},
		"random_crop": func(s Step) (augment.Transform, error) {
			if s.Width <= 0 || s.Height <= 0 {
				return nil, fmt.Errorf("random_crop needs a positive width and height, got %dx%d", s.Width, s.Height)
			}
			return transform.RandomCrop{Width: s.Width, Height: s.Height}, nil
		},
		"one_of": func(s Step) (augment.Transform, error) {
			if len(s.Choices) == 0 {
				return nil, fmt.Errorf("one_of needs at least one choice")
			}
			choices := make([]augment.Transform, len(s.Choices))
			for i, c := range s.Choices {
				t, err := buildStep(c)
				if err != nil {
					return nil, fmt.Errorf("choice %d: %w", i, err)
				}
				choices[i] = t
			}
			return transform.OneOf{Choices: choices}, nil
		},
	}
}

// StepKinds returns the registered step kind names. Useful for error
// messages and CLI help.
func StepKinds() []string {
	kinds := make([]string, 0, len(stepRegistry))
	for k := range stepRegistry {
		kinds = append(kinds, k)
	}
	return kinds
}

func buildStep(s Step) (augment.Transform, error) {
	builder, ok := stepRegistry[s.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, s.Kind)
	}
	return builder(s)
}

// ParseConfig decodes a TOML pipeline definition.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads and decodes a TOML pipeline definition from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseConfig(data)
}

// Build composes the configured steps into a single transform. The
// result is simplified by the composition algebra: identities drop out,
// nested sequences flatten, and adjacent fusable steps merge.
func (c *Config) Build() (augment.Transform, error) {
	transforms := make([]augment.Transform, len(c.Steps))
	for i, s := range c.Steps {
		t, err := buildStep(s)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, s.Kind, err)
		}
		transforms[i] = t
	}
	return augment.Compose(transforms...), nil
}

// Hash returns the content hash of the pipeline definition. Two configs
// with the same steps and seed hash identically regardless of TOML
// formatting, so cached samples survive config reformatting.
func (c *Config) Hash() string {
	data, _ := json.Marshal(c)
	return cache.Hash(data)
}
