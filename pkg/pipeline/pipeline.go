// Package pipeline turns declarative augmentation configs into executed
// runs: load inputs, apply the composed transform, write outputs.
//
// This package is the shared execution layer for the CLI and the HTTP
// service. By centralizing config parsing, caching, and sample
// generation here, every entry point behaves identically for the same
// definition and seed.
//
// # Architecture
//
// A run goes through three stages per sample:
//
//  1. Load: Read the input image (file or URL) and optional keypoints.
//  2. Apply: Draw per-sample random state and apply the transform tuple.
//  3. Encode: Serialize the augmented image and annotations.
//
// Samples are cached under a key derived from the pipeline hash, the
// seed, the input content hash, and the sample index, so re-running a
// config is free.
//
// # Usage
//
//	cfg, err := pipeline.LoadConfig("augment.toml")
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Config:  cfg,
//	    Inputs:  []string{"cat.png"},
//	    Samples: 8,
//	})
package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/morphkit/morph/pkg/imageio"
	"github.com/morphkit/morph/pkg/item"
)

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultSamples is the number of augmented variants per input.
	DefaultSamples = 1

	// DefaultFormat is the default output encoding.
	DefaultFormat = "png"

	// MaxSamples bounds variants per input to keep runs tractable.
	MaxSamples = 10000
)

// Options contains all configuration for an augmentation run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Config is the pipeline definition. Required.
	Config *Config `json:"config,omitempty"`

	// Inputs are image paths or http(s) URLs. Required.
	Inputs []string `json:"inputs,omitempty"`

	// Samples is the number of augmented variants per input.
	Samples int `json:"samples,omitempty"`

	// Seed overrides the config seed when non-zero.
	Seed uint64 `json:"seed,omitempty"`

	// Format is the output encoding: "png" or "jpeg".
	Format string `json:"format,omitempty"`

	// OutputDir, when set, writes each sample to disk.
	OutputDir string `json:"output_dir,omitempty"`

	// Keypoints loads a JSON sidecar next to each input and augments it
	// in the same tuple as the image.
	Keypoints bool `json:"keypoints,omitempty"`

	// Refresh bypasses the sample cache and overwrites entries.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a run.
type Result struct {
	// PipelineHash is the content hash of the pipeline definition.
	PipelineHash string

	// Seed is the seed the run actually used.
	Seed uint64

	// Samples holds the produced samples in generation order.
	Samples []Sample

	// Stats contains timing and count information.
	Stats Stats

	// CacheInfo aggregates cache behavior over the run.
	CacheInfo CacheInfo
}

// Sample is one augmented output.
type Sample struct {
	// Input is the source path or URL.
	Input string

	// Index is the global sample index within the run.
	Index int

	// Image is the encoded output image.
	Image []byte

	// Keypoints carries augmented annotations when requested.
	Keypoints *item.Keypoints

	// Cached reports whether the sample came from the cache.
	Cached bool

	// OutputPath is where the sample was written, empty without OutputDir.
	OutputPath string
}

// Stats contains run execution statistics.
type Stats struct {
	Inputs    int   `json:"inputs"`
	Samples   int   `json:"samples"`
	CacheHits int   `json:"cache_hits"`
	Duration  int64 `json:"duration_ns"`
}

// CacheInfo aggregates cache behavior over a run.
type CacheInfo struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// ValidateFormat checks that an output format is supported.
func ValidateFormat(format string) error {
	if _, err := imageio.ParseFormat(format); err != nil {
		return fmt.Errorf("invalid format: %q (must be png, jpeg, or jpg)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent, calling it twice has the same effect as
// calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Config == nil {
		return fmt.Errorf("config is required")
	}
	if len(o.Inputs) == 0 {
		return fmt.Errorf("at least one input is required")
	}

	if o.Samples == 0 {
		o.Samples = DefaultSamples
	}
	if o.Samples < 0 || o.Samples > MaxSamples {
		return fmt.Errorf("samples must be between 1 and %d, got %d", MaxSamples, o.Samples)
	}

	if o.Seed == 0 {
		o.Seed = o.Config.Seed
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}

	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// TotalSamples returns the number of samples the run will produce.
func (o *Options) TotalSamples() int {
	return len(o.Inputs) * o.Samples
}
