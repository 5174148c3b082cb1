package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/morphkit/morph/pkg/augment"
	"github.com/morphkit/morph/pkg/cache"
	"github.com/morphkit/morph/pkg/fetch"
	"github.com/morphkit/morph/pkg/imageio"
	"github.com/morphkit/morph/pkg/item"
	"github.com/morphkit/morph/pkg/observability"
	"github.com/morphkit/morph/pkg/track"
)

// Runner executes augmentation runs with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators. Multiple
// goroutines can safely share one Runner with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Fetcher  *fetch.Client
	Recorder track.Recorder
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Fetcher:  fetch.New(fetch.WithCache(c, keyer)),
		Recorder: track.NullRecorder{},
	}
}

// sampleEnvelope is the cached form of one sample: the encoded image
// plus any augmented annotations.
type sampleEnvelope struct {
	Image     []byte          `json:"image"`
	Keypoints *item.Keypoints `json:"keypoints,omitempty"`
}

// Execute runs the full pipeline over all inputs.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	tr, err := opts.Config.Build()
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	result := &Result{
		PipelineHash: opts.Config.Hash(),
		Seed:         opts.Seed,
		Samples:      make([]Sample, 0, opts.TotalSamples()),
	}

	start := time.Now()
	observability.Apply().OnRunStart(ctx, result.PipelineHash, opts.TotalSamples())

	runErr := r.generate(ctx, tr, opts, result)

	result.Stats.Inputs = len(opts.Inputs)
	result.Stats.Samples = len(result.Samples)
	result.Stats.CacheHits = result.CacheInfo.Hits
	result.Stats.Duration = int64(time.Since(start))

	observability.Apply().OnRunComplete(ctx, result.PipelineHash, len(result.Samples), time.Since(start), runErr)
	r.record(ctx, opts, result, runErr)

	if runErr != nil {
		return nil, runErr
	}

	opts.Logger.Info("run complete",
		"samples", len(result.Samples),
		"cache_hits", result.CacheInfo.Hits,
		"duration", time.Since(start))

	return result, nil
}

func (r *Runner) generate(ctx context.Context, tr augment.Transform, opts Options, result *Result) error {
	index := 0
	for _, input := range opts.Inputs {
		raw, err := r.loadInput(ctx, input)
		if err != nil {
			return fmt.Errorf("load %s: %w", input, err)
		}
		inputHash := cache.Hash(raw)

		var keypoints *item.Keypoints
		if opts.Keypoints {
			kp, err := loadSidecar(input)
			if err != nil {
				return fmt.Errorf("load keypoints for %s: %w", input, err)
			}
			keypoints = kp
		}

		for v := 0; v < opts.Samples; v++ {
			sample, err := r.oneSample(ctx, tr, opts, sampleSpec{
				input:     input,
				index:     index,
				raw:       raw,
				inputHash: inputHash,
				keypoints: keypoints,
			})
			if err != nil {
				return fmt.Errorf("sample %d (%s): %w", index, input, err)
			}

			if sample.Cached {
				result.CacheInfo.Hits++
			} else {
				result.CacheInfo.Misses++
			}
			result.Samples = append(result.Samples, sample)
			index++
		}
	}
	return nil
}

// sampleSpec carries everything needed to produce one sample.
type sampleSpec struct {
	input     string
	index     int
	raw       []byte
	inputHash string
	keypoints *item.Keypoints
}

func (r *Runner) oneSample(ctx context.Context, tr augment.Transform, opts Options, spec sampleSpec) (Sample, error) {
	start := time.Now()
	key := r.Keyer.SampleKey(opts.Config.Hash(), opts.Seed, spec.inputHash, cache.SampleKeyOpts{
		Index:  spec.index,
		Format: opts.Format,
	})

	sample := Sample{Input: spec.input, Index: spec.index}

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var env sampleEnvelope
			if err := json.Unmarshal(data, &env); err == nil {
				observability.Cache().OnCacheHit(ctx, "sample")
				sample.Image = env.Image
				sample.Keypoints = env.Keypoints
				sample.Cached = true

				if err := r.writeSample(opts, &sample); err != nil {
					return Sample{}, err
				}
				observability.Apply().OnSampleComplete(ctx, opts.Config.Hash(), spec.index, true, time.Since(start), nil)
				return sample, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "sample")
	}

	env, err := r.computeSample(tr, opts, spec)
	if err != nil {
		observability.Apply().OnSampleComplete(ctx, opts.Config.Hash(), spec.index, false, time.Since(start), err)
		return Sample{}, err
	}

	if data, err := json.Marshal(env); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLSample); err == nil {
			observability.Cache().OnCacheSet(ctx, "sample", len(data))
		}
	}

	sample.Image = env.Image
	sample.Keypoints = env.Keypoints
	if err := r.writeSample(opts, &sample); err != nil {
		return Sample{}, err
	}

	observability.Apply().OnSampleComplete(ctx, opts.Config.Hash(), spec.index, false, time.Since(start), nil)
	return sample, nil
}

// computeSample decodes, augments, and re-encodes one sample. The
// per-sample generator is seeded from (run seed, sample index) so every
// sample gets an independent, reproducible stream.
func (r *Runner) computeSample(tr augment.Transform, opts Options, spec sampleSpec) (sampleEnvelope, error) {
	img, err := imageio.LoadBytes(spec.raw)
	if err != nil {
		return sampleEnvelope{}, err
	}

	items := []augment.Item{img}
	if spec.keypoints != nil {
		items = append(items, *spec.keypoints)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, uint64(spec.index)))
	out, err := augment.ApplyAll(rng, tr, items...)
	if err != nil {
		return sampleEnvelope{}, err
	}

	outImg, ok := out[0].(item.Image)
	if !ok {
		return sampleEnvelope{}, fmt.Errorf("pipeline produced %T, want an image", out[0])
	}

	format, _ := imageio.ParseFormat(opts.Format)
	encoded, err := imageio.EncodeBytes(outImg, format)
	if err != nil {
		return sampleEnvelope{}, err
	}

	env := sampleEnvelope{Image: encoded}
	if spec.keypoints != nil {
		outKP, ok := out[1].(item.Keypoints)
		if !ok {
			return sampleEnvelope{}, fmt.Errorf("pipeline produced %T, want keypoints", out[1])
		}
		env.Keypoints = &outKP
	}
	return env, nil
}

// writeSample persists one sample under OutputDir, if configured.
func (r *Runner) writeSample(opts Options, sample *Sample) error {
	if opts.OutputDir == "" {
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(sample.Input), filepath.Ext(sample.Input))
	ext := opts.Format
	if ext == "jpeg" {
		ext = "jpg"
	}
	path := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_%04d.%s", base, sample.Index, ext))

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, sample.Image, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	sample.OutputPath = path

	if sample.Keypoints != nil {
		if err := imageio.SaveKeypoints(imageio.SidecarPath(path), *sample.Keypoints); err != nil {
			return err
		}
	}
	return nil
}

// loadInput reads input bytes from disk or, for http(s) URLs, through
// the fetch client.
func (r *Runner) loadInput(ctx context.Context, input string) ([]byte, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return r.Fetcher.Get(ctx, input)
	}
	return os.ReadFile(input)
}

// loadSidecar reads the keypoints sidecar next to an input image.
// Missing sidecars are not an error; the sample simply has no
// annotations.
func loadSidecar(input string) (*item.Keypoints, error) {
	path := imageio.SidecarPath(input)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	kp, err := imageio.LoadKeypoints(path)
	if err != nil {
		return nil, err
	}
	return &kp, nil
}

// record persists the run record through the configured recorder.
// Tracking failures are logged, never fatal.
func (r *Runner) record(ctx context.Context, opts Options, result *Result, runErr error) {
	if r.Recorder == nil {
		return
	}

	rec := track.NewRecord(result.PipelineHash, opts.Seed)
	rec.Samples = len(result.Samples)
	rec.CacheHits = result.CacheInfo.Hits
	rec.Duration = time.Duration(result.Stats.Duration)
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if err := r.Recorder.Save(ctx, rec); err != nil {
		opts.Logger.Warn("failed to record run", "err", err)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
