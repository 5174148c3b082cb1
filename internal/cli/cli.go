// Package cli implements the morph command-line interface.
//
// This package provides commands for running augmentation pipelines over
// image datasets, inspecting composed pipelines, previewing random
// draws, serving the pipeline over HTTP, and managing the sample cache.
// The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - apply: Run a pipeline config over input images
//   - inspect: Show the composed pipeline, optionally as DOT or SVG
//   - preview: Interactively step through random draws for one input
//   - serve: Expose the pipeline as an HTTP service
//   - cache: Manage the sample cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context for structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/morphkit/morph/pkg/buildinfo"
	"github.com/morphkit/morph/pkg/cache"
	"github.com/morphkit/morph/pkg/pipeline"
	"github.com/morphkit/morph/pkg/track"
)

// appName is the application name used for directories and display.
const appName = "morph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "morph",
		Short:        "Morph augments image datasets with composable transforms",
		Long:         `Morph is a CLI tool for data augmentation: it composes flips, rotations, crops, and random choices into reproducible pipelines and applies them to images with their annotations.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.applyCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// backendFlags selects the cache and tracking backends for a command.
type backendFlags struct {
	noCache   bool
	cacheDir  string
	redisAddr string
	trackURI  string
}

// register adds the shared backend flags to cmd.
func (f *backendFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the sample cache")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "cache directory (default ~/.cache/morph)")
	cmd.Flags().StringVar(&f.redisAddr, "redis", "", "redis address for a shared cache (host:port)")
	cmd.Flags().StringVar(&f.trackURI, "track-uri", "", "mongodb URI for run tracking")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, flags backendFlags) (*pipeline.Runner, error) {
	store, err := newCache(ctx, flags)
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(store, nil, c.Logger)

	if flags.trackURI != "" {
		rec, err := track.NewMongoRecorder(ctx, flags.trackURI)
		if err != nil {
			return nil, err
		}
		runner.Recorder = rec
	}
	return runner, nil
}

func newCache(ctx context.Context, flags backendFlags) (cache.Cache, error) {
	if flags.noCache {
		return cache.NewNullCache(), nil
	}
	if flags.redisAddr != "" {
		return cache.NewRedisCache(ctx, flags.redisAddr)
	}

	dir := flags.cacheDir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/morph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
