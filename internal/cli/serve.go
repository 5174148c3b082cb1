package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/morphkit/morph/pkg/buildinfo"
	morpherrors "github.com/morphkit/morph/pkg/errors"
	"github.com/morphkit/morph/pkg/pipeline"
)

// maxUploadBytes bounds the multipart request body for /v1/apply.
const maxUploadBytes = 32 << 20

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		backends backendFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the augmentation pipeline over HTTP",
		Long: `Serve the augmentation pipeline over HTTP.

Endpoints:
  GET  /healthz    liveness probe with version info
  POST /v1/apply   multipart upload: an "image" file plus a "config"
                   TOML pipeline definition; optional "seed", "sample",
                   and "format" fields. Responds with the augmented
                   image.

The service shares the sample cache with the CLI, so identical requests
are served from cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, backends)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	backends.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, backends backendFlags) error {
	runner, err := c.newRunner(ctx, backends)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(runner, c.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// server bundles the handler dependencies.
type server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

func newRouter(runner *pipeline.Runner, logger *log.Logger) http.Handler {
	s := &server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/apply", s.handleApply)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleApply augments one uploaded image with an uploaded pipeline
// definition and returns the augmented image.
func (s *server) handleApply(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, morpherrors.New(morpherrors.ErrCodeInvalidInput, "invalid multipart request: %v", err))
		return
	}

	opts, tmpDir, err := s.parseApplyRequest(r)
	if tmpDir != "" {
		defer os.RemoveAll(tmpDir)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.logger.Warn("apply failed", "err", err)
		writeError(w, morpherrors.Wrap(morpherrors.ErrCodeInternal, err, "pipeline execution failed"))
		return
	}

	sample := result.Samples[len(result.Samples)-1]
	s.logger.Info("applied pipeline",
		"hash", result.PipelineHash[:16],
		"cached", sample.Cached,
		"bytes", len(sample.Image))

	contentType := "image/png"
	if opts.Format == "jpeg" || opts.Format == "jpg" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Pipeline-Hash", result.PipelineHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(sample.Image)
}

// parseApplyRequest turns the multipart form into pipeline options. The
// uploaded image is staged in a temp dir so the runner's path-based
// loading and caching applies unchanged.
func (s *server) parseApplyRequest(r *http.Request) (pipeline.Options, string, error) {
	configData := []byte(r.FormValue("config"))
	if len(configData) == 0 {
		f, _, err := r.FormFile("config")
		if err != nil {
			return pipeline.Options{}, "", morpherrors.New(morpherrors.ErrCodeInvalidPipeline, "missing pipeline config")
		}
		defer f.Close()
		if configData, err = io.ReadAll(f); err != nil {
			return pipeline.Options{}, "", morpherrors.Wrap(morpherrors.ErrCodeInvalidPipeline, err, "read config")
		}
	}

	cfg, err := pipeline.ParseConfig(configData)
	if err != nil {
		return pipeline.Options{}, "", morpherrors.Wrap(morpherrors.ErrCodeInvalidPipeline, err, "parse config")
	}
	if _, err := cfg.Build(); err != nil {
		return pipeline.Options{}, "", morpherrors.Wrap(morpherrors.ErrCodeInvalidStep, err, "build pipeline")
	}

	img, header, err := r.FormFile("image")
	if err != nil {
		return pipeline.Options{}, "", morpherrors.New(morpherrors.ErrCodeInvalidInput, "missing image upload")
	}
	defer img.Close()

	tmpDir, err := os.MkdirTemp("", "morph-serve-")
	if err != nil {
		return pipeline.Options{}, "", morpherrors.Wrap(morpherrors.ErrCodeInternal, err, "stage upload")
	}

	name := filepath.Base(header.Filename)
	if name == "" || name == "." {
		name = "upload.png"
	}
	path := filepath.Join(tmpDir, name)

	out, err := os.Create(path)
	if err != nil {
		return pipeline.Options{}, tmpDir, morpherrors.Wrap(morpherrors.ErrCodeInternal, err, "stage upload")
	}
	if _, err := io.Copy(out, img); err != nil {
		out.Close()
		return pipeline.Options{}, tmpDir, morpherrors.Wrap(morpherrors.ErrCodeInternal, err, "stage upload")
	}
	out.Close()

	opts := pipeline.Options{
		Config: cfg,
		Inputs: []string{path},
		Format: r.FormValue("format"),
	}

	if v := r.FormValue("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return pipeline.Options{}, tmpDir, morpherrors.New(morpherrors.ErrCodeInvalidSeed, "invalid seed %q", v)
		}
		opts.Seed = seed
	}

	// "sample" selects which draw to return; the runner produces draws
	// 0..sample and the handler returns the last one.
	if v := r.FormValue("sample"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n >= pipeline.MaxSamples {
			return pipeline.Options{}, tmpDir, morpherrors.New(morpherrors.ErrCodeInvalidInput, "invalid sample index %q", v)
		}
		opts.Samples = n + 1
	}

	if opts.Format != "" {
		if err := pipeline.ValidateFormat(opts.Format); err != nil {
			return pipeline.Options{}, tmpDir, morpherrors.Wrap(morpherrors.ErrCodeInvalidFormat, err, "invalid format")
		}
	}

	return opts, tmpDir, nil
}

// errorResponse is the JSON error envelope for API clients.
type errorResponse struct {
	Code    morpherrors.Code `json:"code"`
	Message string           `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := morpherrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case morpherrors.ErrCodeInvalidPipeline, morpherrors.ErrCodeInvalidStep,
		morpherrors.ErrCodeInvalidInput, morpherrors.ErrCodeInvalidFormat,
		morpherrors.ErrCodeInvalidSeed:
		status = http.StatusBadRequest
	case morpherrors.ErrCodeNotFound, morpherrors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case morpherrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	if code == "" {
		code = morpherrors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: code, Message: morpherrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
