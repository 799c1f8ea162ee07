// Package app wires the render pipeline from configuration. The api, worker
// and CLI entry points share it.
package app

import (
	"context"
	"fmt"
	"os"

	"slidecast/internal/config"
	"slidecast/internal/ffmpeg"
	"slidecast/internal/pkg/logger"
	"slidecast/internal/render"
	"slidecast/internal/storage"
)

// Pipeline is a ready to use renderer and the store it publishes to.
type Pipeline struct {
	Renderer *render.Orchestrator
	Encoder  *ffmpeg.Encoder
	Runner   *ffmpeg.ExecRunner
	Store    storage.Provider
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg *config.Config, service string) *logger.Logger {
	return logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		AddSource:   cfg.Logging.AddSource,
		ServiceName: service,
	})
}

// NewPipeline connects the configured blob store and builds the orchestrator.
// obs may be nil.
func NewPipeline(ctx context.Context, cfg *config.Config, log *logger.Logger, obs render.Observer) (*Pipeline, error) {
	store, err := storage.NewProvider(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage provider: %w", err)
	}

	if err := os.MkdirAll(cfg.Render.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("work dir: %w", err)
	}

	runner := &ffmpeg.ExecRunner{Binary: cfg.Render.FFmpegBinary}
	if cfg.FFmpegVerbose() {
		runner.Log = log.WithComponent("ffmpeg")
	}
	encoder := ffmpeg.NewEncoder(
		runner,
		cfg.Timing(),
		cfg.EncodeSettings(),
	)

	orch := render.NewOrchestrator(
		render.NewHTTPFetcher(cfg.Fetch.UserAgent, cfg.FetchTimeout()),
		encoder,
		render.NewBlobPublisher(store),
		render.Options{
			Timing:    cfg.Timing(),
			WorkDir:   cfg.Render.WorkDir,
			ImageExt:  cfg.Render.ImageExt,
			AudioExt:  cfg.Render.AudioExt,
			KeyPrefix: cfg.Render.KeyPrefix,
			Observer:  obs,
			Logger:    log,
		},
	)

	log.Info("render pipeline ready",
		"provider", store.Provider(),
		"work_dir", cfg.Render.WorkDir,
		"ffmpeg", cfg.Render.FFmpegBinary,
	)
	return &Pipeline{Renderer: orch, Encoder: encoder, Runner: runner, Store: store}, nil
}
