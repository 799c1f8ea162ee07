package processor

import (
	"context"

	"slidecast/internal/models"
	"slidecast/internal/pkg/errors"
	"slidecast/internal/pkg/logger"
	"slidecast/internal/render"
	"slidecast/internal/repositories"
)

// JobStore is the part of the job repository the processor needs.
type JobStore interface {
	Get(ctx context.Context, id string) (*models.Job, error)
	MarkRunning(ctx context.Context, id string) error
	SetStage(ctx context.Context, id, stage string) error
	MarkDone(ctx context.Context, id, url string) error
	MarkFailed(ctx context.Context, id, msg string) error
}

// Renderer runs one render attempt.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (*render.Result, error)
}

type Deps struct {
	Jobs     JobStore
	Renderer Renderer
	Log      *logger.Logger
}

type Processor struct {
	jobs     JobStore
	renderer Renderer
	log      *logger.Logger
}

func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Processor{
		jobs:     d.Jobs,
		renderer: d.Renderer,
		log:      log.WithComponent("processor"),
	}
}

// ProcessJob renders one queued job and records the outcome. The render is
// attempted once; a failed job stays FAILED.
func (p *Processor) ProcessJob(ctx context.Context, jobID string) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	job, err := p.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return errors.NotFound("job", jobID)
		}
		return errors.WrapWithCode(err, errors.CodeUnavailable, "processor.fetch", "failed to load job")
	}
	if job.Terminal() {
		log.Info("job already finished, skipping", "status", string(job.Status))
		return nil
	}

	if err := p.jobs.MarkRunning(ctx, jobID); err != nil {
		return p.failJob(ctx, jobID, errors.Wrap(err, "processor.status", "failed to mark job as running"))
	}

	rctx := render.WithObserver(ctx, func(attemptID string, s render.State) {
		if s.Terminal() {
			return
		}
		if err := p.jobs.SetStage(ctx, jobID, string(s)); err != nil {
			log.Warn("stage update failed", "stage", string(s), "error", err.Error())
		}
	})

	log.Info("starting render")
	res, err := p.renderer.Render(rctx, render.Request{
		Images: job.Images,
		Audio:  job.Audio,
		Name:   job.Name,
	})
	if err != nil {
		return p.failJob(ctx, jobID, errors.Wrap(err, "processor.render", "render failed"))
	}

	if err := p.jobs.MarkDone(context.WithoutCancel(ctx), jobID, res.URL); err != nil {
		return errors.Wrap(err, "processor.status", "failed to mark job as done")
	}
	log.Info("job done", "url", res.URL, "attempt_id", res.AttemptID)
	return nil
}

func (p *Processor) failJob(ctx context.Context, jobID string, cause error) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	var sErr *errors.Error
	if errors.As(cause, &sErr) {
		log.Error("job failed",
			"code", string(sErr.Code),
			"op", sErr.Op,
			"message", sErr.Message,
			"error", cause.Error(),
		)
	} else {
		log.Error("job failed", "error", cause.Error())
	}

	// Record the failure even when the worker is shutting down.
	if err := p.jobs.MarkFailed(context.WithoutCancel(ctx), jobID, cause.Error()); err != nil {
		log.Warn("could not record job failure", "error", err.Error())
	}
	return cause
}
