package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	v1 "slidecast/internal/contracts/render/v1"
	"slidecast/internal/httpkit"
	"slidecast/internal/models"
	"slidecast/internal/pkg/errors"
	"slidecast/internal/pkg/ids"
	"slidecast/internal/repositories"
)

// PostJob validates and queues a render for the worker.
func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) error {
	if h.jobs == nil || h.queue == nil {
		return errors.New(errors.CodeUnavailable, "job queue is not configured")
	}
	ctx := r.Context()

	var req v1.RenderRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		return errors.WrapWithCode(err, errors.CodeBadRequest, "http.jobs", "invalid json body")
	}
	if err := req.ToRequest().Validate(); err != nil {
		return err
	}

	job := &models.Job{
		ID:        ids.NewID("job"),
		Name:      strings.TrimSpace(req.Name),
		Status:    models.JobQueued,
		Images:    req.Images,
		Audio:     req.Audio,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.jobs.Create(ctx, job); err != nil {
		if httpkit.IsUndefinedTable(err) {
			return errors.WrapWithCode(err, errors.CodeUnavailable, "http.jobs", "jobs table missing, run migrations")
		}
		return errors.Wrap(err, "http.jobs", "db insert failed")
	}

	if err := h.queue.Push(ctx, job.ID); err != nil {
		// Nothing will ever pop this job, so it must not stay QUEUED.
		if ferr := h.jobs.MarkFailed(context.WithoutCancel(ctx), job.ID, "queue push failed: "+err.Error()); ferr != nil {
			h.log.FromContext(ctx).Warn("could not record job failure", "job_id", job.ID, "error", ferr.Error())
		}
		return errors.WrapWithCode(err, errors.CodeUnavailable, "http.jobs", "queue push failed").
			WithField("job_id", job.ID)
	}

	h.log.FromContext(ctx).Info("job queued", "job_id", job.ID)
	httpkit.WriteJSON(w, http.StatusAccepted, map[string]any{"job": job})
	return nil
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) error {
	if h.jobs == nil {
		return errors.New(errors.CodeUnavailable, "job store is not configured")
	}

	status := models.JobStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	switch status {
	case "", models.JobQueued, models.JobRunning, models.JobDone, models.JobFailed:
	default:
		return errors.ValidationField("status", "unknown status "+string(status))
	}

	limit := 50
	if v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit"))); err == nil && v > 0 && v <= 200 {
		limit = v
	}

	jobs, err := h.jobs.List(r.Context(), status, limit)
	if err != nil {
		return errors.Wrap(err, "http.jobs", "db query failed")
	}

	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
	return nil
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) error {
	if h.jobs == nil {
		return errors.New(errors.CodeUnavailable, "job store is not configured")
	}
	jobID := chi.URLParam(r, "jobId")

	job, err := h.jobs.Get(r.Context(), jobID)
	if errors.Is(err, repositories.ErrJobNotFound) {
		return errors.NotFound("job", jobID)
	}
	if err != nil {
		return errors.Wrap(err, "http.jobs", "db query failed")
	}

	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"job": job})
	return nil
}
