package handlers

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"slidecast/internal/models"
	"slidecast/internal/pkg/logger"
	"slidecast/internal/ports"
	"slidecast/internal/render"
)

// Renderer runs a synchronous render.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (*render.Result, error)
}

// JobStore persists queued renders.
type JobStore interface {
	Create(ctx context.Context, j *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, status models.JobStatus, limit int) ([]models.Job, error)
	MarkFailed(ctx context.Context, id, msg string) error
}

// JobQueue hands job ids to the worker.
type JobQueue interface {
	Push(ctx context.Context, jobID string) error
}

type Deps struct {
	Renderer Renderer
	Jobs     JobStore
	Queue    JobQueue
	Store    ports.BlobStore
	// Pool and RDB are only used by the deep health check and may be nil.
	Pool *pgxpool.Pool
	RDB  *redis.Client
	Log  *logger.Logger
	// RenderTimeout bounds POST /render. Zero means the request context only.
	RenderTimeout time.Duration
}

type Handler struct {
	renderer      Renderer
	jobs          JobStore
	queue         JobQueue
	store         ports.BlobStore
	pool          *pgxpool.Pool
	rdb           *redis.Client
	log           *logger.Logger
	renderTimeout time.Duration
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{
		renderer:      d.Renderer,
		jobs:          d.Jobs,
		queue:         d.Queue,
		store:         d.Store,
		pool:          d.Pool,
		rdb:           d.RDB,
		log:           log.WithComponent("http"),
		renderTimeout: d.RenderTimeout,
	}
}

// Log is the handler logger, used by the router for error responses.
func (h *Handler) Log() *logger.Logger { return h.log }
