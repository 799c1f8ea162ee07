package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"slidecast/internal/httpkit"
	"slidecast/internal/models"
)

var ErrJobNotFound = errors.New("job not found")
var ErrJobExists = errors.New("job id already exists")

// MaxErrorText bounds the stored failure message.
const MaxErrorText = 2000

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	name        TEXT,
	status      TEXT NOT NULL,
	stage       TEXT,
	images      TEXT[] NOT NULL,
	audio       TEXT NOT NULL,
	url         TEXT,
	error_text  TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	started_at  TIMESTAMPTZ,
	finished_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS jobs_status_created_idx ON jobs (status, created_at DESC);
`

type JobRepository struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db}
}

// Migrate creates the jobs table when missing.
func (r *JobRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

func (r *JobRepository) Create(ctx context.Context, j *models.Job) error {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	if j.Status == "" {
		j.Status = models.JobQueued
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO jobs (id, name, status, images, audio, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, j.ID, nullIfEmpty(j.Name), string(j.Status), j.Images, j.Audio, j.CreatedAt)
	if httpkit.IsUniqueViolation(err) {
		return ErrJobExists
	}
	return err
}

func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, COALESCE(name,''), status, COALESCE(stage,''), images, audio,
		       COALESCE(url,''), COALESCE(error_text,''), created_at, started_at, finished_at
		FROM jobs WHERE id=$1
	`, id)

	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}

// List returns the newest jobs first, optionally filtered by status.
func (r *JobRepository) List(ctx context.Context, status models.JobStatus, limit int) ([]models.Job, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, COALESCE(name,''), status, COALESCE(stage,''), images, audio,
		       COALESCE(url,''), COALESCE(error_text,''), created_at, started_at, finished_at
		FROM jobs
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Job, 0, limit)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	return r.exec(ctx,
		`UPDATE jobs SET status='RUNNING', stage=NULL, started_at=NOW(), finished_at=NULL, error_text=NULL WHERE id=$1`,
		id,
	)
}

func (r *JobRepository) SetStage(ctx context.Context, id, stage string) error {
	return r.exec(ctx, `UPDATE jobs SET stage=$2 WHERE id=$1`, id, stage)
}

func (r *JobRepository) MarkDone(ctx context.Context, id, url string) error {
	return r.exec(ctx,
		`UPDATE jobs SET status='DONE', url=$2, finished_at=NOW() WHERE id=$1`,
		id, url,
	)
}

func (r *JobRepository) MarkFailed(ctx context.Context, id, msg string) error {
	return r.exec(ctx,
		`UPDATE jobs SET status='FAILED', error_text=$2, finished_at=NOW() WHERE id=$1`,
		id, TruncateError(msg),
	)
}

func (r *JobRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// TruncateError cuts msg to MaxErrorText bytes without splitting a rune.
func TruncateError(msg string) string {
	if len(msg) <= MaxErrorText {
		return msg
	}
	cut := MaxErrorText
	for cut > 0 && !isRuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func scanJob(row pgx.Row) (*models.Job, error) {
	var (
		j      models.Job
		status string
	)
	err := row.Scan(
		&j.ID, &j.Name, &status, &j.Stage, &j.Images, &j.Audio,
		&j.URL, &j.Error, &j.CreatedAt, &j.StartedAt, &j.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Status = models.JobStatus(status)
	return &j, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
