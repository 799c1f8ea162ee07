package repositories

import (
	"context"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"

	"slidecast/internal/models"
	"slidecast/internal/pkg/ids"
)

func TestTruncateError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"short", "boom", 4},
		{"exact", strings.Repeat("a", MaxErrorText), MaxErrorText},
		{"long", strings.Repeat("a", MaxErrorText+10), MaxErrorText},
		{"multibyte boundary", strings.Repeat("a", MaxErrorText-1) + "é", MaxErrorText - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateError(tt.in)
			if len(got) != tt.want {
				t.Errorf("expected %d bytes, got %d", tt.want, len(got))
			}
			if !utf8.ValidString(got) {
				t.Error("truncated text is not valid UTF-8")
			}
		})
	}
}

// TestJobRepositoryRoundTrip needs a live Postgres in DATABASE_URL.
func TestJobRepositoryRoundTrip(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	repo := NewJobRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	job := &models.Job{
		ID:     ids.NewID("job"),
		Images: []string{"a", "b", "c", "d", "e"},
		Audio:  "f",
	}
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.MarkRunning(ctx, job.ID); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	if err := repo.SetStage(ctx, job.ID, "encoding"); err != nil {
		t.Fatalf("SetStage: %v", err)
	}
	if err := repo.MarkDone(ctx, job.ID, "https://example.com/v.mp4"); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}

	got, err := repo.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.JobDone || got.URL != "https://example.com/v.mp4" || got.Stage != "encoding" {
		t.Errorf("unexpected job %+v", got)
	}
	if len(got.Images) != 5 {
		t.Errorf("expected 5 images, got %v", got.Images)
	}

	if _, err := repo.Get(ctx, "job_missing"); err != ErrJobNotFound {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}
