package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidecast/internal/ports"
)

func TestPutObject(t *testing.T) {
	root := t.TempDir()
	store := New(root, "https://cdn.example.com/videos/")

	out, err := store.PutObject(context.Background(), ports.PutObjectInput{
		ObjectKey:   "renders/video-abc.mp4",
		ContentType: "video/mp4",
		Reader:      strings.NewReader("mp4-bytes"),
	})
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}

	if out.Size != int64(len("mp4-bytes")) {
		t.Errorf("expected size %d, got %d", len("mp4-bytes"), out.Size)
	}
	if out.URL != "https://cdn.example.com/videos/renders/video-abc.mp4" {
		t.Errorf("unexpected URL %q", out.URL)
	}

	data, err := os.ReadFile(filepath.Join(root, "renders", "video-abc.mp4"))
	if err != nil {
		t.Fatalf("read stored object: %v", err)
	}
	if string(data) != "mp4-bytes" {
		t.Errorf("unexpected content %q", data)
	}

	entries, _ := os.ReadDir(filepath.Join(root, "renders"))
	if len(entries) != 1 {
		t.Errorf("expected only the object in the dir, got %d entries", len(entries))
	}
}

func TestPutObjectFileURL(t *testing.T) {
	root := t.TempDir()
	store := New(root, "")

	out, err := store.PutObject(context.Background(), ports.PutObjectInput{
		ObjectKey: "video.mp4",
		Reader:    strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if !strings.HasPrefix(out.URL, "file://") || !strings.HasSuffix(out.URL, "/video.mp4") {
		t.Errorf("expected file URL, got %q", out.URL)
	}
}

func TestPutObjectStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	store := New(root, "")

	_, err := store.PutObject(context.Background(), ports.PutObjectInput{
		ObjectKey: "../../escape.mp4",
		Reader:    strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.mp4")); err != nil {
		t.Errorf("expected object clamped under root: %v", err)
	}
}

func TestPutObjectRequiresKey(t *testing.T) {
	store := New(t.TempDir(), "")
	if _, err := store.PutObject(context.Background(), ports.PutObjectInput{Reader: strings.NewReader("x")}); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestDeleteObject(t *testing.T) {
	root := t.TempDir()
	store := New(root, "")
	ctx := context.Background()

	if _, err := store.PutObject(ctx, ports.PutObjectInput{ObjectKey: "a.mp4", Reader: strings.NewReader("x")}); err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if err := store.DeleteObject(ctx, "a.mp4"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if err := store.DeleteObject(ctx, "a.mp4"); err != nil {
		t.Errorf("deleting a missing object should not fail: %v", err)
	}
}
