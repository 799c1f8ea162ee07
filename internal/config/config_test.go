package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		ConfigPathEnv,
		"RENDER_SEGMENT_SECONDS", "RENDER_CROSSFADE_SECONDS", "RENDER_SIZE",
		"RENDER_TRANSITION", "RENDER_FPS", "RENDER_IMAGE_EXT", "RENDER_AUDIO_EXT",
		"FFMPEG_BINARY", "FFMPEG_LOGLEVEL", "WORK_DIR", "OUTPUT_KEY_PREFIX",
		"FETCH_USER_AGENT", "FETCH_TIMEOUT_SECONDS",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE",
		"STORAGE_PROVIDER", "STORAGE_BUCKET", "GCS_BUCKET_NAME", "S3_BUCKET",
		"STORAGE_PUBLIC_BASE_URL", "GCS_KEY_JSON", "STORAGE_LOCAL_ROOT",
		"S3_REGION", "AWS_REGION", "S3_ENDPOINT", "S3_PATH_STYLE",
		"GDRIVE_CLIENT_ID", "GDRIVE_CLIENT_SECRET", "GDRIVE_REFRESH_TOKEN", "GDRIVE_FOLDER_ID",
		"HTTP_PORT", "DATABASE_URL", "REDIS_ADDR", "JOB_QUEUE_NAME", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultTiming(t *testing.T) {
	cfg := Default()
	cfg.Storage.Bucket = "renders"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	timing := cfg.Timing()
	if got := timing.Offsets(); !reflect.DeepEqual(got, []float64{11, 22, 33, 44}) {
		t.Errorf("offsets = %v", got)
	}
	if timing.Size != 1080 || timing.Transition != "fade" {
		t.Errorf("unexpected timing %+v", timing)
	}

	settings := cfg.EncodeSettings()
	if settings.FrameRate != 30 || settings.VideoCodec != "libx264" || settings.PixelFormat != "yuv420p" {
		t.Errorf("unexpected settings %+v", settings)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_PROVIDER", "S3")
	t.Setenv("S3_BUCKET", "clips")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("RENDER_SEGMENT_SECONDS", "5, 5, 5, 5, 5")
	t.Setenv("RENDER_IMAGE_EXT", "png")
	t.Setenv("OUTPUT_KEY_PREFIX", "/videos")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "20")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Provider != "s3" || cfg.Storage.Bucket != "clips" || cfg.Storage.S3Region != "eu-west-1" {
		t.Errorf("unexpected storage %+v", cfg.Storage)
	}
	if !reflect.DeepEqual(cfg.Render.SegmentSeconds, []float64{5, 5, 5, 5, 5}) {
		t.Errorf("segments = %v", cfg.Render.SegmentSeconds)
	}
	if cfg.Render.ImageExt != ".png" {
		t.Errorf("image ext = %q", cfg.Render.ImageExt)
	}
	if cfg.Render.KeyPrefix != "videos" {
		t.Errorf("key prefix = %q", cfg.Render.KeyPrefix)
	}
	if cfg.FetchTimeout().Seconds() != 20 {
		t.Errorf("fetch timeout = %v", cfg.FetchTimeout())
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_PROVIDER", "localfs")
	t.Setenv("STORAGE_LOCAL_ROOT", t.TempDir())

	path := filepath.Join(t.TempDir(), "slidecast.toml")
	content := `
[render]
segment_seconds = [6, 6, 6, 6, 6]
crossfade_seconds = 0.5
frame_rate = 25
faststart = true

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RENDER_FPS", "24")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != path {
		t.Errorf("source = %q", cfg.Source)
	}
	if cfg.Render.CrossfadeSeconds != 0.5 || !cfg.Render.FastStart {
		t.Errorf("file values not applied: %+v", cfg.Render)
	}
	if cfg.Render.FrameRate != 24 {
		t.Errorf("env should win over file, frame rate = %d", cfg.Render.FrameRate)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Render.Size != 1080 {
		t.Errorf("unset keys keep defaults, size = %d", cfg.Render.Size)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown key",
			file:    "[render]\nsegments = [1]\n",
			env:     map[string]string{"STORAGE_PROVIDER": "localfs", "STORAGE_LOCAL_ROOT": "/tmp"},
			wantErr: "parse config",
		},
		{
			name:    "wrong segment count",
			file:    "[render]\nsegment_seconds = [12, 12, 12, 11]\n",
			env:     map[string]string{"STORAGE_PROVIDER": "localfs", "STORAGE_LOCAL_ROOT": "/tmp"},
			wantErr: "must have 5 entries",
		},
		{
			name:    "crossfade too long",
			file:    "[render]\ncrossfade_seconds = 20\n",
			env:     map[string]string{"STORAGE_PROVIDER": "localfs", "STORAGE_LOCAL_ROOT": "/tmp"},
			wantErr: "render timing",
		},
		{
			name:    "gcs without bucket",
			env:     map[string]string{"STORAGE_PROVIDER": "gcs"},
			wantErr: "GCS_BUCKET_NAME",
		},
		{
			name:    "gdrive without token",
			env:     map[string]string{"STORAGE_PROVIDER": "gdrive", "GDRIVE_CLIENT_ID": "id", "GDRIVE_CLIENT_SECRET": "secret"},
			wantErr: "GDRIVE_REFRESH_TOKEN",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"STORAGE_PROVIDER": "ftp"},
			wantErr: "unknown storage provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var path string
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), "slidecast.toml")
				if err := os.WriteFile(path, []byte(tt.file), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected %q in %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_PROVIDER", "localfs")
	t.Setenv("STORAGE_LOCAL_ROOT", t.TempDir())
	missing := filepath.Join(t.TempDir(), "nope.toml")

	if _, err := Load(missing); err == nil {
		t.Error("explicit missing file should fail")
	}

	t.Setenv(ConfigPathEnv, missing)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing file from env should be ignored: %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("source = %q", cfg.Source)
	}
}

func TestFloatsEnvFallsBack(t *testing.T) {
	t.Setenv("X_FLOATS", "1,two,3")
	got := FloatsEnv("X_FLOATS", []float64{9})
	if !reflect.DeepEqual(got, []float64{9}) {
		t.Errorf("got %v", got)
	}
}

func TestFFmpegVerbose(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"error", false},
		{"quiet", false},
		{"", false},
		{"warning", true},
		{"INFO", true},
		{"debug", true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Default()
			cfg.Render.FFmpegLogLevel = tt.level
			if got := cfg.FFmpegVerbose(); got != tt.want {
				t.Errorf("FFmpegVerbose(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}
