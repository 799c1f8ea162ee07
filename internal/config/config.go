// Package config builds the process configuration once at startup. Values
// come from defaults, then an optional TOML file, then the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"slidecast/internal/ffmpeg"
)

// ConfigPathEnv names the env var that points at the optional TOML file.
const ConfigPathEnv = "SLIDECAST_CONFIG"

// Render holds the render policy: timing, output format and staging names.
type Render struct {
	SegmentSeconds   []float64 `toml:"segment_seconds"`
	CrossfadeSeconds float64   `toml:"crossfade_seconds"`
	Size             int       `toml:"size"`
	Transition       string    `toml:"transition"`
	FrameRate        int       `toml:"frame_rate"`
	VideoCodec       string    `toml:"video_codec"`
	PixelFormat      string    `toml:"pixel_format"`
	FastStart        bool      `toml:"faststart"`
	ImageExt         string    `toml:"image_ext"`
	AudioExt         string    `toml:"audio_ext"`
	FFmpegBinary     string    `toml:"ffmpeg_binary"`
	FFmpegLogLevel   string    `toml:"ffmpeg_loglevel"`
	WorkDir          string    `toml:"work_dir"`
	KeyPrefix        string    `toml:"key_prefix"`
}

// Fetch configures asset downloads.
type Fetch struct {
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging configures the slog handler.
type Logging struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"`
	AddSource bool   `toml:"add_source"`
}

// GDrive holds OAuth client credentials for the Drive provider.
type GDrive struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	FolderID     string
}

// Storage selects and configures the blob store. Credentials never come from
// the TOML file.
type Storage struct {
	Provider      string
	Bucket        string
	PublicBaseURL string
	GCSKeyJSON    string
	LocalRoot     string
	S3Region      string
	S3Endpoint    string
	S3PathStyle   bool
	GDrive        GDrive
}

// Server holds settings for the api and worker processes.
type Server struct {
	HTTPPort    string
	DatabaseURL string
	RedisAddr   string
	QueueName   string
	CORSOrigins []string
}

// Config is the full process configuration.
type Config struct {
	Render  Render  `toml:"render"`
	Fetch   Fetch   `toml:"fetch"`
	Logging Logging `toml:"logging"`
	Storage Storage `toml:"-"`
	Server  Server  `toml:"-"`

	// Source is the TOML file that was loaded, if any.
	Source string `toml:"-"`
}

// Default returns the built-in configuration: five segments of 12,12,12,12,11
// seconds with a one second fade at 1080x1080 and 30 fps.
func Default() *Config {
	return &Config{
		Render: Render{
			SegmentSeconds:   []float64{12, 12, 12, 12, 11},
			CrossfadeSeconds: 1,
			Size:             1080,
			Transition:       "fade",
			FrameRate:        30,
			VideoCodec:       "libx264",
			PixelFormat:      "yuv420p",
			ImageExt:         ".jpg",
			AudioExt:         ".ogg",
			FFmpegBinary:     "ffmpeg",
			FFmpegLogLevel:   "error",
			WorkDir:          os.TempDir(),
		},
		Fetch: Fetch{
			UserAgent:      "Mozilla/5.0",
			TimeoutSeconds: 0,
		},
		Logging: Logging{
			Level: "info",
		},
		Storage: Storage{
			Provider: "gcs",
		},
		Server: Server{
			HTTPPort:  "8000",
			QueueName: "slidecast:jobs",
			CORSOrigins: []string{
				"http://localhost:5173",
			},
		},
	}
}

// Load builds the configuration. path may be empty, in which case
// SLIDECAST_CONFIG is consulted; a missing file is only an error when the
// path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = Env(ConfigPathEnv, "")
		explicit = path != ""
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) && !explicit {
				path = ""
			} else {
				return nil, err
			}
		}
		cfg.Source = path
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	r := &c.Render
	r.SegmentSeconds = FloatsEnv("RENDER_SEGMENT_SECONDS", r.SegmentSeconds)
	r.CrossfadeSeconds = FloatEnv("RENDER_CROSSFADE_SECONDS", r.CrossfadeSeconds)
	r.Size = IntEnv("RENDER_SIZE", r.Size)
	r.Transition = Env("RENDER_TRANSITION", r.Transition)
	r.FrameRate = IntEnv("RENDER_FPS", r.FrameRate)
	r.ImageExt = Env("RENDER_IMAGE_EXT", r.ImageExt)
	r.AudioExt = Env("RENDER_AUDIO_EXT", r.AudioExt)
	r.FFmpegBinary = Env("FFMPEG_BINARY", r.FFmpegBinary)
	r.FFmpegLogLevel = Env("FFMPEG_LOGLEVEL", r.FFmpegLogLevel)
	r.WorkDir = Env("WORK_DIR", r.WorkDir)
	r.KeyPrefix = Env("OUTPUT_KEY_PREFIX", r.KeyPrefix)

	c.Fetch.UserAgent = Env("FETCH_USER_AGENT", c.Fetch.UserAgent)
	c.Fetch.TimeoutSeconds = IntEnv("FETCH_TIMEOUT_SECONDS", c.Fetch.TimeoutSeconds)

	c.Logging.Level = Env("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = Env("LOG_FORMAT", c.Logging.Format)
	c.Logging.AddSource = BoolEnv("LOG_SOURCE", c.Logging.AddSource)

	s := &c.Storage
	s.Provider = Env("STORAGE_PROVIDER", s.Provider)
	s.Bucket = firstNonEmpty(Env("STORAGE_BUCKET", ""), Env("GCS_BUCKET_NAME", ""), Env("S3_BUCKET", ""), s.Bucket)
	s.PublicBaseURL = Env("STORAGE_PUBLIC_BASE_URL", s.PublicBaseURL)
	s.GCSKeyJSON = Env("GCS_KEY_JSON", s.GCSKeyJSON)
	s.LocalRoot = Env("STORAGE_LOCAL_ROOT", s.LocalRoot)
	s.S3Region = Env("S3_REGION", Env("AWS_REGION", s.S3Region))
	s.S3Endpoint = Env("S3_ENDPOINT", s.S3Endpoint)
	s.S3PathStyle = BoolEnv("S3_PATH_STYLE", s.S3PathStyle)
	s.GDrive.ClientID = Env("GDRIVE_CLIENT_ID", s.GDrive.ClientID)
	s.GDrive.ClientSecret = Env("GDRIVE_CLIENT_SECRET", s.GDrive.ClientSecret)
	s.GDrive.RefreshToken = Env("GDRIVE_REFRESH_TOKEN", s.GDrive.RefreshToken)
	s.GDrive.FolderID = Env("GDRIVE_FOLDER_ID", s.GDrive.FolderID)

	sv := &c.Server
	sv.HTTPPort = Env("HTTP_PORT", sv.HTTPPort)
	sv.DatabaseURL = Env("DATABASE_URL", sv.DatabaseURL)
	sv.RedisAddr = Env("REDIS_ADDR", sv.RedisAddr)
	sv.QueueName = Env("JOB_QUEUE_NAME", sv.QueueName)
	sv.CORSOrigins = CSVEnv("CORS_ALLOWED_ORIGINS", sv.CORSOrigins)
}

func (c *Config) normalize() {
	c.Render.ImageExt = normalizeExt(c.Render.ImageExt)
	c.Render.AudioExt = normalizeExt(c.Render.AudioExt)
	c.Render.KeyPrefix = strings.TrimLeft(c.Render.KeyPrefix, "/")
	c.Storage.Provider = strings.ToLower(strings.TrimSpace(c.Storage.Provider))
	c.Storage.PublicBaseURL = strings.TrimRight(c.Storage.PublicBaseURL, "/")
}

// Timing returns the filter-graph timing policy.
func (c *Config) Timing() ffmpeg.Timing {
	return ffmpeg.Timing{
		Segments:   append([]float64(nil), c.Render.SegmentSeconds...),
		Crossfade:  c.Render.CrossfadeSeconds,
		Size:       c.Render.Size,
		Transition: c.Render.Transition,
	}
}

// EncodeSettings returns the encoder output policy.
func (c *Config) EncodeSettings() ffmpeg.Settings {
	return ffmpeg.Settings{
		LogLevel:    c.Render.FFmpegLogLevel,
		VideoCodec:  c.Render.VideoCodec,
		PixelFormat: c.Render.PixelFormat,
		FrameRate:   c.Render.FrameRate,
		FastStart:   c.Render.FastStart,
	}
}

// FFmpegVerbose reports whether ffmpeg is asked to print more than errors,
// in which case its stderr is forwarded to the process log.
func (c *Config) FFmpegVerbose() bool {
	switch strings.ToLower(strings.TrimSpace(c.Render.FFmpegLogLevel)) {
	case "", "quiet", "panic", "fatal", "error":
		return false
	}
	return true
}

// FetchTimeout is zero when downloads are bounded only by the caller.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
