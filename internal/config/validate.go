package config

import (
	"errors"
	"fmt"
	"strings"

	"slidecast/internal/render"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	return c.validateStorage()
}

func (c *Config) validateRender() error {
	if n := len(c.Render.SegmentSeconds); n != render.ImageCount {
		return fmt.Errorf("render.segment_seconds must have %d entries, got %d", render.ImageCount, n)
	}
	if err := c.Timing().Validate(); err != nil {
		return fmt.Errorf("render timing: %w", err)
	}
	if c.Render.FrameRate <= 0 {
		return errors.New("render.frame_rate must be positive")
	}
	if strings.TrimSpace(c.Render.FFmpegBinary) == "" {
		return errors.New("render.ffmpeg_binary must be set")
	}
	if c.Render.ImageExt == "" || c.Render.AudioExt == "" {
		return errors.New("render.image_ext and render.audio_ext must be set")
	}
	if strings.TrimSpace(c.Render.WorkDir) == "" {
		return errors.New("render.work_dir must be set")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if strings.TrimSpace(c.Fetch.UserAgent) == "" {
		return errors.New("fetch.user_agent must be set")
	}
	if c.Fetch.TimeoutSeconds < 0 {
		return errors.New("fetch.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateStorage() error {
	s := c.Storage
	switch s.Provider {
	case "gcs":
		if s.Bucket == "" {
			return errors.New("missing env: GCS_BUCKET_NAME")
		}
	case "s3":
		if s.Bucket == "" {
			return errors.New("missing env: S3_BUCKET")
		}
		if s.S3Region == "" {
			return errors.New("missing env: S3_REGION")
		}
	case "gdrive":
		if s.GDrive.ClientID == "" || s.GDrive.ClientSecret == "" || s.GDrive.RefreshToken == "" {
			return errors.New("gdrive requires GDRIVE_CLIENT_ID, GDRIVE_CLIENT_SECRET and GDRIVE_REFRESH_TOKEN")
		}
	case "localfs":
		if s.LocalRoot == "" {
			return errors.New("missing env: STORAGE_LOCAL_ROOT")
		}
	default:
		return fmt.Errorf("unknown storage provider: %s", s.Provider)
	}
	return nil
}
