package storage

import (
	"context"
	"fmt"

	"slidecast/internal/adapters/storage/gcs"
	"slidecast/internal/adapters/storage/gdrive"
	"slidecast/internal/adapters/storage/localfs"
	"slidecast/internal/adapters/storage/s3"
	"slidecast/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewProvider builds the blob store selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.Storage) (Provider, error) {
	switch cfg.Provider {
	case "gcs":
		srv, err := gcs.NewService(ctx, cfg.GCSKeyJSON)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		return gcs.NewClient(srv, cfg.Bucket), nil

	case "s3":
		return s3.New(ctx, s3.Options{
			Bucket:        cfg.Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PathStyle:     cfg.S3PathStyle,
			PublicBaseURL: cfg.PublicBaseURL,
		})

	case "gdrive":
		return newGDriveProvider(ctx, cfg.GDrive)

	case "localfs":
		return localfs.New(cfg.LocalRoot, cfg.PublicBaseURL), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

func newGDriveProvider(ctx context.Context, cfg config.GDrive) (Provider, error) {
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}

	tok := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	httpClient := conf.Client(context.WithoutCancel(ctx), tok)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("gdrive client: %w", err)
	}

	return gdrive.NewClient(srv, cfg.FolderID, true), nil
}
