package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	// ObjectKey is the provider-side identifier. For gdrive this is the
	// fileId, elsewhere it matches the requested key.
	ObjectKey string
	Size      int64
	// URL is where the uploaded object can be retrieved.
	URL string
}

// BlobStore is the publish target for rendered videos (gcs, s3, gdrive, localfs).
type BlobStore interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	DeleteObject(ctx context.Context, objectKey string) error
}
