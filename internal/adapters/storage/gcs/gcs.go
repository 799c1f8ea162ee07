package gcs

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"slidecast/internal/ports"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

// Client implements ports.BlobStore backed by a Google Cloud Storage bucket.
type Client struct {
	srv    *storage.Service
	bucket string
}

func NewClient(srv *storage.Service, bucket string) *Client {
	return &Client{srv: srv, bucket: bucket}
}

// NewService builds a storage service from a service-account key. An empty
// key falls back to application default credentials.
func NewService(ctx context.Context, keyJSON string, opts ...option.ClientOption) (*storage.Service, error) {
	if keyJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(keyJSON)))
	}
	opts = append(opts, option.WithScopes(storage.DevstorageReadWriteScope))
	return storage.NewService(ctx, opts...)
}

func (c *Client) Provider() string { return "gcs" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	obj := &storage.Object{Name: in.ObjectKey, ContentType: in.ContentType}
	call := c.srv.Objects.Insert(c.bucket, obj)
	if in.ContentType != "" {
		call = call.Media(in.Reader, googleapi.ContentType(in.ContentType))
	} else {
		call = call.Media(in.Reader)
	}

	created, err := call.Context(ctx).Do()
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("gcs upload failed: %w", err)
	}

	return ports.PutObjectOutput{
		ObjectKey: created.Name,
		Size:      int64(created.Size),
		URL:       PublicURL(c.bucket, created.Name),
	}, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	return c.srv.Objects.Delete(c.bucket, objectKey).Context(ctx).Do()
}

// PublicURL is the storage.googleapis.com URL of an object. Each key segment
// is escaped, the separators are kept.
func PublicURL(bucket, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "https://storage.googleapis.com/" + bucket + "/" + strings.Join(parts, "/")
}

var _ ports.BlobStore = (*Client)(nil)
