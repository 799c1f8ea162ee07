package s3

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"slidecast/internal/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// API is the subset of *s3.Client the adapter uses.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Options configures the S3 client.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
	// PublicBaseURL overrides the virtual-hosted URL returned for uploads.
	PublicBaseURL string
}

// Client implements ports.BlobStore backed by an S3 (or S3 compatible) bucket.
type Client struct {
	api  API
	opts Options
}

func NewClient(api API, opts Options) *Client {
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &Client{api: api, opts: opts}
}

// New loads the default AWS credential chain and returns a Client.
func New(ctx context.Context, opts Options) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})
	return NewClient(api, opts), nil
}

func (c *Client) Provider() string { return "s3" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	put := &s3.PutObjectInput{
		Bucket: aws.String(c.opts.Bucket),
		Key:    aws.String(in.ObjectKey),
		Body:   in.Reader,
	}
	if in.ContentType != "" {
		put.ContentType = aws.String(in.ContentType)
	}
	if in.Size > 0 {
		put.ContentLength = aws.Int64(in.Size)
	}

	if _, err := c.api.PutObject(ctx, put); err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("s3 upload failed: %w", err)
	}

	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, Size: in.Size, URL: c.URL(in.ObjectKey)}, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.opts.Bucket),
		Key:    aws.String(objectKey),
	})
	return err
}

// URL returns the public URL of key.
func (c *Client) URL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	escaped := strings.Join(parts, "/")

	switch {
	case c.opts.PublicBaseURL != "":
		return c.opts.PublicBaseURL + "/" + escaped
	case c.opts.Endpoint != "" || c.opts.PathStyle:
		base := strings.TrimRight(c.opts.Endpoint, "/")
		if base == "" {
			base = fmt.Sprintf("https://s3.%s.amazonaws.com", c.opts.Region)
		}
		return base + "/" + c.opts.Bucket + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.opts.Bucket, c.opts.Region, escaped)
	}
}

var _ ports.BlobStore = (*Client)(nil)
