package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"slidecast/internal/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeAPI struct {
	put     *s3.PutObjectInput
	body    string
	deleted string
	err     error
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestPutObject(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api, Options{Bucket: "renders", Region: "us-east-1"})

	out, err := c.PutObject(context.Background(), ports.PutObjectInput{
		ObjectKey:   "video-abc.mp4",
		ContentType: "video/mp4",
		Reader:      strings.NewReader("mp4"),
		Size:        3,
	})
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}

	if aws.ToString(api.put.Bucket) != "renders" || aws.ToString(api.put.Key) != "video-abc.mp4" {
		t.Errorf("unexpected bucket/key %q/%q", aws.ToString(api.put.Bucket), aws.ToString(api.put.Key))
	}
	if aws.ToString(api.put.ContentType) != "video/mp4" {
		t.Errorf("expected video/mp4 content type, got %q", aws.ToString(api.put.ContentType))
	}
	if api.body != "mp4" {
		t.Errorf("unexpected body %q", api.body)
	}
	if out.URL != "https://renders.s3.us-east-1.amazonaws.com/video-abc.mp4" {
		t.Errorf("unexpected URL %q", out.URL)
	}
}

func TestPutObjectError(t *testing.T) {
	c := NewClient(&fakeAPI{err: errors.New("access denied")}, Options{Bucket: "b", Region: "r"})
	_, err := c.PutObject(context.Background(), ports.PutObjectInput{ObjectKey: "k", Reader: strings.NewReader("")})
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Errorf("expected wrapped upload error, got %v", err)
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"virtual hosted", Options{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com/out/v.mp4"},
		{"public base", Options{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"}, "https://cdn.example.com/out/v.mp4"},
		{"custom endpoint", Options{Bucket: "b", Endpoint: "http://minio:9000", PathStyle: true}, "http://minio:9000/b/out/v.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewClient(&fakeAPI{}, tt.opts).URL("out/v.mp4"); got != tt.want {
				t.Errorf("URL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeleteObject(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api, Options{Bucket: "b"})
	if err := c.DeleteObject(context.Background(), "v.mp4"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if api.deleted != "v.mp4" {
		t.Errorf("expected v.mp4 deleted, got %q", api.deleted)
	}
}
