package render

import (
	"context"
	"fmt"
	"os"

	"slidecast/internal/pkg/errors"
	"slidecast/internal/ports"
)

// VideoContentType is set on every published render.
const VideoContentType = "video/mp4"

// Publisher uploads a finished render and returns where it can be fetched.
type Publisher interface {
	Publish(ctx context.Context, localPath, key, contentType string) (string, error)
}

// BlobPublisher publishes to a ports.BlobStore.
type BlobPublisher struct {
	store ports.BlobStore
}

func NewBlobPublisher(store ports.BlobStore) *BlobPublisher {
	return &BlobPublisher{store: store}
}

func (p *BlobPublisher) Publish(ctx context.Context, localPath, key, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodePublish, "render.publish", "open output")
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodePublish, "render.publish", "stat output")
	}

	out, err := p.store.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   key,
		ContentType: contentType,
		Reader:      f,
		Size:        st.Size(),
	})
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodePublish, "render.publish",
			fmt.Sprintf("upload to %s", p.store.Provider())).WithField("key", key)
	}
	if out.URL == "" {
		// The object is unreachable without a URL; remove it if we can.
		objectKey := out.ObjectKey
		if objectKey == "" {
			objectKey = key
		}
		perr := errors.New(errors.CodePublish, "store returned no URL").WithField("key", key)
		if derr := p.store.DeleteObject(context.WithoutCancel(ctx), objectKey); derr != nil {
			perr = perr.WithField("cleanup_error", derr.Error())
		}
		return "", perr
	}
	return out.URL, nil
}

var _ Publisher = (*BlobPublisher)(nil)
