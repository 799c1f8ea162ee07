package gdrive

import (
	"context"
	"fmt"

	"slidecast/internal/ports"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// Client implements ports.BlobStore backed by Google Drive.
// The ObjectKey is used as the Drive file name; the returned ObjectKey is
// the Drive fileId.
type Client struct {
	srv      *drive.Service
	folderID string
	// anyoneReader grants public read so the returned URL works unauthenticated.
	anyoneReader bool
}

func NewClient(srv *drive.Service, folderID string, public bool) *Client {
	return &Client{srv: srv, folderID: folderID, anyoneReader: public}
}

func (c *Client) Provider() string { return "gdrive" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	file := &drive.File{Name: in.ObjectKey}
	if c.folderID != "" {
		file.Parents = []string{c.folderID}
	}

	call := c.srv.Files.Create(file).Fields("id", "size")
	if in.ContentType != "" {
		call = call.Media(in.Reader, googleapi.ContentType(in.ContentType))
	} else {
		call = call.Media(in.Reader)
	}

	created, err := call.Context(ctx).Do()
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("gdrive upload failed: %w", err)
	}

	if c.anyoneReader {
		perm := &drive.Permission{Type: "anyone", Role: "reader"}
		if _, err := c.srv.Permissions.Create(created.Id, perm).Context(ctx).Do(); err != nil {
			return ports.PutObjectOutput{}, fmt.Errorf("gdrive share failed: %w", err)
		}
	}

	size := in.Size
	if created.Size > 0 {
		size = created.Size
	}
	return ports.PutObjectOutput{
		ObjectKey: created.Id,
		Size:      size,
		URL:       FileURL(created.Id),
	}, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	return c.srv.Files.Delete(objectKey).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

// FileURL is the direct download URL for a Drive file id.
func FileURL(fileID string) string {
	return "https://drive.google.com/uc?id=" + fileID
}

var _ ports.BlobStore = (*Client)(nil)
