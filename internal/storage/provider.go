package storage

import "slidecast/internal/ports"

// Provider is the blob store contract used by the api, worker and CLI.
// It is an alias to ports.BlobStore to keep call-sites simple.
type Provider = ports.BlobStore
