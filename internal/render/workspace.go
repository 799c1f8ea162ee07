package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Workspace is the private staging directory of one render attempt. Every
// file created during the attempt is registered with Track before it is
// written so Cleanup can remove it whatever the outcome.
type Workspace struct {
	dir string

	mu      sync.Mutex
	paths   []string
	cleaned bool
}

// NewWorkspace creates root/slidecast-<attemptID>. The attempt id keeps
// concurrent attempts from sharing paths.
func NewWorkspace(root, attemptID string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, "slidecast-"+attemptID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir is the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path returns name inside the workspace and tracks it.
func (w *Workspace) Path(name string) string {
	p := filepath.Join(w.dir, name)
	w.Track(p)
	return p
}

// Track registers p for removal by Cleanup. Safe for concurrent use.
func (w *Workspace) Track(p string) {
	w.mu.Lock()
	w.paths = append(w.paths, p)
	w.mu.Unlock()
}

// Tracked returns a copy of the registered paths.
func (w *Workspace) Tracked() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.paths...)
}

// Cleanup removes every tracked path and then the directory. Paths that are
// already gone are not an error. Calling Cleanup again is a no-op.
func (w *Workspace) Cleanup() error {
	w.mu.Lock()
	if w.cleaned {
		w.mu.Unlock()
		return nil
	}
	w.cleaned = true
	paths := w.paths
	w.paths = nil
	w.mu.Unlock()

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	// Anything left behind by a partial write that was never tracked.
	if err := os.RemoveAll(w.dir); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
