package binary

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is a temporary directory that holds downloads for one run.
// Callers must defer Remove immediately after NewWorkspace succeeds.
type Workspace struct {
	dir string
}

// NewWorkspace creates a fresh temporary directory under parent (os.TempDir
// when empty).
func NewWorkspace(parent string) (*Workspace, error) {
	dir, err := os.MkdirTemp(parent, "relinstall-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, filepath.Base(name))
}

// Remove deletes the workspace and everything in it. It is safe to call more
// than once.
func (w *Workspace) Remove() error {
	if w == nil || w.dir == "" {
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("remove workspace %s: %w", w.dir, err)
	}
	return nil
}
