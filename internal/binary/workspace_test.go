package binary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWorkspace(t *testing.T) {
	parent := t.TempDir()

	ws, err := NewWorkspace(parent)
	if err != nil {
		t.Fatalf("NewWorkspace() error = %v", err)
	}

	if filepath.Dir(ws.Dir()) != parent {
		t.Errorf("workspace %s not under %s", ws.Dir(), parent)
	}
	if !strings.HasPrefix(filepath.Base(ws.Dir()), "relinstall-") {
		t.Errorf("workspace name = %s, want relinstall-*", filepath.Base(ws.Dir()))
	}

	// Path never escapes the workspace.
	if got := ws.Path("../../etc/passwd"); got != filepath.Join(ws.Dir(), "passwd") {
		t.Errorf("Path() = %s, want file inside workspace", got)
	}

	if err := os.WriteFile(ws.Path("checksums.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write into workspace: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(ws.Dir(), "extracted"), 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	if err := ws.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	assertNotExist(t, ws.Dir())

	if err := ws.Remove(); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestWorkspaceRemove_Nil(t *testing.T) {
	var ws *Workspace
	if err := ws.Remove(); err != nil {
		t.Errorf("Remove() on nil workspace error = %v", err)
	}
}

func TestNewWorkspace_MissingParent(t *testing.T) {
	if _, err := NewWorkspace(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing parent")
	}
}
