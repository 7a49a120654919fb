// Package testutil provides utilities for testing relinstall in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
)

// Env describes the isolated environment created by SetupTestEnv.
type Env struct {
	// Home is the temporary $HOME.
	Home string
	// Bin is the only directory on $PATH.
	Bin string
}

// SetupTestEnv points HOME, PATH and SHELL at temporary locations so tests
// never read the user's shell setup or install into real directories.
//
// The cleanup function is automatically handled by t.TempDir() and
// t.Setenv(), so callers don't need to manually clean up. Tests using it
// cannot run in parallel.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	// Create temp directory (auto-cleaned by testing framework)
	tmpDir := t.TempDir()

	env := &Env{
		Home: filepath.Join(tmpDir, "home"),
		Bin:  filepath.Join(tmpDir, "bin"),
	}
	for _, dir := range []string{env.Home, env.Bin} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("PATH", env.Bin)
	t.Setenv("SHELL", "/bin/bash")

	// go-homedir caches the first lookup; HOME changes per test.
	prev := homedir.DisableCache
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = prev })

	return env
}
