package binary

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// InstallExecutable moves the verified executable at src to dir/name and
// marks it executable. The destination is replaced atomically: either the
// previous file or the complete new one is visible, never a partial write.
//
// A failure to set the executable bit is returned as permWarning rather than
// err; the file is in place either way.
func InstallExecutable(src, dir, name string) (dest string, permWarning error, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("%w: create %s: %v", ErrInstallWriteFailed, dir, err)
	}

	dest = filepath.Join(dir, name)
	if err := os.Rename(src, dest); err != nil {
		// Workspace and install dir usually sit on different filesystems.
		if copyErr := copyIntoPlace(src, dest); copyErr != nil {
			return "", nil, fmt.Errorf("%w: %s: %v", ErrInstallWriteFailed, dest, copyErr)
		}
	}

	if err := SetExecutable(dest); err != nil {
		return dest, err, nil
	}

	return dest, nil, nil
}

// copyIntoPlace copies src into a temp file beside dest and renames it over
// dest.
func copyIntoPlace(src, dest string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, 0755); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}

// OnPath reports whether dir is one of the entries of the search path value
// pathEnv.
func OnPath(dir, pathEnv string) bool {
	want := filepath.Clean(dir)
	for _, entry := range filepath.SplitList(pathEnv) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if filepath.Clean(entry) == want {
			return true
		}
	}
	return false
}
