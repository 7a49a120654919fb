package binary

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// DefaultInstallDirs is the preference-ordered candidate list: the
// system-wide bin directory first, then user-local alternatives.
var DefaultInstallDirs = []string{
	"/usr/local/bin",
	"~/.local/bin",
	"~/bin",
}

// ExpandCandidates expands a leading "~" in each candidate and cleans the
// result. Empty entries are dropped.
func ExpandCandidates(candidates []string) ([]string, error) {
	expanded := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		p, err := homedir.Expand(c)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", c, err)
		}
		expanded = append(expanded, filepath.Clean(p))
	}
	return expanded, nil
}

// ChooseInstallDir returns the first candidate that is an existing writable
// directory, or that does not exist yet but whose parent is a writable
// directory (it will be created at install time). writable reports whether
// an existing directory accepts new files; nil uses dirWritable.
func ChooseInstallDir(candidates []string, writable func(string) bool) (string, error) {
	if writable == nil {
		writable = dirWritable
	}

	for _, dir := range candidates {
		info, err := os.Stat(dir)
		switch {
		case err == nil:
			if info.IsDir() && writable(dir) {
				return dir, nil
			}
		case errors.Is(err, fs.ErrNotExist):
			parent := filepath.Dir(dir)
			if pinfo, perr := os.Stat(parent); perr == nil && pinfo.IsDir() && writable(parent) {
				return dir, nil
			}
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrNoWritableLocation, strings.Join(candidates, ", "))
}
