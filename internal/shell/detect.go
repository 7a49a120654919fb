package shell

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Detector finds the user's shell. The zero value is not usable; call
// NewDetector.
type Detector struct {
	getenv     func(string) string
	parentName func() (string, error)
}

// NewDetector creates a detector that reads the process environment and the
// parent process.
func NewDetector() *Detector {
	return &Detector{
		getenv:     os.Getenv,
		parentName: parentProcessName,
	}
}

// NewDetectorWithEnv creates a detector that reads variables through getenv
// and does not inspect the parent process.
func NewDetectorWithEnv(getenv func(string) string) *Detector {
	return &Detector{
		getenv:     getenv,
		parentName: func() (string, error) { return "", nil },
	}
}

// Detect detects the user's shell using multiple methods
func (d *Detector) Detect() *DetectionResult {
	// Method 1: $SHELL names the login shell
	if shell := d.getenv("SHELL"); shell != "" {
		if shellType := parseShellFromPath(shell); shellType.IsValid() {
			return &DetectionResult{
				Shell:     shellType,
				Method:    "$SHELL environment variable",
				ShellPath: shell,
			}
		}
	}

	// Method 2: the process that started us
	if name, err := d.parentName(); err == nil && name != "" {
		if shellType := parseShellFromPath(name); shellType.IsValid() {
			return &DetectionResult{
				Shell:     shellType,
				Method:    "parent process",
				ShellPath: name,
			}
		}
	}

	return &DetectionResult{
		Shell:  ShellUnknown,
		Method: "detection failed",
	}
}

// parseShellFromPath extracts the shell type from a shell binary path
// Examples:
//   - /bin/bash -> bash
//   - /usr/bin/zsh -> zsh
//   - -fish (login shell process name) -> fish
func parseShellFromPath(shellPath string) ShellType {
	baseName := strings.ToLower(filepath.Base(shellPath))
	baseName = strings.TrimPrefix(baseName, "-")

	switch baseName {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	default:
		return ShellUnknown
	}
}

// parentProcessName returns the executable name of the parent process.
func parentProcessName() (string, error) {
	p, err := process.NewProcess(int32(os.Getppid()))
	if err != nil {
		return "", err
	}
	return p.Name()
}

// ValidateShell validates that a shell type is supported
func ValidateShell(shell ShellType) error {
	if !shell.IsValid() {
		return &UnsupportedShellError{Shell: shell.String()}
	}
	return nil
}
