package shell

import (
	"errors"
	"testing"
)

func envFunc(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestDetectorDetect(t *testing.T) {
	tests := []struct {
		name       string
		shellEnv   string
		parent     string
		parentErr  error
		wantShell  ShellType
		wantMethod string
	}{
		{
			name:       "Bash from SHELL",
			shellEnv:   "/bin/bash",
			wantShell:  ShellBash,
			wantMethod: "$SHELL environment variable",
		},
		{
			name:       "Zsh from SHELL",
			shellEnv:   "/usr/bin/zsh",
			wantShell:  ShellZsh,
			wantMethod: "$SHELL environment variable",
		},
		{
			name:       "Fish from SHELL",
			shellEnv:   "/usr/local/bin/fish",
			wantShell:  ShellFish,
			wantMethod: "$SHELL environment variable",
		},
		{
			name:       "Unknown SHELL falls back to parent",
			shellEnv:   "/bin/ksh",
			parent:     "zsh",
			wantShell:  ShellZsh,
			wantMethod: "parent process",
		},
		{
			name:       "Login shell parent name",
			parent:     "-bash",
			wantShell:  ShellBash,
			wantMethod: "parent process",
		},
		{
			name:       "Parent lookup error",
			parentErr:  errors.New("no such process"),
			wantShell:  ShellUnknown,
			wantMethod: "detection failed",
		},
		{
			name:       "Nothing recognisable",
			shellEnv:   "/bin/ksh",
			parent:     "sshd",
			wantShell:  ShellUnknown,
			wantMethod: "detection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Detector{
				getenv: envFunc(map[string]string{"SHELL": tt.shellEnv}),
				parentName: func() (string, error) {
					return tt.parent, tt.parentErr
				},
			}

			result := d.Detect()
			if result.Shell != tt.wantShell {
				t.Errorf("Detect() shell = %v, want %v", result.Shell, tt.wantShell)
			}
			if result.Method != tt.wantMethod {
				t.Errorf("Detect() method = %q, want %q", result.Method, tt.wantMethod)
			}
		})
	}
}

func TestNewDetectorWithEnv_SkipsParent(t *testing.T) {
	d := NewDetectorWithEnv(envFunc(nil))
	if got := d.Detect().Shell; got != ShellUnknown {
		t.Errorf("Detect() shell = %v, want %v", got, ShellUnknown)
	}
}

func TestParseShellFromPath(t *testing.T) {
	tests := []struct {
		path string
		want ShellType
	}{
		{"/bin/bash", ShellBash},
		{"/usr/bin/zsh", ShellZsh},
		{"/opt/homebrew/bin/fish", ShellFish},
		{"BASH", ShellBash},
		{"-zsh", ShellZsh},
		{"/bin/sh", ShellUnknown},
		{"", ShellUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := parseShellFromPath(tt.path); got != tt.want {
				t.Errorf("parseShellFromPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestValidateShell(t *testing.T) {
	for _, s := range []ShellType{ShellBash, ShellZsh, ShellFish} {
		if err := ValidateShell(s); err != nil {
			t.Errorf("ValidateShell(%v) error = %v", s, err)
		}
	}

	err := ValidateShell(ShellUnknown)
	var unsupported *UnsupportedShellError
	if !errors.As(err, &unsupported) {
		t.Fatalf("ValidateShell(unknown) error = %v, want UnsupportedShellError", err)
	}
	if unsupported.Shell != "unknown" {
		t.Errorf("UnsupportedShellError.Shell = %q, want %q", unsupported.Shell, "unknown")
	}
}
