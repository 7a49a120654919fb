package binary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// selfTestInput and selfTestDigest are the SHA-256 test vector ("abc") used
// to confirm a tool really computes SHA-256.
const (
	selfTestInput  = "abc"
	selfTestDigest = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
)

// ChecksumTool computes SHA-256 digests of files.
type ChecksumTool interface {
	// Name identifies the tool in logs and plans.
	Name() string
	// Available reports whether the tool can be run on this host.
	Available() bool
	// Sum returns the lowercase hex SHA-256 digest of the file at path.
	Sum(ctx context.Context, path string) (string, error)
}

// ExecTool runs an external digest utility such as sha256sum or
// "shasum -a 256" and reads the digest from the first field of its output.
type ExecTool struct {
	Command string
	Args    []string

	lookPath func(string) (string, error)
}

// NewExecTool creates a tool that runs command with args followed by the
// file path.
func NewExecTool(command string, args ...string) *ExecTool {
	return &ExecTool{
		Command:  command,
		Args:     args,
		lookPath: exec.LookPath,
	}
}

// DefaultChecksumTools returns the probe order used when no tool is forced:
// sha256sum first, then shasum.
func DefaultChecksumTools() []ChecksumTool {
	return []ChecksumTool{
		NewExecTool("sha256sum"),
		NewExecTool("shasum", "-a", "256"),
	}
}

// Name returns the command line without the file argument.
func (t *ExecTool) Name() string {
	return strings.Join(append([]string{t.Command}, t.Args...), " ")
}

// Available reports whether the command is on PATH.
func (t *ExecTool) Available() bool {
	_, err := t.lookPath(t.Command)
	return err == nil
}

// Sum runs the tool on path.
func (t *ExecTool) Sum(ctx context.Context, path string) (string, error) {
	args := append(append([]string{}, t.Args...), path)
	out, err := exec.CommandContext(ctx, t.Command, args...).Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", t.Name(), err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "", fmt.Errorf("run %s: empty output", t.Name())
	}
	// Binary-mode output prefixes the digest with a backslash when the path
	// needs escaping.
	digest := strings.ToLower(strings.TrimPrefix(fields[0], `\`))
	if !isValidHexHash(digest) {
		return "", fmt.Errorf("run %s: unexpected output %q", t.Name(), fields[0])
	}
	return digest, nil
}

// BuiltinTool hashes in-process with crypto/sha256.
type BuiltinTool struct{}

// Name returns "builtin".
func (BuiltinTool) Name() string { return "builtin" }

// Available is always true.
func (BuiltinTool) Available() bool { return true }

// Sum streams the file through SHA-256.
func (BuiltinTool) Sum(ctx context.Context, path string) (string, error) {
	return calculateSHA256(path)
}

// SelectChecksumTool returns the first usable tool from tools. The first
// candidate is taken as soon as it is available; later candidates are
// fallbacks and must also pass a SHA-256 self-test.
func SelectChecksumTool(ctx context.Context, tools []ChecksumTool, logger Logger) (ChecksumTool, error) {
	if logger == nil {
		logger = &noopLogger{}
	}

	var tried []string
	for i, tool := range tools {
		tried = append(tried, tool.Name())
		if !tool.Available() {
			logger.Debug("checksum tool not found", "tool", tool.Name())
			continue
		}
		if i == 0 {
			return tool, nil
		}
		if err := SelfTest(ctx, tool); err != nil {
			logger.Debug("checksum tool failed self-test", "tool", tool.Name(), "err", err)
			continue
		}
		return tool, nil
	}

	if len(tried) == 0 {
		return nil, fmt.Errorf("%w: no candidates configured", ErrNoChecksumTool)
	}
	return nil, fmt.Errorf("%w: tried %s", ErrNoChecksumTool, strings.Join(tried, ", "))
}

// SelfTest hashes a known input with tool and checks the SHA-256 result.
func SelfTest(ctx context.Context, tool ChecksumTool) error {
	dir, err := os.MkdirTemp("", "relinstall-selftest-*")
	if err != nil {
		return fmt.Errorf("create self-test dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "vector")
	if err := os.WriteFile(path, []byte(selfTestInput), 0600); err != nil {
		return fmt.Errorf("write self-test vector: %w", err)
	}

	got, err := tool.Sum(ctx, path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, selfTestDigest) {
		return fmt.Errorf("%s does not compute SHA-256 (got %s)", tool.Name(), got)
	}
	return nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", filePath, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// isValidHexHash checks if s is a 64-character hex-encoded SHA-256 digest.
func isValidHexHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
