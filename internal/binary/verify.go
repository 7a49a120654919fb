package binary

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Verifier checks downloaded archives against the release checksum manifest
// and, when a keyring is configured, the manifest against its signature.
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier creates a verifier. A nil or empty keyring disables signature
// verification.
func NewVerifier(keyring openpgp.EntityList) *Verifier {
	return &Verifier{keyring: keyring}
}

// RequiresSignature reports whether the manifest signature must be checked.
func (v *Verifier) RequiresSignature() bool {
	return len(v.keyring) > 0
}

// Verify looks up archiveName in the manifest, hashes the archive with tool
// and compares the two digests. A missing entry yields
// ErrChecksumEntryMissing; a differing digest yields a *ChecksumError.
func (v *Verifier) Verify(ctx context.Context, tool ChecksumTool, archivePath, manifestPath, archiveName string) error {
	expected, err := findChecksum(manifestPath, archiveName)
	if err != nil {
		return err
	}

	actual, err := tool.Sum(ctx, archivePath)
	if err != nil {
		return fmt.Errorf("compute checksum of %s: %w", archiveName, err)
	}

	// Hex digits are canonicalized to lowercase, then compared byte for byte.
	expected = strings.ToLower(expected)
	actual = strings.ToLower(actual)
	if actual != expected {
		return &ChecksumError{
			Filename: archiveName,
			Expected: expected,
			Got:      actual,
		}
	}

	return nil
}

// VerifySignature checks the detached OpenPGP signature over the manifest.
// Armored signatures are tried first, then binary ones.
func (v *Verifier) VerifySignature(manifestPath, signaturePath string) error {
	if !v.RequiresSignature() {
		return fmt.Errorf("%w: no keyring configured", ErrSignatureInvalid)
	}

	manifest, err := os.Open(manifestPath)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer manifest.Close()

	sig, err := os.Open(signaturePath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sig.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, manifest, sig, nil)
	if err != nil {
		if _, seekErr := manifest.Seek(0, io.SeekStart); seekErr != nil {
			return fmt.Errorf("rewind manifest: %w", seekErr)
		}
		if _, seekErr := sig.Seek(0, io.SeekStart); seekErr != nil {
			return fmt.Errorf("rewind signature: %w", seekErr)
		}
		_, err = openpgp.CheckDetachedSignature(v.keyring, manifest, sig, nil)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	return nil
}

// findChecksum finds the digest for filename in a checksum manifest.
// Format: "abc123def456  filename.tar.gz", with an optional "*" binary-mode
// marker before the name. An exact name match anywhere in the manifest wins
// over entries that only match by base name ("./dist/filename.tar.gz").
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	var baseMatch string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		checksumFilename := strings.TrimPrefix(parts[1], "*")
		if checksumFilename == filename {
			return parts[0], nil
		}

		if baseMatch == "" && filepath.Base(checksumFilename) == filename {
			baseMatch = parts[0]
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	if baseMatch != "" {
		return baseMatch, nil
	}

	return "", fmt.Errorf("%w: %s not listed in %s", ErrChecksumEntryMissing, filename, filepath.Base(checksumPath))
}
