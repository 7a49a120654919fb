package binary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

func TestVerifierVerify(t *testing.T) {
	archiveName := "context_1.4.0_linux_amd64.tar.gz"
	archiveData := []byte("archive bytes")
	digest := sha256Hex(archiveData)

	tests := []struct {
		name     string
		manifest string
		wantErr  error
	}{
		{
			name:     "matching_entry",
			manifest: digest + "  " + archiveName + "\n",
		},
		{
			name:     "uppercase_digest",
			manifest: strings.ToUpper(digest) + "  " + archiveName + "\n",
		},
		{
			name:     "binary_mode_marker",
			manifest: digest + " *" + archiveName + "\n",
		},
		{
			name:     "path_prefixed_entry",
			manifest: digest + "  ./dist/" + archiveName + "\n",
		},
		{
			name: "exact_entry_preferred_over_path_prefixed",
			manifest: strings.Repeat("0", 64) + "  ./other/" + archiveName + "\n" +
				digest + "  " + archiveName + "\n",
		},
		{
			name: "path_prefixed_entry_after_exact",
			manifest: digest + "  " + archiveName + "\n" +
				strings.Repeat("0", 64) + "  ./other/" + archiveName + "\n",
		},
		{
			name: "among_other_platforms",
			manifest: strings.Repeat("0", 64) + "  context_1.4.0_darwin_arm64.tar.gz\n" +
				"\n" +
				digest + "  " + archiveName + "\n",
		},
		{
			name:     "digest_mismatch",
			manifest: strings.Repeat("f", 64) + "  " + archiveName + "\n",
			wantErr:  ErrChecksumMismatch,
		},
		{
			name:     "entry_missing",
			manifest: digest + "  context_1.4.0_linux_arm64.tar.gz\n",
			wantErr:  ErrChecksumEntryMissing,
		},
		{
			name:     "similar_name_is_not_a_match",
			manifest: digest + "  " + archiveName + ".sbom\n",
			wantErr:  ErrChecksumEntryMissing,
		},
		{
			name:     "empty_manifest",
			manifest: "",
			wantErr:  ErrChecksumEntryMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archivePath := writeTestFile(t, archiveName, archiveData)
			manifestPath := writeTestFile(t, "checksums.txt", []byte(tt.manifest))

			err := NewVerifier(nil).Verify(context.Background(), BuiltinTool{}, archivePath, manifestPath, archiveName)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Verify() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifierVerify_UppercaseToolOutput(t *testing.T) {
	archiveName := "context_1.4.0_linux_amd64.tar.gz"
	archiveData := []byte("archive bytes")
	archivePath := writeTestFile(t, archiveName, archiveData)
	manifestPath := writeTestFile(t, "checksums.txt", []byte(sha256Hex(archiveData)+"  "+archiveName+"\n"))

	shouting := &fakeTool{name: "shouting", available: true, sum: func(path string) (string, error) {
		return strings.ToUpper(sha256Hex(archiveData)), nil
	}}

	if err := NewVerifier(nil).Verify(context.Background(), shouting, archivePath, manifestPath, archiveName); err != nil {
		t.Errorf("Verify() unexpected error: %v", err)
	}
}

func TestVerifierVerify_ChecksumErrorDetail(t *testing.T) {
	archiveData := []byte("archive bytes")
	archivePath := writeTestFile(t, "a.tar.gz", archiveData)
	expected := strings.Repeat("AB", 32)
	manifestPath := writeTestFile(t, "checksums.txt", []byte(expected+"  a.tar.gz\n"))

	err := NewVerifier(nil).Verify(context.Background(), BuiltinTool{}, archivePath, manifestPath, "a.tar.gz")

	var checksumErr *ChecksumError
	if !errors.As(err, &checksumErr) {
		t.Fatalf("Verify() error = %v, want *ChecksumError", err)
	}
	if checksumErr.Filename != "a.tar.gz" {
		t.Errorf("Filename = %q, want %q", checksumErr.Filename, "a.tar.gz")
	}
	if checksumErr.Expected != strings.ToLower(expected) {
		t.Errorf("Expected = %q, want lowercase manifest digest", checksumErr.Expected)
	}
	if checksumErr.Got != sha256Hex(archiveData) {
		t.Errorf("Got = %q, want %q", checksumErr.Got, sha256Hex(archiveData))
	}
}

func TestVerifierVerify_ToolFailure(t *testing.T) {
	archivePath := writeTestFile(t, "a.tar.gz", []byte("x"))
	manifestPath := writeTestFile(t, "checksums.txt", []byte(sha256Hex([]byte("x"))+"  a.tar.gz\n"))
	broken := &fakeTool{name: "broken", available: true, sum: func(string) (string, error) {
		return "", errors.New("signal: killed")
	}}

	err := NewVerifier(nil).Verify(context.Background(), broken, archivePath, manifestPath, "a.tar.gz")
	if err == nil {
		t.Fatal("Verify() should fail when the tool fails")
	}
	if errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("tool failure should not be reported as a mismatch: %v", err)
	}
}

func TestVerifierVerifySignature(t *testing.T) {
	signer := newTestEntity(t, "release")
	other := newTestEntity(t, "impostor")
	manifest := []byte(sha256Hex([]byte("archive")) + "  context_1.4.0_linux_amd64.tar.gz\n")

	tests := []struct {
		name     string
		keyring  openpgp.EntityList
		manifest []byte
		sig      []byte
		wantErr  bool
	}{
		{
			name:     "armored_signature",
			keyring:  openpgp.EntityList{signer},
			manifest: manifest,
			sig:      signDetached(t, signer, manifest, true),
		},
		{
			name:     "binary_signature",
			keyring:  openpgp.EntityList{signer},
			manifest: manifest,
			sig:      signDetached(t, signer, manifest, false),
		},
		{
			name:     "signed_by_unknown_key",
			keyring:  openpgp.EntityList{signer},
			manifest: manifest,
			sig:      signDetached(t, other, manifest, true),
			wantErr:  true,
		},
		{
			name:     "tampered_manifest",
			keyring:  openpgp.EntityList{signer},
			manifest: append([]byte("0000  evil.tar.gz\n"), manifest...),
			sig:      signDetached(t, signer, manifest, true),
			wantErr:  true,
		},
		{
			name:     "garbage_signature",
			keyring:  openpgp.EntityList{signer},
			manifest: manifest,
			sig:      []byte("not a signature"),
			wantErr:  true,
		},
		{
			name:     "no_keyring",
			manifest: manifest,
			sig:      signDetached(t, signer, manifest, true),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifestPath := writeTestFile(t, "checksums.txt", tt.manifest)
			sigPath := writeTestFile(t, "checksums.txt.sig", tt.sig)

			err := NewVerifier(tt.keyring).VerifySignature(manifestPath, sigPath)
			if tt.wantErr {
				if !errors.Is(err, ErrSignatureInvalid) {
					t.Errorf("VerifySignature() error = %v, want ErrSignatureInvalid", err)
				}
				return
			}
			if err != nil {
				t.Errorf("VerifySignature() unexpected error: %v", err)
			}
		})
	}
}

func TestVerifierRequiresSignature(t *testing.T) {
	if NewVerifier(nil).RequiresSignature() {
		t.Error("nil keyring should not require a signature")
	}
	if !NewVerifier(openpgp.EntityList{newTestEntity(t, "release")}).RequiresSignature() {
		t.Error("non-empty keyring should require a signature")
	}
}
