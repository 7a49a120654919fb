// Package binary resolves, downloads, verifies and installs a prebuilt
// release binary published on GitHub.
//
// # Security Model
//
// An archive is never extracted, let alone installed, before it has been
// verified:
//   - The SHA-256 digest of the archive must match its entry in the release's
//     checksum manifest (checksums.txt)
//   - When a keyring is configured, the manifest's detached OpenPGP signature
//     (checksums.txt.sig) must verify first
//
// There is no fallback: a missing manifest entry, a digest mismatch or a bad
// signature aborts the install.
//
// # Pipeline
//
// Installer.Install runs these steps in order, each one fatal on error:
//  1. Resolve the platform (linux/darwin, amd64/arm64)
//  2. Select a checksum tool (sha256sum, then shasum -a 256 after a self-test)
//  3. Resolve the release tag (pinned, or the latest from the release index)
//  4. Choose the install directory
//  5. Derive the artifact names and URLs
//  6. Create a workspace, removed on every exit path
//  7. Download the archive and manifest
//  8. Verify
//  9. Extract the named executable
//  10. Install it atomically into the chosen directory
//  11. Report whether the directory is on PATH
//
// Errors are wrapped in *StepError and classify with errors.Is against the
// sentinels in errors.go.
//
// # Usage
//
//	inst, err := binary.NewInstaller(binary.Config{
//	    Package: binary.Package{Owner: "acme", Repo: "context"},
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := inst.Install(ctx)
package binary
