package binary

import (
	"fmt"
	"regexp"
	"time"

	"github.com/ZebulonRouseFrantzich/relinstall/internal/platform"
)

// Package identifies a released binary: the GitHub owner/repo that publishes
// it and the executable name inside the archive.
type Package struct {
	Owner  string
	Repo   string
	Binary string
}

// identPattern restricts identity parts to characters that are safe in URLs
// and file names.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Validate checks that every part of the identity is present and safe to use
// in a URL path and a file name.
func (p Package) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"owner", p.Owner},
		{"repo", p.Repo},
		{"binary", p.Binary},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("package %s is required", f.name)
		}
		if f.value == "." || f.value == ".." || !identPattern.MatchString(f.value) {
			return fmt.Errorf("invalid package %s: %q", f.name, f.value)
		}
	}
	return nil
}

// String returns "owner/repo" with the binary appended when it differs from
// the repo name.
func (p Package) String() string {
	if p.Binary == "" || p.Binary == p.Repo {
		return p.Owner + "/" + p.Repo
	}
	return fmt.Sprintf("%s/%s (%s)", p.Owner, p.Repo, p.Binary)
}

// Artifact is the fully derived identity of a release download.
type Artifact struct {
	Tag          string // release tag as published, e.g. "v1.4.0"
	Version      string // tag without the leading "v"
	ArchiveName  string // e.g. "context_1.4.0_linux_amd64.tar.gz"
	ArchiveURL   string
	ChecksumName string // manifest file name, normally "checksums.txt"
	ChecksumURL  string
	SignatureURL string // detached signature over the manifest
}

// VerificationMethod indicates how an archive was verified
type VerificationMethod int

const (
	// VerificationNone indicates no verification (never returned by a successful install)
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 indicates the archive digest matched the manifest
	VerificationSHA256
	// VerificationSignedSHA256 indicates the manifest signature was checked too
	VerificationSignedSHA256
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationSHA256:
		return "SHA256"
	case VerificationSignedSHA256:
		return "SHA256+GPG"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// Plan is the outcome of the resolution steps, before anything is downloaded.
type Plan struct {
	Package  Package
	Platform *platform.Info
	Tool     string
	Dir      string
	Artifact *Artifact
}

// InstallResult describes a completed installation.
type InstallResult struct {
	Plan

	// Path is where the executable now lives.
	Path     string
	Verified VerificationMethod
	// PermissionWarning is set when the executable bit could not be applied.
	PermissionWarning error
	// OnPath reports whether Dir is already on the search path.
	OnPath bool
	// Advice holds shell guidance when OnPath is false.
	Advice   string
	Duration time.Duration
}
