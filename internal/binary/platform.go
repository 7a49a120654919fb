package binary

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/relinstall/internal/platform"
)

const (
	// DefaultDownloadBase is the host that serves release assets.
	DefaultDownloadBase = "https://github.com"
	// DefaultChecksumName is the manifest published next to every archive.
	DefaultChecksumName = "checksums.txt"
	// signatureSuffix is appended to the manifest URL for its detached signature.
	signatureSuffix = ".sig"
)

// ArchiveName returns the archive file name for a version and platform.
// Pattern: {binary}_{version}_{os}_{arch}.tar.gz
func ArchiveName(binaryName, version string, info *platform.Info) string {
	return fmt.Sprintf("%s_%s_%s_%s.tar.gz", binaryName, version, info.OS, info.Arch)
}

// NewArtifact derives archive and manifest names and URLs from the release
// tag, the target platform and the package identity.
// Pattern: {base}/{owner}/{repo}/releases/download/{tag}/{file}
func NewArtifact(pkg Package, tag string, info *platform.Info, downloadBase, checksumName string) (*Artifact, error) {
	if info == nil {
		return nil, fmt.Errorf("platform info is required")
	}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("release tag is required")
	}
	if downloadBase == "" {
		downloadBase = DefaultDownloadBase
	}
	if checksumName == "" {
		checksumName = DefaultChecksumName
	}

	version := strings.TrimPrefix(tag, "v")
	archive := ArchiveName(pkg.Binary, version, info)
	baseURL := fmt.Sprintf("%s/%s/%s/releases/download/%s",
		strings.TrimRight(downloadBase, "/"), pkg.Owner, pkg.Repo, tag)

	return &Artifact{
		Tag:          tag,
		Version:      version,
		ArchiveName:  archive,
		ArchiveURL:   baseURL + "/" + archive,
		ChecksumName: checksumName,
		ChecksumURL:  baseURL + "/" + checksumName,
		SignatureURL: baseURL + "/" + checksumName + signatureSuffix,
	}, nil
}
