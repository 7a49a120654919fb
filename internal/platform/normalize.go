package platform

import (
	"fmt"
	"strings"
)

// familyMap maps distribution names to their canonical family names.
// This is used to normalize variations of family strings from gopsutil.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian, // gopsutil might return ubuntu as family
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
	"gentoo":   FamilyGentoo,
}

// Resolve maps a raw kernel name and machine architecture onto the supported
// target set. Matching is case-insensitive; anything outside
// {linux, darwin} x {amd64, arm64} yields ErrUnsupportedPlatform.
func Resolve(kernel, machine string) (*Info, error) {
	osName, err := normalizeOS(kernel)
	if err != nil {
		return nil, err
	}
	arch, err := normalizeArch(machine)
	if err != nil {
		return nil, err
	}
	return &Info{
		OS:      osName,
		Arch:    arch,
		ArchRaw: machine,
	}, nil
}

// normalizeOS converts a kernel name (uname -s style or GOOS) to an OS token.
func normalizeOS(kernel string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kernel)) {
	case "linux":
		return OSLinux, nil
	case "darwin":
		return OSDarwin, nil
	default:
		return "", fmt.Errorf("%w: operating system %q (supported: linux, darwin)", ErrUnsupportedPlatform, kernel)
	}
}

// normalizeArch converts machine names (uname -m style or GOARCH) to an
// architecture token.
func normalizeArch(arch string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(arch)) {
	case "amd64", "x86_64":
		return ArchAMD64, nil
	case "arm64", "aarch64":
		return ArchARM64, nil
	default:
		return "", fmt.Errorf("%w: architecture %q (supported: amd64, arm64)", ErrUnsupportedPlatform, arch)
	}
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}

	return FamilyUnknown
}
