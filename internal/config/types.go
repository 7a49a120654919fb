package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// Recipe describes which release to install and where. Every field is
// optional in a recipe file; empty values fall through to flags or defaults.
type Recipe struct {
	Owner  string `json:"owner,omitempty"`
	Repo   string `json:"repo,omitempty"`
	Binary string `json:"binary,omitempty"`

	// Version pins a release tag (e.g. "v1.4.0"); empty means latest
	Version string `json:"version,omitempty"`

	// InstallDirs is the ordered candidate list (supports ~)
	InstallDirs []string `json:"install_dirs,omitempty"`

	// Checksums names the manifest asset (default "checksums.txt")
	Checksums string `json:"checksums,omitempty"`

	// Keyring is an OpenPGP public keyring; when set the manifest
	// signature is verified
	Keyring string `json:"keyring,omitempty"`

	APIURL      string `json:"api_url,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

// Merge returns r with every non-empty field of override applied on top.
// Flags are merged over a parsed recipe this way.
func (r Recipe) Merge(override Recipe) Recipe {
	merged := r
	if override.Owner != "" {
		merged.Owner = override.Owner
	}
	if override.Repo != "" {
		merged.Repo = override.Repo
	}
	if override.Binary != "" {
		merged.Binary = override.Binary
	}
	if override.Version != "" {
		merged.Version = override.Version
	}
	if len(override.InstallDirs) > 0 {
		merged.InstallDirs = append([]string(nil), override.InstallDirs...)
	}
	if override.Checksums != "" {
		merged.Checksums = override.Checksums
	}
	if override.Keyring != "" {
		merged.Keyring = override.Keyring
	}
	if override.APIURL != "" {
		merged.APIURL = override.APIURL
	}
	if override.DownloadURL != "" {
		merged.DownloadURL = override.DownloadURL
	}
	return merged
}

// BinaryName returns Binary, or Repo when no binary name is set.
func (r Recipe) BinaryName() string {
	if r.Binary != "" {
		return r.Binary
	}
	return r.Repo
}

// Validate performs basic validation on a Recipe. Missing fields are
// allowed; present ones must be well-formed.
func (r *Recipe) Validate() error {
	identifiers := []struct {
		field string
		value string
	}{
		{luaFieldOwner, r.Owner},
		{luaFieldRepo, r.Repo},
		{luaFieldBinary, r.Binary},
		{luaFieldChecksums, r.Checksums},
	}
	for _, id := range identifiers {
		if id.value == "" {
			continue
		}
		if err := validateIdentifier(id.value); err != nil {
			return &ValidationError{Field: id.field, Message: err.Error()}
		}
	}

	if r.Version != "" {
		if err := validateVersion(r.Version); err != nil {
			return &ValidationError{Field: luaFieldVersion, Message: err.Error()}
		}
	}

	// Install dir count validation
	if len(r.InstallDirs) > MaxInstallDirs {
		return &ValidationError{
			Field:   luaFieldInstallDirs,
			Message: fmt.Sprintf("too many install dirs (%d), maximum is %d", len(r.InstallDirs), MaxInstallDirs),
		}
	}
	for i, dir := range r.InstallDirs {
		if err := validateInstallDir(dir); err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", luaFieldInstallDirs, i+1),
				Message: err.Error(),
			}
		}
	}

	if len(r.Keyring) > MaxFieldLength {
		return &ValidationError{Field: luaFieldKeyring, Message: "path too long"}
	}

	urls := []struct {
		field string
		value string
	}{
		{luaFieldAPIURL, r.APIURL},
		{luaFieldDownloadURL, r.DownloadURL},
	}
	for _, u := range urls {
		if u.value == "" {
			continue
		}
		if err := validateBaseURL(u.value); err != nil {
			return &ValidationError{Field: u.field, Message: err.Error()}
		}
	}

	return nil
}

// ValidationError represents a recipe validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "recipe validation failed for " + e.Field + ": " + e.Message
	}
	return "recipe validation failed: " + e.Message
}

// identifierPattern matches owner, repo, binary and asset names: characters
// that are safe both in a URL path segment and a file name.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// validateIdentifier validates a name used in release URLs and file names.
func validateIdentifier(s string) error {
	if len(s) > 256 {
		return fmt.Errorf("too long (%d chars, max 256)", len(s))
	}
	if s == "." || s == ".." || !identifierPattern.MatchString(s) {
		return fmt.Errorf("invalid name %q (allowed: letters, digits, '.', '_', '-')", s)
	}
	return nil
}

// validateVersion accepts semantic version tags with or without a leading "v".
func validateVersion(v string) error {
	tag := v
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	if !semver.IsValid(tag) {
		return fmt.Errorf("invalid version %q (expected semantic version like v1.2.3)", v)
	}
	return nil
}

// validateInstallDir requires an absolute or home-relative path.
func validateInstallDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if len(dir) > MaxFieldLength {
		return fmt.Errorf("path too long")
	}
	if !strings.HasPrefix(dir, "/") && dir != "~" && !strings.HasPrefix(dir, "~/") {
		return fmt.Errorf("path must be absolute or start with ~/: %s", dir)
	}
	return nil
}

// validateBaseURL validates an API or download base URL.
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use https:// or http:// scheme (got: %s)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %s", raw)
	}

	return nil
}
