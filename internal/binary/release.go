package binary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	// DefaultAPIBase is the GitHub REST API endpoint.
	DefaultAPIBase = "https://api.github.com"

	// maxReleaseResponseBytes caps the release index response (1 MB).
	maxReleaseResponseBytes = 1 << 20
)

// ReleaseClient queries the release index for the latest published tag.
type ReleaseClient struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewReleaseClient creates a client for the given API base. An empty base
// selects DefaultAPIBase; a nil client selects http.DefaultClient.
func NewReleaseClient(client *http.Client, baseURL string) *ReleaseClient {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultAPIBase
	}
	return &ReleaseClient{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent,
	}
}

// latestRelease is the subset of the release response we read.
type latestRelease struct {
	TagName string `json:"tag_name"`
}

// LatestTag returns the tag of the latest release of owner/repo.
// Any failure is reported as ErrReleaseLookupFailed.
func (c *ReleaseClient) LatestTag(ctx context.Context, owner, repo string) (string, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s/releases/latest",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrReleaseLookupFailed, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s/%s: %w", ErrReleaseLookupFailed, owner, repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s/%s: unexpected status %d", ErrReleaseLookupFailed, owner, repo, resp.StatusCode)
	}

	var rel latestRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReleaseResponseBytes)).Decode(&rel); err != nil {
		return "", fmt.Errorf("%w: %s/%s: decode response: %v", ErrReleaseLookupFailed, owner, repo, err)
	}

	tag := strings.TrimSpace(rel.TagName)
	if tag == "" {
		return "", fmt.Errorf("%w: %s/%s: response has no tag_name", ErrReleaseLookupFailed, owner, repo)
	}

	return tag, nil
}

// NormalizeTag validates a user-pinned tag and returns it trimmed but
// otherwise as given: the tag names the release in download URLs, and
// releases are published both with and without a "v" prefix.
func NormalizeTag(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", fmt.Errorf("version tag cannot be empty")
	}
	check := tag
	if !strings.HasPrefix(check, "v") {
		check = "v" + check
	}
	if !semver.IsValid(check) {
		return "", fmt.Errorf("invalid version tag %q: expected semantic version like v1.2.3", tag)
	}
	return tag, nil
}
