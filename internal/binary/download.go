package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

const (
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "relinstall/1.0"

	// maxRedirects bounds the redirect chain; release assets redirect to a CDN.
	maxRedirects = 10
)

// Downloader fetches release assets over HTTP. It makes exactly one attempt
// per file: there is no retry and no resume.
type Downloader struct {
	client    *http.Client
	userAgent string
	// progress receives a byte progress bar per download; nil disables it.
	progress io.Writer
}

// NewDownloader creates a new downloader. A nil client gets a default one
// that follows up to maxRedirects redirects and relies on transport timeouts.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}
	return &Downloader{
		client:    client,
		userAgent: DefaultUserAgent,
	}
}

// WithProgress returns the downloader after enabling a progress bar on w.
func (d *Downloader) WithProgress(w io.Writer) *Downloader {
	d.progress = w
	return d
}

// DownloadToFile downloads url to destPath. The body is streamed into
// destPath+".tmp" and renamed only once fully written, so destPath either
// holds the complete file or does not exist. Failures wrap ErrDownloadFailed.
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	name := filepath.Base(destPath)
	if err := d.download(ctx, url, destPath); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, name, ctx.Err())
		}
		return fmt.Errorf("%w: %s: %v", ErrDownloadFailed, name, err)
	}
	return nil
}

func (d *Downloader) download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	var dst io.Writer = tmpFile
	if d.progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(d.progress),
			progressbar.OptionSetDescription(filepath.Base(destPath)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		dst = io.MultiWriter(tmpFile, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}
