// Package fetch downloads release archives to the local filesystem.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// DefaultClient is the client used for release downloads. It deliberately
// carries no credentials: release assets are public, and the download URL
// redirects to a pre-signed CDN URL that rejects requests mixing an
// Authorization header with its query-string signature. The registry token
// stays on the registry client.
var DefaultClient = &http.Client{Timeout: 5 * time.Minute}

// Download fetches url into destPath using the given client. The body is
// written to a temporary file next to the destination and renamed into place
// so a failed transfer never leaves a partial file at destPath. Any non-2xx
// status is an error carrying the status code.
func Download(ctx context.Context, client *http.Client, url, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to download %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d downloading %s", resp.StatusCode, url)
	}

	written, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to write download to disk")
	}
	if written == 0 {
		return fmt.Errorf("no content downloaded from %s", url)
	}

	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "failed to close temporary file")
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return errors.Wrap(err, "failed to move downloaded file")
	}

	return nil
}
