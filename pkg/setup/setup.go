// Package setup runs the end-to-end installation: resolve the requested
// version, reuse or populate the tool cache, and report what was installed.
package setup

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/go-task/setup-task/pkg/archive"
	"github.com/go-task/setup-task/pkg/fetch"
	"github.com/go-task/setup-task/pkg/platform"
	"github.com/go-task/setup-task/pkg/release"
	"github.com/go-task/setup-task/pkg/toolcache"
)

// Fetcher downloads and unpacks release archives.
type Fetcher interface {
	Download(ctx context.Context, url, dest string) error
	Extract(archivePath, destDir string, format archive.Format) error
}

// HTTPFetcher is the production Fetcher, backed by an HTTP client and the
// archive package.
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) Download(ctx context.Context, url, dest string) error {
	return fetch.Download(ctx, f.Client, url, dest)
}

func (f *HTTPFetcher) Extract(archivePath, destDir string, format archive.Format) error {
	return archive.Extract(archivePath, destDir, format)
}

// Installer wires the collaborators of one setup run.
type Installer struct {
	Platform platform.Platform
	Registry release.Registry
	Cache    toolcache.Store
	Fetcher  Fetcher
}

// Result describes a completed installation.
type Result struct {
	Version  string
	Dir      string
	CacheHit bool
}

// Run executes the install sequence for the requested version ("latest" or
// an explicit version, with or without a leading "v"). The run is strictly
// linear: any failing step aborts it, and nothing is rolled back. Races
// between concurrent runs on the same version are left to the cache store.
func (i *Installer) Run(ctx context.Context, requested string) (Result, error) {
	version, err := release.Resolve(ctx, i.Registry, requested)
	if err != nil {
		return Result{}, err
	}
	if version == "" {
		return Result{}, errors.New("resolved version is empty")
	}
	log.Infof("resolved version: %s", version)

	if dir, ok, err := i.Cache.Find(release.ToolName, version); err != nil {
		return Result{}, errors.Wrap(err, "failed to query tool cache")
	} else if ok {
		log.Infof("found %s %s in tool cache: %s", release.ToolName, version, dir)
		return Result{Version: version, Dir: dir, CacheHit: true}, nil
	}

	url := release.DownloadURL(version, i.Platform)
	log.Infof("downloading %s", url)

	tmpDir, err := os.MkdirTemp("", "setup-task-")
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, "task."+i.Platform.Ext)
	if err := i.Fetcher.Download(ctx, url, archivePath); err != nil {
		return Result{}, errors.Wrap(err, "failed to download archive")
	}

	extractDir := filepath.Join(tmpDir, "extracted")
	if err := i.Fetcher.Extract(archivePath, extractDir, archive.FormatForExtension(i.Platform.Ext)); err != nil {
		return Result{}, errors.Wrap(err, "failed to extract archive")
	}

	dir, err := i.Cache.Put(release.ToolName, version, extractDir)
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to store in tool cache")
	}
	log.Infof("cached %s %s at %s", release.ToolName, version, dir)

	return Result{Version: version, Dir: dir, CacheHit: false}, nil
}
