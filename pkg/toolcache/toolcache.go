// Package toolcache persists installed tool directories across job runs,
// keyed by tool name and version. It mirrors the runner tool-cache layout:
// entries live under <root>/<tool>/<version>/ and are only considered
// complete once their marker file exists, so a crashed run never produces a
// half-populated hit.
package toolcache

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Store is the capability the installer needs from a tool cache.
type Store interface {
	// Find returns the cached directory for (tool, version) and whether the
	// entry exists.
	Find(tool, version string) (string, bool, error)
	// Put copies srcDir into the cache under (tool, version) and returns the
	// canonical cached directory.
	Put(tool, version, srcDir string) (string, error)
}

// DirStore is a filesystem-backed Store.
type DirStore struct {
	root string
}

// NewDirStore creates a store rooted at root, typically the runner's
// RUNNER_TOOL_CACHE directory.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// DefaultRoot returns the tool-cache root: RUNNER_TOOL_CACHE when running on
// a hosted runner, otherwise a directory under the user cache dir.
func DefaultRoot() (string, error) {
	if root := os.Getenv("RUNNER_TOOL_CACHE"); root != "" {
		return root, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine tool cache root")
	}
	return filepath.Join(base, "setup-task", "tool-cache"), nil
}

func (s *DirStore) entryDir(tool, version string) string {
	return filepath.Join(s.root, tool, version)
}

func (s *DirStore) markerPath(tool, version string) string {
	return s.entryDir(tool, version) + ".complete"
}

// Find reports a hit only when both the entry directory and its completion
// marker exist.
func (s *DirStore) Find(tool, version string) (string, bool, error) {
	dir := s.entryDir(tool, version)

	if _, err := os.Stat(s.markerPath(tool, version)); err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "failed to stat cache marker")
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "failed to stat cache entry")
	}

	return dir, true, nil
}

// Put copies srcDir into the cache and writes the completion marker last.
// Putting into an already complete entry is idempotent and returns the
// existing directory.
func (s *DirStore) Put(tool, version, srcDir string) (string, error) {
	if dir, ok, err := s.Find(tool, version); err != nil {
		return "", err
	} else if ok {
		return dir, nil
	}

	dir := s.entryDir(tool, version)

	// Drop any stale partial entry from an interrupted run.
	if err := os.RemoveAll(dir); err != nil {
		return "", errors.Wrap(err, "failed to clear stale cache entry")
	}

	if err := copyDir(srcDir, dir); err != nil {
		return "", errors.Wrap(err, "failed to copy into tool cache")
	}

	if err := os.WriteFile(s.markerPath(tool, version), nil, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write cache marker")
	}

	return dir, nil
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_RDWR|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
