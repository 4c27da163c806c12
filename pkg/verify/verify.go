// Package verify smoke-tests an installed Task binary.
package verify

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Run invokes the task binary installed in dir with --version and returns
// its output. A spawn failure or non-zero exit means the installation is
// broken.
func Run(ctx context.Context, dir string) (string, error) {
	bin := filepath.Join(dir, "task")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}

	out, err := exec.CommandContext(ctx, bin, "--version").CombinedOutput()
	if err != nil {
		return "", errors.Wrapf(err, "failed to run %s --version", bin)
	}

	return strings.TrimSpace(string(out)), nil
}
