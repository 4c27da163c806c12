package verify

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, body string) {
	t.Helper()
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "task"), []byte(script), 0755))
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub does not run on windows")
	}

	dir := t.TempDir()
	writeScript(t, dir, `echo "Task version: v3.46.4"`)

	out, err := Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "Task version: v3.46.4", out)
}

func TestRunNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub does not run on windows")
	}

	dir := t.TempDir()
	writeScript(t, dir, "exit 1")

	_, err := Run(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--version")
}

func TestRunMissingBinary(t *testing.T) {
	_, err := Run(context.Background(), t.TempDir())
	require.Error(t, err)
}
