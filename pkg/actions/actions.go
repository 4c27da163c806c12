// Package actions talks to the GitHub Actions runner: reading step inputs,
// writing step outputs, publishing PATH entries, and signaling errors. It
// uses the runner's file commands (GITHUB_OUTPUT, GITHUB_PATH) and falls back
// to the legacy stdout workflow commands when those are absent, e.g. when
// running outside a workflow.
package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Env binds the package to a process environment so tests can substitute
// fake environments and capture command output.
type Env struct {
	getenv func(string) string
	setenv func(string, string) error
	stdout io.Writer
}

// New returns an Env wired to the real process environment.
func New() *Env {
	return &Env{
		getenv: os.Getenv,
		setenv: os.Setenv,
		stdout: os.Stdout,
	}
}

// Input returns the value of a step input, or "" when unset. The runner
// exposes inputs as INPUT_<NAME> environment variables with spaces replaced
// by underscores.
func (e *Env) Input(name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	return strings.TrimSpace(e.getenv(key))
}

// InputOrDefault returns the input value or def when the input is unset.
func (e *Env) InputOrDefault(name, def string) string {
	if v := e.Input(name); v != "" {
		return v
	}
	return def
}

// SetOutput publishes a step output visible to later workflow steps.
func (e *Env) SetOutput(name, value string) error {
	if file := e.getenv("GITHUB_OUTPUT"); file != "" {
		return appendLine(file, fmt.Sprintf("%s=%s", name, value))
	}
	fmt.Fprintf(e.stdout, "::set-output name=%s::%s\n", name, value)
	return nil
}

// AddPath registers dir on the executable search path of subsequent steps,
// and prepends it to the current process PATH so the remainder of this run
// sees it too.
func (e *Env) AddPath(dir string) error {
	if file := e.getenv("GITHUB_PATH"); file != "" {
		if err := appendLine(file, dir); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(e.stdout, "::add-path::%s\n", dir)
	}

	path := e.getenv("PATH")
	if err := e.setenv("PATH", dir+string(os.PathListSeparator)+path); err != nil {
		return errors.Wrap(err, "failed to update process PATH")
	}
	return nil
}

// Error emits an error annotation on the workflow run.
func (e *Env) Error(msg string) {
	fmt.Fprintf(e.stdout, "::error::%s\n", msg)
}

func appendLine(file, line string) error {
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", file)
	}

	if _, err := fmt.Fprintln(f, line); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write to %s", file)
	}
	return f.Close()
}
