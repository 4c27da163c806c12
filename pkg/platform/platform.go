// Package platform maps host OS and architecture identifiers to the names
// used by go-task/task release assets.
package platform

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrUnsupportedOS is returned when the host operating system has no
	// published Task release asset.
	ErrUnsupportedOS = errors.New("unsupported operating system")

	// ErrUnsupportedArch is returned when the host architecture has no
	// published Task release asset.
	ErrUnsupportedArch = errors.New("unsupported architecture")
)

// Platform identifies a release asset: the vendor's OS and arch names plus
// the archive extension used for that OS family.
type Platform struct {
	OS   string
	Arch string
	Ext  string
}

// Detect resolves the platform for the current host.
func Detect() (Platform, error) {
	return Resolve(runtime.GOOS, runtime.GOARCH)
}

// Resolve maps Go OS/arch identifiers to the Task release naming scheme.
// It is a pure function; unsupported identifiers fail before any network or
// cache activity happens.
func Resolve(goos, goarch string) (Platform, error) {
	var osName, ext string
	switch goos {
	case "linux":
		osName, ext = "linux", "tar.gz"
	case "darwin":
		osName, ext = "darwin", "tar.gz"
	case "windows":
		osName, ext = "windows", "zip"
	case "freebsd":
		osName, ext = "freebsd", "tar.gz"
	default:
		return Platform{}, fmt.Errorf("%w: %q", ErrUnsupportedOS, goos)
	}

	var arch string
	switch goarch {
	case "amd64":
		arch = "amd64"
	case "arm64":
		arch = "arm64"
	case "arm":
		arch = "arm"
	case "386":
		arch = "386"
	default:
		return Platform{}, fmt.Errorf("%w: %q", ErrUnsupportedArch, goarch)
	}

	return Platform{OS: osName, Arch: arch, Ext: ext}, nil
}
