// Package archive extracts release archives into a directory.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Format represents the archive format of a release asset.
type Format string

const (
	FormatTarGz Format = "tar.gz"
	FormatZip   Format = "zip"
)

// FormatForExtension maps a platform archive extension to its Format.
// Windows assets ship as zip, everything else as tar.gz.
func FormatForExtension(ext string) Format {
	if strings.EqualFold(ext, "zip") {
		return FormatZip
	}
	return FormatTarGz
}

// Extract unpacks archivePath into destDir using the given format.
func Extract(archivePath, destDir string, format Format) error {
	switch format {
	case FormatTarGz:
		return extractTarGz(archivePath, destDir)
	case FormatZip:
		return extractZip(archivePath, destDir)
	default:
		return fmt.Errorf("unsupported archive format: %s", format)
	}
}

func extractTarGz(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open archive")
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return errors.Wrap(err, "failed to create gzip reader")
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "failed to read tar header")
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
				return errors.Wrap(err, "failed to create directory")
			}
		case tar.TypeReg:
			if err := writeFile(target, tarReader, os.FileMode(header.Mode)); err != nil {
				return err
			}
		}
	}

	return nil
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open zip archive")
	}
	defer reader.Close()

	for _, file := range reader.File {
		target, err := safeJoin(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, file.Mode()); err != nil {
				return errors.Wrap(err, "failed to create directory")
			}
			continue
		}

		fileReader, err := file.Open()
		if err != nil {
			return errors.Wrap(err, "failed to open file in archive")
		}

		err = writeFile(target, fileReader, file.Mode())
		fileReader.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// safeJoin joins an archive entry name onto destDir, rejecting entries that
// would escape it. An entry that cleans to the root itself, like the leading
// "./" directory of a tarball built with tar -C, maps to destDir.
func safeJoin(destDir, name string) (string, error) {
	clean := filepath.Clean(destDir)
	target := filepath.Join(destDir, name)
	if target == clean {
		return clean, nil
	}
	if !strings.HasPrefix(target, clean+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid path in archive: %s", name)
	}
	return target, nil
}

func writeFile(target string, src io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrap(err, "failed to create parent directory")
	}

	file, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}

	if _, err := io.Copy(file, src); err != nil {
		file.Close()
		return errors.Wrap(err, "failed to extract file")
	}

	return file.Close()
}
