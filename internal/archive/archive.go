// Package archive extracts release tarballs and locates the expected
// executable inside them.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrBinaryNotFound is returned when an extracted archive contains neither
// the architecture-qualified executable nor the unqualified fallback.
var ErrBinaryNotFound = errors.New("expected binary not found in archive")

// ExtractTarGz unpacks a .tar.gz archive into destDir. Entries escaping
// destDir are rejected.
func ExtractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("reading gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		target := filepath.Join(destDir, filepath.Clean(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fs.FileMode(hdr.Mode)&0777)
			if err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
			if err := out.Close(); err != nil {
				return err
			}
		default:
			// Symlinks and other entry types are not expected in release
			// tarballs; skip them.
		}
	}
}

// LocateBinary searches the extracted tree for the architecture-qualified
// executable name, falling back to the unqualified name. The returned file
// is marked executable.
func LocateBinary(root, qualified, fallback string) (string, error) {
	for _, name := range []string{qualified, fallback} {
		if name == "" {
			continue
		}
		path, err := findFile(root, name)
		if err != nil {
			return "", err
		}
		if path != "" {
			if err := os.Chmod(path, 0755); err != nil {
				return "", fmt.Errorf("marking %s executable: %w", path, err)
			}
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: tried %q and %q", ErrBinaryNotFound, qualified, fallback)
}

// findFile walks root looking for a regular file with the given base name.
func findFile(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching archive contents: %w", err)
	}
	return found, nil
}
