package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeTarGz builds a tarball with the given file names and contents.
func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	for name, content := range files {
		hdr := &tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractAndLocateQualified(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "skiff.tar.gz")
	writeTarGz(t, archivePath, map[string]string{
		"skiff-1.4.2/skiff-x86_64-unknown-linux-gnu": "elf bits",
		"skiff-1.4.2/README.md":                      "docs",
	})

	dest := t.TempDir()
	if err := ExtractTarGz(archivePath, dest); err != nil {
		t.Fatal(err)
	}

	path, err := LocateBinary(dest, "skiff-x86_64-unknown-linux-gnu", "skiff")
	if err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&0111 == 0 {
		t.Error("located binary is not executable")
	}
}

func TestLocateFallsBackToUnqualifiedName(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "skiff.tar.gz")
	writeTarGz(t, archivePath, map[string]string{
		"skiff": "elf bits",
	})

	dest := t.TempDir()
	if err := ExtractTarGz(archivePath, dest); err != nil {
		t.Fatal(err)
	}

	path, err := LocateBinary(dest, "skiff-x86_64-unknown-linux-gnu", "skiff")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "skiff" {
		t.Errorf("located %q, want the unqualified fallback", path)
	}
}

func TestLocateBinaryMissing(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "skiff.tar.gz")
	writeTarGz(t, archivePath, map[string]string{"LICENSE": "MIT"})

	dest := t.TempDir()
	if err := ExtractTarGz(archivePath, dest); err != nil {
		t.Fatal(err)
	}

	if _, err := LocateBinary(dest, "skiff-x86_64-unknown-linux-gnu", "skiff"); !errors.Is(err, ErrBinaryNotFound) {
		t.Errorf("expected ErrBinaryNotFound, got %v", err)
	}
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.tar.gz")
	writeTarGz(t, archivePath, map[string]string{
		"../outside": "nope",
	})

	if err := ExtractTarGz(archivePath, t.TempDir()); err == nil {
		t.Error("traversal entry should fail extraction")
	}
}
