package install

import (
	"os"
	"path/filepath"
	"testing"
)

func stageFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staged")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlaceFileWritableDir(t *testing.T) {
	src := stageFile(t, "elf bits")
	dir := t.TempDir()
	dst := filepath.Join(dir, RealBinaryName)

	if err := PlaceFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "elf bits" {
		t.Errorf("placed content = %q", got)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}

	if _, err := os.Stat(dst + ".tmp"); !os.IsNotExist(err) {
		t.Error("staging file left behind")
	}
}

func TestPlaceFileCreatesDestinationDir(t *testing.T) {
	src := stageFile(t, "elf bits")
	dst := filepath.Join(t.TempDir(), "nested", "bin", RealBinaryName)

	if err := PlaceFile(src, dst); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatal(err)
	}
}

func TestPlaceFileOverwritesExisting(t *testing.T) {
	src := stageFile(t, "new image")
	dir := t.TempDir()
	dst := filepath.Join(dir, RealBinaryName)
	if err := os.WriteFile(dst, []byte("old image"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := PlaceFile(src, dst); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "new image" {
		t.Errorf("content after overwrite = %q", got)
	}
}

func TestRemovePathMissingIsFine(t *testing.T) {
	if err := RemovePath(filepath.Join(t.TempDir(), "gone")); err != nil {
		t.Errorf("RemovePath of missing path = %v, want nil", err)
	}
}

func TestReplaceBinaryWritableTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, RealBinaryName)
	if err := os.WriteFile(target, []byte("old image"), 0755); err != nil {
		t.Fatal(err)
	}
	staged := stageFile(t, "new image")

	if err := ReplaceBinary(staged, target); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new image" {
		t.Errorf("content after replace = %q", got)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files in target dir: %v", entries)
	}
}

func TestDirWritable(t *testing.T) {
	if !dirWritable(t.TempDir()) {
		t.Error("temp dir reported unwritable")
	}
	if dirWritable(filepath.Join(t.TempDir(), "missing")) {
		t.Error("missing dir reported writable")
	}
}
