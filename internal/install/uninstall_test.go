package install

import (
	"os"
	"path/filepath"
	"testing"
)

func installedTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{RealBinaryName, WrapperName} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("bits"), 0755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestUninstallNotInstalled(t *testing.T) {
	u := &Uninstaller{
		Yes:        true,
		searchDirs: []string{t.TempDir()},
		configDirs: []string{},
	}
	// Absence is the requested end state, so this succeeds.
	if err := u.Run(); err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
}

func TestUninstallRemovesArtifactsAndConfig(t *testing.T) {
	stateDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateDir)
	cachePath := filepath.Join(stateDir, "skiff", "last-update-check")
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cachePath, []byte("1700000000"), 0644); err != nil {
		t.Fatal(err)
	}

	dir := installedTree(t)
	cfgDir := filepath.Join(t.TempDir(), "config")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte("update_mode = \"auto\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	u := &Uninstaller{
		Yes:        true,
		searchDirs: []string{dir},
		configDirs: []string{cfgDir},
	}
	if err := u.Run(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{RealBinaryName, WrapperName} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s still present after uninstall", name)
		}
	}
	if _, err := os.Stat(cfgDir); !os.IsNotExist(err) {
		t.Error("config dir still present after uninstall")
	}
	if _, err := os.Stat(cachePath); !os.IsNotExist(err) {
		t.Error("check-cache file still present after uninstall")
	}
}

func TestUninstallSurvivesMissingWrapper(t *testing.T) {
	dir := t.TempDir()
	// Partial installation: real binary present, wrapper already gone.
	if err := os.WriteFile(filepath.Join(dir, RealBinaryName), []byte("bits"), 0755); err != nil {
		t.Fatal(err)
	}

	u := &Uninstaller{
		Yes:        true,
		searchDirs: []string{dir},
		configDirs: []string{},
	}
	if err := u.Run(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, RealBinaryName)); !os.IsNotExist(err) {
		t.Error("real binary still present after uninstall")
	}
}
