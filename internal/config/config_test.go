package config

import (
	"os"
	"path/filepath"
	"testing"
)

func noEnv(string) string { return "" }

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLayeredDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := loadLayered(filepath.Join(dir, "missing-system.toml"), filepath.Join(dir, "missing-user.toml"), noEnv)

	if cfg.UpdateMode != ModePrompt {
		t.Errorf("UpdateMode = %q, want prompt", cfg.UpdateMode)
	}
	if ParseInterval(cfg.UpdateInterval) != 86400 {
		t.Errorf("default interval = %d seconds, want 86400", ParseInterval(cfg.UpdateInterval))
	}
}

func TestLoadLayeredUserWinsOverSystem(t *testing.T) {
	dir := t.TempDir()
	system := writeConfig(t, dir, "system.toml", "update_mode = \"never\"\nupdate_interval = \"1w\"\n")
	user := writeConfig(t, dir, "user.toml", "update_mode = \"auto\"\n")

	cfg := loadLayered(system, user, noEnv)

	if cfg.UpdateMode != ModeAuto {
		t.Errorf("UpdateMode = %q, want auto (user file wins)", cfg.UpdateMode)
	}
	// Keys absent from the user file keep the system value.
	if cfg.UpdateInterval != "1w" {
		t.Errorf("UpdateInterval = %q, want 1w (from system file)", cfg.UpdateInterval)
	}
}

func TestLoadLayeredEnvWinsOverFiles(t *testing.T) {
	dir := t.TempDir()
	user := writeConfig(t, dir, "user.toml", "update_mode = \"auto\"\ninstall_dir = \"/opt/skiff\"\n")

	env := map[string]string{
		EnvUpdateMode:     "never",
		EnvUpdateInterval: "always",
		EnvInstallDir:     "/tmp/bin",
	}
	cfg := loadLayered(filepath.Join(dir, "missing.toml"), user, func(k string) string { return env[k] })

	if cfg.UpdateMode != ModeNever {
		t.Errorf("UpdateMode = %q, want never (env wins)", cfg.UpdateMode)
	}
	if cfg.UpdateInterval != "always" {
		t.Errorf("UpdateInterval = %q, want always", cfg.UpdateInterval)
	}
	if cfg.InstallDir != "/tmp/bin" {
		t.Errorf("InstallDir = %q, want /tmp/bin", cfg.InstallDir)
	}
}

func TestLoadLayeredUnknownModeCoerced(t *testing.T) {
	dir := t.TempDir()
	user := writeConfig(t, dir, "user.toml", "update_mode = \"eventually\"\n")

	cfg := loadLayered(filepath.Join(dir, "missing.toml"), user, noEnv)
	if cfg.UpdateMode != ModePrompt {
		t.Errorf("unknown mode should coerce to prompt, got %q", cfg.UpdateMode)
	}
}

func TestLoadLayeredCorruptFileSkipped(t *testing.T) {
	dir := t.TempDir()
	user := writeConfig(t, dir, "user.toml", "update_mode = [not toml")

	cfg := loadLayered(filepath.Join(dir, "missing.toml"), user, noEnv)
	if cfg.UpdateMode != ModePrompt {
		t.Errorf("corrupt file should leave defaults, got %q", cfg.UpdateMode)
	}
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	written, err := WriteDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if !written {
		t.Fatal("expected a default config to be written")
	}

	cfg := loadLayered(filepath.Join(dir, "missing.toml"), path, noEnv)
	if cfg.UpdateMode != ModePrompt || cfg.UpdateInterval != "24h" {
		t.Errorf("written defaults round-trip mismatch: %+v", cfg)
	}

	// Second call must not clobber an existing file.
	if err := os.WriteFile(path, []byte("update_mode = \"never\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	written, err = WriteDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if written {
		t.Error("WriteDefault overwrote an existing config")
	}
}
