// Package config loads the launcher configuration from its layered sources:
// built-in defaults, the system-wide file, the per-user file, and finally
// environment variable overrides. The result is an explicit Config struct
// threaded through every component; nothing reads the environment after
// startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Mode governs whether update checks lead to automatic, prompted, or no
// application of updates.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModePrompt Mode = "prompt"
	ModeNever  Mode = "never"
)

// Environment variable overrides. These win over both config files.
const (
	EnvInstallDir     = "SKIFF_INSTALL_DIR"
	EnvUpdateMode     = "SKIFF_UPDATE_MODE"
	EnvUpdateInterval = "SKIFF_UPDATE_INTERVAL"
	EnvLauncherSource = "SKIFF_LAUNCHER_SOURCE"
	EnvReleaseSource  = "SKIFF_RELEASE_SOURCE"
)

// SystemConfigPath is the system-wide configuration file, consulted when
// the installation lives in a system-wide location.
const SystemConfigPath = "/etc/skiff/config.toml"

// Config holds the launcher configuration.
type Config struct {
	// UpdateMode is one of auto, prompt, never
	UpdateMode Mode `toml:"update_mode"`
	// UpdateInterval is the minimum time between background update checks,
	// in the format accepted by ParseInterval (e.g. "24h", "30 minutes",
	// "always")
	UpdateInterval string `toml:"update_interval"`
	// InstallDir overrides the preferred installation directory
	InstallDir string `toml:"install_dir,omitempty"`
	// ReleaseSource overrides where release metadata and artifacts come from
	ReleaseSource string `toml:"release_source,omitempty"`
	// LauncherSource overrides where update-wrapper fetches the launcher
	// binary itself
	LauncherSource string `toml:"launcher_source,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		UpdateMode:     ModePrompt,
		UpdateInterval: "24h",
	}
}

// UserConfigPath returns the per-user configuration file path, following
// XDG_CONFIG_HOME.
func UserConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "skiff", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "skiff", "config.toml"), nil
}

// Load builds the effective configuration from all layers.
func Load() (*Config, error) {
	userPath, err := UserConfigPath()
	if err != nil {
		return nil, err
	}
	return loadLayered(SystemConfigPath, userPath, os.Getenv), nil
}

// loadLayered merges defaults, the system file, the user file, and
// environment overrides, in that order. Missing or unreadable files are
// skipped; the launcher must work with no configuration at all.
func loadLayered(systemPath, userPath string, getenv func(string) string) *Config {
	cfg := Defaults()

	mergeFile(cfg, systemPath)
	mergeFile(cfg, userPath)

	if v := getenv(EnvUpdateMode); v != "" {
		cfg.UpdateMode = Mode(v)
	}
	if v := getenv(EnvUpdateInterval); v != "" {
		cfg.UpdateInterval = v
	}
	if v := getenv(EnvInstallDir); v != "" {
		cfg.InstallDir = v
	}
	if v := getenv(EnvReleaseSource); v != "" {
		cfg.ReleaseSource = v
	}
	if v := getenv(EnvLauncherSource); v != "" {
		cfg.LauncherSource = v
	}

	cfg.UpdateMode = normalizeMode(cfg.UpdateMode)
	return cfg
}

// mergeFile overlays values from a TOML file onto cfg. Only keys present in
// the file replace earlier layers.
func mergeFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var layer Config
	if err := toml.Unmarshal(data, &layer); err != nil {
		return
	}

	if layer.UpdateMode != "" {
		cfg.UpdateMode = layer.UpdateMode
	}
	if layer.UpdateInterval != "" {
		cfg.UpdateInterval = layer.UpdateInterval
	}
	if layer.InstallDir != "" {
		cfg.InstallDir = layer.InstallDir
	}
	if layer.ReleaseSource != "" {
		cfg.ReleaseSource = layer.ReleaseSource
	}
	if layer.LauncherSource != "" {
		cfg.LauncherSource = layer.LauncherSource
	}
}

// normalizeMode coerces unknown modes to the prompt default. User-facing
// configuration stays permissive rather than failing the launch.
func normalizeMode(m Mode) Mode {
	switch m {
	case ModeAuto, ModePrompt, ModeNever:
		return m
	default:
		return ModePrompt
	}
}

// WriteDefault writes the default configuration to path unless a file
// already exists there. Returns true when a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(Defaults()); err != nil {
		return false, fmt.Errorf("writing default config: %w", err)
	}
	return true, nil
}
