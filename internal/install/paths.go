// Package install places, upgrades, and removes the skiff installation:
// the wrapper entry point and the real binary it delegates to, always
// side by side in the same directory.
package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Names of the installed artifacts. The wrapper carries the tool's own
// name so users invoke it directly; the real binary sits next to it.
const (
	ProjectName    = "skiff"
	WrapperName    = "skiff"
	RealBinaryName = "skiff-bin"
	LauncherName   = "skiff-launcher"
)

// DefaultSystemDir is the preferred installation directory.
const DefaultSystemDir = "/usr/local/bin"

// ErrNotInstalled is returned when no installation can be located.
var ErrNotInstalled = errors.New("skiff is not installed")

// Installation describes a located installation. The wrapper and the real
// binary always reside in the same directory.
type Installation struct {
	Root        string
	WrapperPath string
	BinaryPath  string
}

// UserBinDir returns the per-user fallback installation directory.
func UserBinDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "bin"), nil
}

// KnownDirs returns the set of locations searched for an existing
// installation, preferred first. configuredDir may be empty.
func KnownDirs(configuredDir string) []string {
	var dirs []string
	if configuredDir != "" {
		dirs = append(dirs, configuredDir)
	}

	// The directory holding the running executable comes first: the
	// wrapper normally lives next to the binary it launches.
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	dirs = append(dirs, DefaultSystemDir, "/usr/bin")
	if userBin, err := UserBinDir(); err == nil {
		dirs = append(dirs, userBin)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "bin"))
	}
	return dirs
}

// Find locates an existing installation, or returns ErrNotInstalled.
func Find(configuredDir string) (*Installation, error) {
	return findIn(KnownDirs(configuredDir))
}

// findIn returns the first directory in dirs holding the real binary.
func findIn(dirs []string) (*Installation, error) {
	for _, dir := range dirs {
		binaryPath := filepath.Join(dir, RealBinaryName)
		info, err := os.Stat(binaryPath)
		if err != nil || info.IsDir() {
			continue
		}
		return &Installation{
			Root:        dir,
			WrapperPath: filepath.Join(dir, WrapperName),
			BinaryPath:  binaryPath,
		}, nil
	}
	return nil, ErrNotInstalled
}

// IsSystemDir reports whether dir is a system-wide location (one the
// invoking user typically cannot write without escalation).
func IsSystemDir(dir string) bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return true
	}
	return !strings.HasPrefix(dir, home+string(os.PathSeparator)) && dir != home
}

// dirOnPath reports whether dir appears in the PATH search list.
func dirOnPath(dir string) bool {
	for _, p := range filepath.SplitList(os.Getenv("PATH")) {
		if p == "" {
			continue
		}
		if filepath.Clean(p) == filepath.Clean(dir) {
			return true
		}
	}
	return false
}
