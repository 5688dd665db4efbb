package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skiffworks/skiff-launcher/internal/checkcache"
	"github.com/skiffworks/skiff-launcher/internal/config"
	"github.com/skiffworks/skiff-launcher/internal/output"
)

// Uninstaller locates and removes the installed artifacts and, after a
// separate confirmation, the configuration directories.
type Uninstaller struct {
	// InstallDir is the configured install directory, searched first.
	InstallDir string
	// Yes auto-confirms all prompts.
	Yes bool

	// searchDirs is injectable for tests; nil uses KnownDirs.
	searchDirs []string
	// configDirs is injectable for tests; nil uses the real paths.
	configDirs []string
}

// Run removes the installation. A missing installation reports "not
// installed" and succeeds; the launcher being absent is the state the user
// asked for.
func (u *Uninstaller) Run() error {
	dirs := u.searchDirs
	if dirs == nil {
		dirs = KnownDirs(u.InstallDir)
	}

	inst, err := findIn(dirs)
	if err != nil {
		if errors.Is(err, ErrNotInstalled) {
			output.PrintInfo("%s is not installed", ProjectName)
			return nil
		}
		return err
	}

	confDirs := u.configDirs
	if confDirs == nil {
		confDirs = configDirectories()
	}

	output.Header.Println("The following will be removed:")
	fmt.Printf("  %s\n", inst.BinaryPath)
	fmt.Printf("  %s\n", inst.WrapperPath)
	for _, d := range confDirs {
		fmt.Printf("  %s (configuration)\n", d)
	}

	if !u.confirm("Remove binary and wrapper?") {
		return ErrDeclined
	}

	// The two artifacts are removed independently: failing on one must not
	// prevent attempting the other.
	var failures []error
	for _, path := range []string{inst.BinaryPath, inst.WrapperPath} {
		if err := RemovePath(path); err != nil {
			output.PrintError("Removing %s: %v", path, err)
			failures = append(failures, err)
			continue
		}
		output.PrintSuccess("Removed %s", path)
	}

	// The last-check timestamp belongs to the installation, not the
	// configuration, so it goes with the artifacts.
	if cache, cerr := checkcache.Default(); cerr == nil {
		if err := cache.Remove(); err != nil {
			output.PrintWarning("Removing %s: %v", cache.Path(), err)
		}
	}

	if len(confDirs) > 0 && u.confirm("Also remove configuration directories?") {
		for _, dir := range confDirs {
			if err := RemoveDir(dir); err != nil {
				output.PrintError("Removing %s: %v", dir, err)
				failures = append(failures, err)
				continue
			}
			output.PrintSuccess("Removed %s", dir)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("uninstall incomplete: %d item(s) could not be removed", len(failures))
	}
	return nil
}

// confirm prompts unless prompting is impossible or waived; any context
// that cannot answer is treated as assent, matching --yes.
func (u *Uninstaller) confirm(prompt string) bool {
	if u.Yes || !output.IsInteractive() {
		return true
	}
	return output.Confirm(prompt)
}

// configDirectories returns the existing configuration and state
// directories belonging to the launcher.
func configDirectories() []string {
	var dirs []string

	candidates := []string{filepath.Dir(config.SystemConfigPath)}
	if userPath, err := config.UserConfigPath(); err == nil {
		candidates = append(candidates, filepath.Dir(userPath))
	}
	if cachePath, err := checkcache.DefaultPath(); err == nil {
		candidates = append(candidates, filepath.Dir(cachePath))
	}

	for _, d := range candidates {
		if _, err := os.Stat(d); err == nil {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
