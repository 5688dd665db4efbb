package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skiffworks/skiff-launcher/internal/archive"
	"github.com/skiffworks/skiff-launcher/internal/config"
	"github.com/skiffworks/skiff-launcher/internal/logger"
	"github.com/skiffworks/skiff-launcher/internal/output"
	"github.com/skiffworks/skiff-launcher/internal/platform"
	"github.com/skiffworks/skiff-launcher/internal/release"
)

// ErrDeclined is returned when the user declines a confirmation prompt.
// Callers treat it as a clean exit, not a failure.
var ErrDeclined = errors.New("declined by user")

// Installer performs first-time installation: fetch the latest release,
// place the real binary and the wrapper side by side, and write a default
// configuration.
type Installer struct {
	Config   *config.Config
	Provider release.Provider
	Client   *release.Client
	Platform platform.Info

	// Force re-downloads and re-places the binary even when the installed
	// version already matches the latest release.
	Force bool
	// Yes auto-confirms prompts.
	Yes bool

	// probe and searchDirs are injectable for tests.
	probe      func(string) string
	searchDirs []string
}

// Run executes the installation. Failures are fatal to the subcommand;
// partial state (binary placed but no wrapper) is reported, not rolled
// back.
func (i *Installer) Run(ctx context.Context) error {
	rel, err := i.Provider.Latest(ctx)
	if err != nil {
		return fmt.Errorf("fetching release metadata: %w", err)
	}
	latest := rel.Version()
	if latest == "" {
		return fmt.Errorf("release %q has no version", rel.Tag)
	}

	// Pre-install check: short-circuit when an installed binary already
	// reports the latest version.
	if inst, ferr := i.find(); ferr == nil {
		current := i.installedVersion(inst.BinaryPath)
		if !i.Force && current != "" && current == latest {
			output.PrintSuccess("%s %s is already up to date", ProjectName, output.FormatVersion(latest))
			return nil
		}
	}

	tmpDir, err := os.MkdirTemp("", "skiff-install-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	binPath, err := i.fetchBinary(ctx, rel, tmpDir)
	if err != nil {
		return err
	}

	root, err := i.placeWithFallback(binPath, i.preferredDir(), RealBinaryName)
	if err != nil {
		return err
	}
	output.PrintSuccess("Installed %s %s to %s", RealBinaryName, output.FormatVersion(latest), root)

	wrapperSrc, err := i.wrapperSource(ctx, tmpDir)
	if err != nil {
		return fmt.Errorf("obtaining wrapper: %w", err)
	}
	if err := PlaceFile(wrapperSrc, filepath.Join(root, WrapperName)); err != nil {
		return fmt.Errorf("placing wrapper (binary is already installed): %w", err)
	}
	output.PrintSuccess("Installed wrapper to %s", filepath.Join(root, WrapperName))

	i.writeDefaultConfig(root)
	return nil
}

// preferredDir resolves the directory installation should first attempt.
func (i *Installer) preferredDir() string {
	if i.Config.InstallDir != "" {
		return i.Config.InstallDir
	}
	return DefaultSystemDir
}

// fetchBinary downloads the platform artifact, extracts it, and returns
// the path of the executable inside the staging directory.
func (i *Installer) fetchBinary(ctx context.Context, rel *release.Release, tmpDir string) (string, error) {
	asset, err := rel.FindAsset(ProjectName, i.Platform.Triple)
	if err != nil {
		return "", err
	}

	output.PrintInfo("Downloading %s...", asset.Name)
	archivePath, err := release.Download(ctx, i.Client, asset, tmpDir)
	if err != nil {
		return "", err
	}
	if info, serr := os.Stat(archivePath); serr == nil {
		output.PrintInfo("Downloaded %s (%s)", asset.Name, output.FormatBytes(info.Size()))
	}

	extractDir := filepath.Join(tmpDir, "extract")
	if err := os.MkdirAll(extractDir, 0755); err != nil {
		return "", err
	}
	if err := archive.ExtractTarGz(archivePath, extractDir); err != nil {
		return "", err
	}

	return archive.LocateBinary(extractDir, ProjectName+"-"+i.Platform.Triple, ProjectName)
}

// placeWithFallback attempts to place src in the preferred directory,
// falling back to the per-user bin directory when no escalation route can
// write there. Returns the directory that actually received the file.
func (i *Installer) placeWithFallback(src, preferred, name string) (string, error) {
	err := PlaceFile(src, filepath.Join(preferred, name))
	if err == nil {
		return preferred, nil
	}
	if !errors.Is(err, ErrNoEscalation) {
		return "", err
	}

	userBin, uerr := UserBinDir()
	if uerr != nil || userBin == preferred {
		return "", err
	}

	output.PrintWarning("Cannot write to %s", preferred)
	if !i.Yes && output.IsInteractive() {
		if !output.Confirm(fmt.Sprintf("Install to %s instead?", userBin)) {
			return "", ErrDeclined
		}
	}

	if err := PlaceFile(src, filepath.Join(userBin, name)); err != nil {
		return "", err
	}
	if !dirOnPath(userBin) {
		output.PrintWarning("%s is not on your PATH; add it to run %s", userBin, WrapperName)
	}
	return userBin, nil
}

// wrapperSource returns a readable file holding the wrapper executable.
// Normally that is the running installer itself; when the running image is
// not a readable file (e.g. streamed into the process), the launcher
// artifact is downloaded instead.
func (i *Installer) wrapperSource(ctx context.Context, tmpDir string) (string, error) {
	if exe, err := os.Executable(); err == nil {
		if f, oerr := os.Open(exe); oerr == nil {
			f.Close()
			return exe, nil
		}
	}

	logger.Debug("running executable not readable, downloading launcher artifact")

	source := i.Config.LauncherSource
	if source == "" {
		source = release.DefaultLauncherSource
	}
	provider, err := release.NewProvider(source, i.Client)
	if err != nil {
		return "", err
	}
	rel, err := provider.Latest(ctx)
	if err != nil {
		return "", err
	}
	asset, err := rel.FindAsset(LauncherName, i.Platform.Triple)
	if err != nil {
		return "", err
	}

	archivePath, err := release.Download(ctx, i.Client, asset, tmpDir)
	if err != nil {
		return "", err
	}
	launcherDir := filepath.Join(tmpDir, "launcher")
	if err := os.MkdirAll(launcherDir, 0755); err != nil {
		return "", err
	}
	if err := archive.ExtractTarGz(archivePath, launcherDir); err != nil {
		return "", err
	}
	return archive.LocateBinary(launcherDir, LauncherName+"-"+i.Platform.Triple, LauncherName)
}

// writeDefaultConfig writes the default configuration next to the kind of
// installation performed: the system path for system-wide roots, the user
// path otherwise. Failure to write it is a warning, never fatal.
func (i *Installer) writeDefaultConfig(root string) {
	path := config.SystemConfigPath
	if !IsSystemDir(root) {
		userPath, err := config.UserConfigPath()
		if err != nil {
			output.PrintWarning("Cannot write default config: %v", err)
			return
		}
		path = userPath
	}

	written, err := config.WriteDefault(path)
	if err != nil {
		output.PrintWarning("Cannot write default config to %s: %v", path, err)
		return
	}
	if written {
		output.PrintInfo("Wrote default configuration to %s", path)
	}
}

// find locates an existing installation using the injectable search list.
func (i *Installer) find() (*Installation, error) {
	if i.searchDirs != nil {
		return findIn(i.searchDirs)
	}
	return Find(i.Config.InstallDir)
}

// installedVersion probes via the injectable hook when set.
func (i *Installer) installedVersion(binaryPath string) string {
	if i.probe != nil {
		return i.probe(binaryPath)
	}
	return InstalledVersion(binaryPath)
}
