package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	update "github.com/inconshreveable/go-update"

	"github.com/skiffworks/skiff-launcher/internal/archive"
	"github.com/skiffworks/skiff-launcher/internal/logger"
	"github.com/skiffworks/skiff-launcher/internal/platform"
	"github.com/skiffworks/skiff-launcher/internal/release"
)

// Upgrader replaces the installed real binary in place, leaving the
// wrapper untouched. The replacement is fully downloaded, extracted, and
// validated in a staging directory before anything at the live path moves,
// so an interrupted upgrade never leaves a half-written executable where a
// concurrently launched wrapper could find it.
type Upgrader struct {
	Client       *release.Client
	Platform     platform.Info
	Installation *Installation
}

// Run downloads the artifact for the given release and swaps it into place.
// On any failure the existing installed binary is left unmodified.
func (u *Upgrader) Run(ctx context.Context, rel *release.Release) error {
	asset, err := rel.FindAsset(ProjectName, u.Platform.Triple)
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "skiff-upgrade-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	archivePath, err := release.Download(ctx, u.Client, asset, tmpDir)
	if err != nil {
		return err
	}

	extractDir := filepath.Join(tmpDir, "extract")
	if err := os.MkdirAll(extractDir, 0755); err != nil {
		return err
	}
	if err := archive.ExtractTarGz(archivePath, extractDir); err != nil {
		return err
	}

	staged, err := archive.LocateBinary(extractDir, ProjectName+"-"+u.Platform.Triple, ProjectName)
	if err != nil {
		return err
	}

	return ReplaceBinary(staged, u.Installation.BinaryPath)
}

// ReplaceBinary swaps the fully validated staged file over target. When
// the target directory is writable the swap goes through go-update, which
// stages the new image next to the target and renames it into place with
// rollback on failure; otherwise it falls back to the shared escalation
// route.
func ReplaceBinary(staged, target string) error {
	if !dirWritable(filepath.Dir(target)) {
		logger.Debug("direct replace of %s denied, escalating", target)
		return PlaceFile(staged, target)
	}

	f, err := os.Open(staged)
	if err != nil {
		return err
	}
	defer f.Close()

	err = update.Apply(f, update.Options{
		TargetPath: target,
		TargetMode: 0755,
	})
	if err != nil {
		if rerr := update.RollbackError(err); rerr != nil {
			return fmt.Errorf("replacing %s (rollback also failed): %w", target, rerr)
		}
		return fmt.Errorf("replacing %s: %w", target, err)
	}
	return nil
}

// dirWritable probes whether the current user can create files in dir.
func dirWritable(dir string) bool {
	probe, err := os.CreateTemp(dir, ".skiff-write-probe-")
	if err != nil {
		return false
	}
	probe.Close()
	os.Remove(probe.Name())
	return true
}
