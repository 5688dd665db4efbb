package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff-launcher/internal/archive"
	"github.com/skiffworks/skiff-launcher/internal/install"
	"github.com/skiffworks/skiff-launcher/internal/logger"
	"github.com/skiffworks/skiff-launcher/internal/output"
	"github.com/skiffworks/skiff-launcher/internal/platform"
	"github.com/skiffworks/skiff-launcher/internal/release"
)

var updateWrapperCmd = &cobra.Command{
	Use:   "update-wrapper",
	Short: "Replace the installed wrapper with the latest launcher release",
	Long: `The wrapper itself is not updated automatically. This command downloads
the latest launcher release and swaps it over the installed wrapper.`,
	Run: runUpdateWrapper,
}

func init() {
	rootCmd.AddCommand(updateWrapperCmd)
}

func runUpdateWrapper(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	inst, err := install.Find(cfg.InstallDir)
	if err != nil {
		logger.Error("%s is not installed; run %q first", install.ProjectName, "skiff install")
		os.Exit(1)
	}

	plat, err := platform.Detect()
	if err != nil {
		logger.Error("unsupported platform: %v", err)
		os.Exit(1)
	}

	source := cfg.LauncherSource
	if source == "" {
		source = release.DefaultLauncherSource
	}

	client := release.NewClient(release.DefaultRetryConfig())
	provider, err := release.NewProvider(source, client)
	if err != nil {
		logger.Error("resolving launcher source: %v", err)
		os.Exit(1)
	}

	rel, err := provider.Latest(ctx)
	if err != nil {
		logger.Error("fetching latest launcher release: %v", err)
		os.Exit(1)
	}

	asset, err := rel.FindAsset(install.LauncherName, plat.Triple)
	if err != nil {
		logger.Error("no launcher artifact for %s: %v", plat.Triple, err)
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "skiff-wrapper-")
	if err != nil {
		logger.Error("creating staging directory: %v", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	archivePath, err := release.Download(ctx, client, asset, tmpDir)
	if err != nil {
		logger.Error("downloading launcher: %v", err)
		os.Exit(1)
	}

	extractDir := filepath.Join(tmpDir, "extract")
	if err := os.MkdirAll(extractDir, 0755); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	if err := archive.ExtractTarGz(archivePath, extractDir); err != nil {
		logger.Error("extracting launcher archive: %v", err)
		os.Exit(1)
	}

	staged, err := archive.LocateBinary(extractDir, install.LauncherName+"-"+plat.Triple, install.LauncherName)
	if err != nil {
		logger.Error("locating launcher binary: %v", err)
		os.Exit(1)
	}

	if err := install.ReplaceBinary(staged, inst.WrapperPath); err != nil {
		logger.Error("replacing wrapper: %v", err)
		os.Exit(1)
	}

	output.PrintSuccess("Wrapper updated to %s", output.FormatVersion(rel.Version()))
}
