package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff-launcher/internal/install"
	"github.com/skiffworks/skiff-launcher/internal/logger"
	"github.com/skiffworks/skiff-launcher/internal/output"
	"github.com/skiffworks/skiff-launcher/internal/platform"
	"github.com/skiffworks/skiff-launcher/internal/release"
)

var (
	// installForce reinstalls even when the latest version is present
	installForce bool
	// installYes answers prompts affirmatively
	installYes bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install skiff and this launcher wrapper",
	Long: `Download the latest skiff release for this machine, place the binary and
the wrapper on PATH, and write a default configuration file.

Examples:
  skiff install            Install the latest release
  skiff install --force    Reinstall even if already up to date
  skiff install --yes      Accept fallback locations without prompting`,
	Run: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installForce, "force", "f", false, "Reinstall even when up to date")
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "Assume yes for all prompts")

	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	plat, err := platform.Detect()
	if err != nil {
		logger.Error("unsupported platform: %v", err)
		os.Exit(1)
	}

	client := release.NewClient(release.DefaultRetryConfig())
	provider, err := release.NewProvider(cfg.ReleaseSource, client)
	if err != nil {
		logger.Error("resolving release source: %v", err)
		os.Exit(1)
	}

	installer := &install.Installer{
		Config:   cfg,
		Provider: provider,
		Client:   client,
		Platform: plat,
		Force:    installForce,
		Yes:      installYes,
	}

	if err := installer.Run(context.Background()); err != nil {
		if errors.Is(err, install.ErrDeclined) {
			output.PrintInfo("Installation cancelled")
			return
		}
		logger.Error("install failed: %v", err)
		os.Exit(1)
	}
}
