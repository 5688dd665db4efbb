package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff-launcher/internal/install"
	"github.com/skiffworks/skiff-launcher/internal/logger"
	"github.com/skiffworks/skiff-launcher/internal/output"
)

var (
	// uninstallYes skips the confirmation prompts
	uninstallYes bool
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove skiff, the wrapper, and optionally its configuration",
	Run:   runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "Assume yes for all prompts")

	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	uninstaller := &install.Uninstaller{
		InstallDir: cfg.InstallDir,
		Yes:        uninstallYes,
	}

	if err := uninstaller.Run(); err != nil {
		if errors.Is(err, install.ErrDeclined) {
			output.PrintInfo("Uninstall cancelled")
			return
		}
		logger.Error("uninstall failed: %v", err)
		os.Exit(1)
	}
}
