package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff-launcher/internal/install"
	"github.com/skiffworks/skiff-launcher/internal/output"
)

// launcherVersion is set at build time via -ldflags.
var launcherVersion = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show launcher and installed skiff versions",
	Long: `Report the launcher's own version and the version of the installed skiff
binary. This command is answered by the launcher, so "skiff version" never
reaches the real binary; use "skiff --version" to query the binary directly.`,
	Run: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("launcher %s\n", output.FormatVersion(launcherVersion))

	cfg := loadConfig()
	inst, err := install.Find(cfg.InstallDir)
	if err != nil {
		fmt.Printf("%s not installed\n", install.ProjectName)
		return
	}

	installed := install.InstalledVersion(inst.BinaryPath)
	if installed == "" {
		fmt.Printf("%s installed at %s (version unknown)\n", install.ProjectName, inst.BinaryPath)
		return
	}
	fmt.Printf("%s %s (%s)\n", install.ProjectName, output.FormatVersion(installed), inst.BinaryPath)
}
