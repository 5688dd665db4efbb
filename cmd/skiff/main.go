package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff-launcher/internal/config"
	"github.com/skiffworks/skiff-launcher/internal/dispatch"
	"github.com/skiffworks/skiff-launcher/internal/install"
	"github.com/skiffworks/skiff-launcher/internal/logger"
	"github.com/skiffworks/skiff-launcher/internal/output"
)

var (
	verbose bool
	quiet   bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "skiff",
	Short: "Self-updating launcher for the skiff CLI",
	Long: `The skiff launcher installs the skiff binary, keeps it up to date, and
transparently delegates every ordinary invocation to it. Only the
management commands below are handled by the launcher itself; anything
else is passed to skiff untouched.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetVerbose(true)
			if err := logger.Default().EnableFileLogging(); err != nil {
				logger.Debug("file logging unavailable: %v", err)
			}
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Reached only when skiff is not installed: installing is the
		// default action of a bare invocation.
		runInstall(cmd, args)
	},
}

// managementCommands are intercepted by the launcher. Every other first
// argument belongs to the real binary.
var managementCommands = map[string]bool{
	"install":        true,
	"uninstall":      true,
	"update-wrapper": true,
	"version":        true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func main() {
	args := os.Args[1:]
	cfg := loadConfig()

	if delegate(cfg, args) {
		// Transfers control to the real binary; returns only on failure.
		if err := dispatch.Run(cfg, args); err != nil {
			output.PrintError("%v", err)
			os.Exit(1)
		}
		return
	}

	if len(args) > 0 && !managementCommands[args[0]] && !isFlag(args[0]) {
		output.PrintError("skiff is not installed; run %q first", "skiff install")
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// delegate reports whether this invocation belongs to the real binary:
// anything but a management command, once an installation exists. Flags
// and a bare invocation delegate too, so the real binary's own help is
// what the user sees.
func delegate(cfg *config.Config, args []string) bool {
	if len(args) > 0 && managementCommands[args[0]] {
		return false
	}
	_, err := install.Find(cfg.InstallDir)
	return err == nil
}

// isFlag reports whether the first argument is a flag for the launcher
// itself (e.g. --help on a bare invocation).
func isFlag(arg string) bool {
	return len(arg) > 0 && arg[0] == '-'
}

// loadConfig builds the layered configuration, falling back to defaults
// when the environment is too broken to resolve paths.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Debug("loading config: %v", err)
		return config.Defaults()
	}
	return cfg
}
