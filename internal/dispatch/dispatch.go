// Package dispatch is the wrapper's runtime entry point: on every ordinary
// invocation it triggers the best-effort update check and then transfers
// control to the real binary with the original arguments and streams.
package dispatch

import (
	"context"
	"time"

	"github.com/skiffworks/skiff-launcher/internal/checkcache"
	"github.com/skiffworks/skiff-launcher/internal/config"
	"github.com/skiffworks/skiff-launcher/internal/install"
	"github.com/skiffworks/skiff-launcher/internal/logger"
	"github.com/skiffworks/skiff-launcher/internal/output"
	"github.com/skiffworks/skiff-launcher/internal/platform"
	"github.com/skiffworks/skiff-launcher/internal/release"
	"github.com/skiffworks/skiff-launcher/internal/update"
)

// checkBudget bounds the whole background check, download included, so the
// wrapped command is never held hostage by a slow mirror.
const checkBudget = 30 * time.Second

// Run performs the update check and delegates to the real binary. It only
// returns on failure to exec; on success the process image is replaced and
// the real binary's exit code becomes the wrapper's.
func Run(cfg *config.Config, args []string) error {
	inst, err := install.Find(cfg.InstallDir)
	if err != nil {
		return err
	}

	maybeUpdate(cfg, inst)

	return execBinary(inst.BinaryPath, args)
}

// maybeUpdate runs the update policy. Every failure on this path is
// swallowed: the wrapper must never block or fail the user's command
// because an update check could not complete.
func maybeUpdate(cfg *config.Config, inst *install.Installation) {
	if cfg.UpdateMode == config.ModeNever {
		return
	}

	// The check runs before the user's command and must stay silent on the
	// terminal; its outcome goes to the debug log file instead.
	if err := logger.Default().EnableFileLogging(); err == nil {
		defer logger.Default().Close()
	}

	cache, err := checkcache.Default()
	if err != nil {
		logger.Debug("update check: %v", err)
		return
	}

	plat, err := platform.Detect()
	if err != nil {
		// Unsupported host: nothing to update, run what is installed.
		logger.Debug("update check: %v", err)
		return
	}

	client := release.NewClient(release.BackgroundRetryConfig())
	provider, err := release.NewProvider(cfg.ReleaseSource, client)
	if err != nil {
		logger.Debug("update check: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkBudget)
	defer cancel()

	// Downloads triggered by an accepted update use the patient profile;
	// the user just said yes and is now waiting.
	applyClient := release.NewClient(release.DefaultRetryConfig())

	checker := &update.Checker{
		Config:           cfg,
		Cache:            cache,
		Latest:           provider.Latest,
		InstalledVersion: func() string { return install.InstalledVersion(inst.BinaryPath) },
		Apply: func(ctx context.Context, rel *release.Release) error {
			up := &install.Upgrader{
				Client:       applyClient,
				Platform:     plat,
				Installation: inst,
			}
			return up.Run(ctx, rel)
		},
		Interactive: output.IsInteractive,
		Confirm:     output.Confirm,
	}

	if checker.Run(ctx) == update.OutcomeApplied {
		output.PrintSuccess("Updated %s", install.ProjectName)
	}
}
