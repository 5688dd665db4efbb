// Package update implements the per-invocation update decision: whether to
// check for a newer release, whether to apply it, and how the answer is
// gated by the configured mode, the check interval, and terminal
// interactivity. The whole path is best-effort; nothing here may block or
// fail the user's underlying command.
package update

import (
	"context"
	"time"

	"github.com/skiffworks/skiff-launcher/internal/config"
	"github.com/skiffworks/skiff-launcher/internal/logger"
	"github.com/skiffworks/skiff-launcher/internal/release"
)

// Outcome describes what the policy decided on one invocation.
type Outcome int

const (
	// OutcomeDisabled means update_mode=never: no cache read, no network.
	OutcomeDisabled Outcome = iota
	// OutcomeThrottled means the cached last-check is within the interval.
	OutcomeThrottled
	// OutcomeNoUpdate means the check ran and versions already match (or
	// either version was unknown).
	OutcomeNoUpdate
	// OutcomeSkipped means an update exists but was not applied (prompt
	// declined, or prompting impossible non-interactively).
	OutcomeSkipped
	// OutcomeApplied means an update was applied.
	OutcomeApplied
	// OutcomeFailed means the check or apply failed; the failure is
	// swallowed by design.
	OutcomeFailed
)

// CacheStore is the slice of the check cache the policy needs.
type CacheStore interface {
	LastCheck() (int64, bool)
	Touch() error
}

// Checker holds the collaborators for one policy run. All remote and
// filesystem access goes through these fields so tests can observe exactly
// which accesses occur.
type Checker struct {
	Config *config.Config
	Cache  CacheStore

	// Latest fetches the most recent release metadata.
	Latest func(ctx context.Context) (*release.Release, error)
	// InstalledVersion probes the installed binary; empty means unknown.
	InstalledVersion func() string
	// Apply replaces the installed binary with the given release.
	Apply func(ctx context.Context, rel *release.Release) error
	// Interactive reports whether a prompt could be answered.
	Interactive func() bool
	// Confirm asks the user; only called when Interactive() is true.
	Confirm func(prompt string) bool
	// Now allows injecting time for testing; nil means time.Now.
	Now func() time.Time
}

// Run executes the update decision. It never returns an error: every
// failure on this path is advisory and is logged at debug level only.
func (c *Checker) Run(ctx context.Context) Outcome {
	if c.Config.UpdateMode == config.ModeNever {
		return OutcomeDisabled
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	interval := config.ParseInterval(c.Config.UpdateInterval)
	if interval > 0 {
		if last, ok := c.Cache.LastCheck(); ok {
			if now().Unix()-last < interval {
				return OutcomeThrottled
			}
		}
	}

	// The timestamp is refreshed before the network call, and regardless
	// of its outcome: a transient outage must not cause a check storm.
	if err := c.Cache.Touch(); err != nil {
		logger.Debug("update check: recording timestamp: %v", err)
	}

	rel, err := c.Latest(ctx)
	if err != nil {
		logger.Debug("update check: %v", err)
		return OutcomeFailed
	}

	latest := rel.Version()
	current := c.InstalledVersion()
	if latest == "" || current == "" || latest == current {
		return OutcomeNoUpdate
	}

	switch c.Config.UpdateMode {
	case config.ModeAuto:
		return c.apply(ctx, rel)

	case config.ModePrompt:
		if !c.Interactive() {
			return OutcomeSkipped
		}
		if !c.Confirm("A new version of skiff is available (" + current + " -> " + latest + "). Update now?") {
			return OutcomeSkipped
		}
		return c.apply(ctx, rel)

	default:
		return OutcomeSkipped
	}
}

func (c *Checker) apply(ctx context.Context, rel *release.Release) Outcome {
	// The check budget bounds only the metadata fetch. By the time an
	// update is being applied the download is the command, not background
	// work; answering a prompt slowly must not expire it.
	ctx = context.WithoutCancel(ctx)
	if err := c.Apply(ctx, rel); err != nil {
		logger.Debug("applying update: %v", err)
		return OutcomeFailed
	}
	logger.Debug("updated to %s", rel.Version())
	return OutcomeApplied
}
