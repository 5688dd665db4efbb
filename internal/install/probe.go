package install

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/skiffworks/skiff-launcher/internal/release"
)

// probeTimeout bounds the version probe; a wedged binary must not stall
// the launcher.
const probeTimeout = 5 * time.Second

// InstalledVersion asks the installed binary for its version and returns
// the normalized version string. Any failure yields an empty string: the
// caller treats an unknown installed version as "update needed / cannot
// short-circuit", never as fatal.
func InstalledVersion(binaryPath string) string {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, binaryPath, "--version").Output()
	if err != nil {
		return ""
	}

	// Expected shapes: "1.4.2", "skiff 1.4.2", "skiff version v1.4.2".
	// The version is the last field of the first line.
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return release.NormalizeTag(fields[len(fields)-1])
}
