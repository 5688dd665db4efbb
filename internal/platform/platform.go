// Package platform detects the host CPU architecture and C library variant
// and maps them to the artifact triple used in release file names.
package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Error variables for platform detection errors
var (
	// ErrUnsupportedArch is returned when the host CPU architecture has no
	// published release artifacts
	ErrUnsupportedArch = errors.New("unsupported CPU architecture")
	// ErrUnsupportedOS is returned when the host operating system has no
	// published release artifacts
	ErrUnsupportedOS = errors.New("unsupported operating system")
)

// archMap translates Go's GOARCH values to the architecture component of
// the release triple. Only two families are published.
var archMap = map[string]string{
	"amd64": "x86_64",
	"arm64": "aarch64",
}

// Libc identifies the C library variant a release artifact is linked against.
type Libc string

const (
	LibcGNU  Libc = "gnu"
	LibcMusl Libc = "musl"
)

// Info holds the detected platform information.
type Info struct {
	// Arch is the normalized architecture identifier (x86_64 or aarch64)
	Arch string
	// Libc is the detected C library variant (gnu or musl)
	Libc Libc
	// Triple is the full artifact selector, e.g. "x86_64-unknown-linux-gnu"
	Triple string
}

// Detect returns platform information for the current host.
// It fails with ErrUnsupportedArch or ErrUnsupportedOS when no release
// artifact exists for this machine.
func Detect() (Info, error) {
	return detect(runtime.GOOS, runtime.GOARCH, detectLibc("/"))
}

func detect(goos, goarch string, libc Libc) (Info, error) {
	if goos != "linux" {
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
	}

	arch, ok := archMap[goarch]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupportedArch, goarch)
	}

	return Info{
		Arch:   arch,
		Libc:   libc,
		Triple: triple(arch, libc),
	}, nil
}

// triple builds the <arch>-<vendor>-<os>-<libc> artifact selector.
func triple(arch string, libc Libc) string {
	return fmt.Sprintf("%s-unknown-linux-%s", arch, libc)
}

// detectLibc probes for musl runtime markers under the given filesystem
// root. It checks for the musl dynamic linker first and falls back to
// asking ldd to identify itself; anything inconclusive is treated as glibc.
func detectLibc(root string) Libc {
	if muslLinkerPresent(root) {
		return LibcMusl
	}

	// ldd --version prints "musl libc" on musl systems (to stderr on some).
	out, _ := exec.Command("ldd", "--version").CombinedOutput()
	if strings.Contains(strings.ToLower(string(out)), "musl") {
		return LibcMusl
	}

	return LibcGNU
}

// muslLinkerPresent reports whether the musl dynamic linker exists under root.
func muslLinkerPresent(root string) bool {
	matches, _ := filepath.Glob(filepath.Join(root, "lib", "ld-musl-*.so.1"))
	return len(matches) > 0
}
