//go:build unix

package install

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeBinary writes an executable shell script that prints the given
// output on --version.
func fakeBinary(t *testing.T, output string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), RealBinaryName)
	script := "#!/bin/sh\nprintf '%s\\n' \"" + output + "\"\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInstalledVersion(t *testing.T) {
	cases := []struct {
		name   string
		output string
		want   string
	}{
		{"bare version", "1.4.2", "1.4.2"},
		{"name and version", "skiff 1.4.2", "1.4.2"},
		{"verbose form", "skiff version v1.4.2", "1.4.2"},
		{"multiline takes first line", "skiff 2.0.0\nbuilt 2026-01-01", "2.0.0"},
		{"empty output", "", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			bin := fakeBinary(t, c.output)
			if got := InstalledVersion(bin); got != c.want {
				t.Errorf("InstalledVersion = %q, want %q", got, c.want)
			}
		})
	}
}

func TestInstalledVersionMissingBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent")
	if got := InstalledVersion(path); got != "" {
		t.Errorf("InstalledVersion of missing binary = %q, want empty", got)
	}
}

func TestInstalledVersionFailingBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), RealBinaryName)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 1\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if got := InstalledVersion(path); got != "" {
		t.Errorf("InstalledVersion of failing binary = %q, want empty", got)
	}
}
