//go:build !unix

package dispatch

import (
	"errors"
	"os"
	"os/exec"
)

// execBinary runs the real binary as a child with inherited streams and
// mirrors its exit code. Platforms without exec-style process replacement
// get the closest equivalent.
func execBinary(path string, args []string) error {
	cmd := exec.Command(path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}
	if err != nil {
		return err
	}
	os.Exit(0)
	return nil
}
