//go:build unix

package dispatch

import (
	"fmt"
	"os"
	"syscall"
)

// execBinary replaces the wrapper process with the real binary. Argument
// list and environment pass through verbatim; stdio, the exit code, and
// signal delivery all belong to the real binary once control transfers.
func execBinary(path string, args []string) error {
	argv := append([]string{path}, args...)
	if err := syscall.Exec(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("executing %s: %w", path, err)
	}
	return nil
}
