package install

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/skiffworks/skiff-launcher/internal/logger"
	"github.com/skiffworks/skiff-launcher/internal/output"
)

// ErrNoEscalation is returned when a protected path cannot be written and
// no privilege escalation route is available.
var ErrNoEscalation = errors.New("cannot write to protected path and no escalation available")

// PlaceFile installs src at dst with mode 0755. The write is staged next
// to dst and renamed into place, so a concurrent reader of dst never
// observes a partially written file. On permission failure it escalates:
// interactive sudo when a terminal is attached, non-interactive sudo
// otherwise, then gives up with ErrNoEscalation.
//
// This is the single write-protected-path capability shared by the
// installer, the upgrader, and the uninstaller's inverse (RemovePath).
func PlaceFile(src, dst string) error {
	err := placeDirect(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return err
	}
	return placeEscalated(src, dst)
}

// placeDirect stages src as dst.tmp in the destination directory and
// renames it over dst.
func placeDirect(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	tmp := dst + ".tmp"
	if err := copyFile(src, tmp, 0755); err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// placeEscalated copies src over dst via sudo. The staged-then-move shape
// is preserved so even the privileged write is atomic at the live path.
func placeEscalated(src, dst string) error {
	sudo, err := exec.LookPath("sudo")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoEscalation, dst)
	}

	tmp := dst + ".tmp"
	steps := [][]string{
		{"cp", src, tmp},
		{"chmod", "0755", tmp},
		{"mv", tmp, dst},
	}

	interactive := output.IsInteractive()
	if interactive {
		output.PrintInfo("Writing %s requires elevated privileges", dst)
	}

	for _, step := range steps {
		if err := runSudo(sudo, interactive, step...); err != nil {
			runSudo(sudo, false, "rm", "-f", tmp)
			return fmt.Errorf("%w: %s: %v", ErrNoEscalation, dst, err)
		}
	}
	return nil
}

// RemovePath deletes path, escalating on permission failure the same way
// PlaceFile does. A missing path is not an error.
func RemovePath(path string) error {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return err
	}

	sudo, lookErr := exec.LookPath("sudo")
	if lookErr != nil {
		return fmt.Errorf("%w: %s", ErrNoEscalation, path)
	}
	if err := runSudo(sudo, output.IsInteractive(), "rm", "-f", path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNoEscalation, path, err)
	}
	return nil
}

// RemoveDir deletes a directory tree, escalating on permission failure.
func RemoveDir(path string) error {
	err := os.RemoveAll(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return err
	}

	sudo, lookErr := exec.LookPath("sudo")
	if lookErr != nil {
		return fmt.Errorf("%w: %s", ErrNoEscalation, path)
	}
	if err := runSudo(sudo, output.IsInteractive(), "rm", "-rf", path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNoEscalation, path, err)
	}
	return nil
}

// runSudo runs a command under sudo. Interactive mode attaches the
// terminal so sudo can prompt for a password; non-interactive mode uses
// sudo -n, which fails immediately when credentials are not cached.
func runSudo(sudo string, interactive bool, args ...string) error {
	sudoArgs := args
	if !interactive {
		sudoArgs = append([]string{"-n"}, args...)
	}

	cmd := exec.Command(sudo, sudoArgs...)
	if interactive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	logger.Debug("escalating: sudo %v", sudoArgs)
	return cmd.Run()
}

// copyFile copies src to dst with the given mode.
func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
