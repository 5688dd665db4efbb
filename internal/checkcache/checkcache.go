// Package checkcache persists the timestamp of the last update check as a
// plain integer (seconds since epoch) in a single per-user file. Multiple
// launcher invocations may read and write it concurrently with no locking,
// so writes go through a temporary file and rename; last write wins.
package checkcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store reads and writes the last-update-check timestamp.
type Store struct {
	path string
	// nowFunc allows injecting time for testing
	nowFunc func() time.Time
}

// Option is a functional option for configuring Store
type Option func(*Store)

// WithNowFunc sets a custom time function for testing
func WithNowFunc(fn func() time.Time) Option {
	return func(s *Store) {
		s.nowFunc = fn
	}
}

// DefaultPath returns the per-user cache file path, following XDG_STATE_HOME.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "skiff", "last-update-check"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "skiff", "last-update-check"), nil
}

// New creates a store backed by the given file path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Default creates a store at the default per-user path.
func Default(opts ...Option) (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return New(path, opts...), nil
}

// LastCheck returns the recorded timestamp in epoch seconds. A missing or
// unreadable file, or one that does not hold a plain integer, reports no
// entry rather than an error: the caller simply checks again.
func (s *Store) LastCheck() (int64, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, false
	}

	epoch, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return epoch, true
}

// Touch records the current time as the last check. The write is staged in
// a temporary file and renamed into place so a concurrent reader never sees
// a partially written value.
func (s *Store) Touch() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	epoch := strconv.FormatInt(s.nowFunc().Unix(), 10)

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(epoch+"\n"), 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

// Remove deletes the cache file. A missing file is not an error.
func (s *Store) Remove() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}
