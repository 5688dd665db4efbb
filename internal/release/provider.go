// Package release fetches release metadata and binary artifacts for the
// skiff tool. Two provider implementations exist: the GitHub releases API
// and a static host publishing a latest.yml manifest next to its tarballs.
package release

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Error variables for release errors
var (
	// ErrNoRelease is returned when the source has no published release
	ErrNoRelease = errors.New("no release found")
	// ErrNoArtifact is returned when a release has no artifact for the
	// requested platform triple
	ErrNoArtifact = errors.New("no artifact for this platform")
	// ErrChecksumMismatch is returned when a downloaded artifact does not
	// match its published SHA-256 digest
	ErrChecksumMismatch = errors.New("artifact checksum mismatch")
)

// DefaultSource is the release source used when neither the configuration
// nor the environment overrides it.
const DefaultSource = "github:skiffworks/skiff"

// DefaultLauncherSource is where the wrapper fetches its own replacement
// when the running executable is not a readable file, and for the
// update-wrapper subcommand.
const DefaultLauncherSource = "github:skiffworks/skiff-launcher"

// Asset is a single downloadable artifact attached to a release.
type Asset struct {
	// Name is the artifact file name, e.g. "skiff-x86_64-unknown-linux-gnu.tar.gz"
	Name string
	// URL is the absolute download URL
	URL string
	// SHA256 is the hex digest of the artifact, empty when the source does
	// not publish one
	SHA256 string
}

// Release is the metadata for one published release.
type Release struct {
	// Tag is the opaque release tag as published (e.g. "v1.4.2")
	Tag string
	// Assets are the downloadable artifacts
	Assets []Asset
}

// Version returns the comparable version string extracted from the tag.
func (r *Release) Version() string {
	return NormalizeTag(r.Tag)
}

// FindAsset returns the artifact named for the given platform triple, or
// ErrNoArtifact.
func (r *Release) FindAsset(project, triple string) (Asset, error) {
	want := fmt.Sprintf("%s-%s.tar.gz", project, triple)
	for _, a := range r.Assets {
		if a.Name == want {
			return a, nil
		}
	}
	return Asset{}, fmt.Errorf("%w: %s", ErrNoArtifact, want)
}

// Provider fetches release metadata from a remote source.
type Provider interface {
	// Latest returns the most recent published release
	Latest(ctx context.Context) (*Release, error)
	// Name returns a human-readable name for this provider
	Name() string
}

// NewProvider selects a provider for the given source string.
//
//	github:<owner>/<repo>   GitHub releases API
//	http(s)://...           static host with a latest.yml manifest
//
// An empty source falls back to DefaultSource.
func NewProvider(source string, client *Client) (Provider, error) {
	if source == "" {
		source = DefaultSource
	}

	switch {
	case strings.HasPrefix(source, "github:"):
		repo := strings.TrimPrefix(source, "github:")
		if !strings.Contains(repo, "/") {
			return nil, fmt.Errorf("invalid github source %q: want github:<owner>/<repo>", source)
		}
		return NewGitHubProvider(repo, client), nil

	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return NewManifestProvider(source, client), nil

	default:
		return nil, fmt.Errorf("unrecognized release source %q", source)
	}
}

// Download fetches an asset into destDir, verifying its SHA-256 digest when
// one is published. Returns the path of the downloaded file.
func Download(ctx context.Context, client *Client, asset Asset, destDir string) (string, error) {
	resp, err := client.Get(ctx, asset.URL)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", asset.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: HTTP %d", asset.Name, resp.StatusCode)
	}

	destPath := filepath.Join(destDir, asset.Name)
	f, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", destPath, err)
	}

	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(f, hash), resp.Body); err != nil {
		f.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("downloading %s: %w", asset.Name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(destPath)
		return "", err
	}

	if asset.SHA256 != "" {
		got := hex.EncodeToString(hash.Sum(nil))
		if !strings.EqualFold(got, asset.SHA256) {
			os.Remove(destPath)
			return "", fmt.Errorf("%w: %s: expected %s, got %s", ErrChecksumMismatch, asset.Name, asset.SHA256, got)
		}
	}

	return destPath, nil
}
