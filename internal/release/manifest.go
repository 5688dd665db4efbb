package release

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestProvider fetches release metadata from a static host that
// publishes a latest.yml manifest next to its tarballs:
//
//	version: 1.4.2
//	artifacts:
//	  - name: skiff-x86_64-unknown-linux-gnu.tar.gz
//	    sha256: <hex>
//
// Artifact URLs are resolved relative to the manifest's base URL unless the
// manifest gives an absolute url for an entry.
type ManifestProvider struct {
	// BaseURL is the directory URL holding latest.yml and the tarballs
	BaseURL string

	client *Client
}

// NewManifestProvider creates a provider for the given base URL. A URL
// pointing directly at a .yml file is split into base and manifest name.
func NewManifestProvider(baseURL string, client *Client) *ManifestProvider {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if strings.HasSuffix(baseURL, ".yml") || strings.HasSuffix(baseURL, ".yaml") {
		if i := strings.LastIndex(baseURL, "/"); i > 0 {
			baseURL = baseURL[:i]
		}
	}
	return &ManifestProvider{BaseURL: baseURL, client: client}
}

// Name returns the provider name
func (p *ManifestProvider) Name() string {
	return fmt.Sprintf("manifest host (%s)", p.BaseURL)
}

// manifest is the on-the-wire latest.yml structure.
type manifest struct {
	Version   string `yaml:"version"`
	Artifacts []struct {
		Name   string `yaml:"name"`
		URL    string `yaml:"url,omitempty"`
		SHA256 string `yaml:"sha256,omitempty"`
	} `yaml:"artifacts"`
}

// Latest fetches and parses latest.yml.
func (p *ManifestProvider) Latest(ctx context.Context) (*Release, error) {
	resp, err := p.client.Get(ctx, p.BaseURL+"/latest.yml")
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: no latest.yml at %s", ErrNoRelease, p.BaseURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching manifest: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Version == "" {
		return nil, fmt.Errorf("%w: manifest has no version", ErrNoRelease)
	}

	rel := &Release{Tag: m.Version}
	for _, a := range m.Artifacts {
		url := a.URL
		if url == "" {
			url = p.BaseURL + "/" + a.Name
		}
		rel.Assets = append(rel.Assets, Asset{
			Name:   a.Name,
			URL:    url,
			SHA256: a.SHA256,
		})
	}
	return rel, nil
}
