package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GitHubProvider fetches release metadata from the GitHub releases API.
type GitHubProvider struct {
	// BaseURL is the API root, overridable for testing
	BaseURL string
	// Repository is the <owner>/<repo> slug
	Repository string
	// UserAgent is sent with every request; GitHub rejects anonymous agents
	UserAgent string

	client *Client
}

// NewGitHubProvider creates a provider for the given <owner>/<repo> slug.
func NewGitHubProvider(repository string, client *Client) *GitHubProvider {
	return &GitHubProvider{
		BaseURL:    "https://api.github.com",
		Repository: repository,
		UserAgent:  "skiff-launcher",
		client:     client,
	}
}

// Name returns the provider name
func (p *GitHubProvider) Name() string {
	return fmt.Sprintf("GitHub releases (%s)", p.Repository)
}

// githubRelease mirrors the fields of the releases API response we consume.
type githubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Digest             string `json:"digest"` // "sha256:<hex>" when present
	} `json:"assets"`
}

// Latest fetches the most recent non-draft, non-prerelease release.
func (p *GitHubProvider) Latest(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", p.BaseURL, p.Repository)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNoRelease, p.Repository)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching latest release: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading release metadata: %w", err)
	}

	var gr githubRelease
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("parsing release metadata: %w", err)
	}
	if gr.TagName == "" {
		return nil, fmt.Errorf("%w: release has no tag", ErrNoRelease)
	}

	rel := &Release{Tag: gr.TagName}
	for _, a := range gr.Assets {
		var digest string
		if strings.HasPrefix(a.Digest, "sha256:") {
			digest = strings.TrimPrefix(a.Digest, "sha256:")
		}
		rel.Assets = append(rel.Assets, Asset{
			Name:   a.Name,
			URL:    a.BrowserDownloadURL,
			SHA256: digest,
		})
	}
	return rel, nil
}
