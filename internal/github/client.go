// Package github fetches repository README content through the GitHub
// contents API.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrInvalidRepoURL means the input does not look like a GitHub
	// repository URL.
	ErrInvalidRepoURL = errors.New("invalid github url format")
	// ErrReadmeNotFound means the repository exists but has no README.md.
	ErrReadmeNotFound = errors.New("readme not found in repository")
)

// UpstreamError carries a non-404 failure status from the GitHub API.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github api returned status %d", e.StatusCode)
}

var repoURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)

// HTTPClient is the subset of http.Client the client needs, so tests can
// substitute their own transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	httpClient HTTPClient
	baseURL    string
}

type Option func(*Client)

func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.github.com",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Readme is the decoded README.md of a repository.
type Readme struct {
	Content     string
	Size        int
	SHA         string
	DownloadURL string
}

// ParseRepoURL extracts the owner and repository name from a GitHub URL.
func ParseRepoURL(githubURL string) (owner, repo string, err error) {
	match := repoURLPattern.FindStringSubmatch(githubURL)
	if match == nil {
		return "", "", ErrInvalidRepoURL
	}
	return match[1], match[2], nil
}

// GetReadme fetches and decodes README.md for the repository at githubURL.
func (c *Client) GetReadme(ctx context.Context, githubURL string) (*Readme, error) {
	owner, repo, err := ParseRepoURL(githubURL)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/contents/README.md", c.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "dandi-api")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrReadmeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: resp.StatusCode}
	}

	var payload struct {
		Content     string `json:"content"`
		Encoding    string `json:"encoding"`
		Size        int    `json:"size"`
		SHA         string `json:"sha"`
		DownloadURL string `json:"download_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode github response: %w", err)
	}

	content := payload.Content
	if payload.Encoding == "base64" || payload.Encoding == "" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to decode readme content: %w", err)
		}
		content = string(decoded)
	}

	return &Readme{
		Content:     content,
		Size:        payload.Size,
		SHA:         payload.SHA,
		DownloadURL: payload.DownloadURL,
	}, nil
}
