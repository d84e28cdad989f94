package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/ruteri/sskr-service/interfaces"
)

const defaultGitHubAPI = "https://api.github.com"

// ErrReadOnlyBackend is returned by Store on backends that cannot write.
var ErrReadOnlyBackend = errors.New("backend is read-only")

// GitHubBackend is a read-only backend for shard sets committed to a GitHub
// repository with the same <type>s/<hex id> layout the file backend writes.
type GitHubBackend struct {
	apiURL      string
	owner       string
	repo        string
	root        string
	ref         string
	token       string
	client      *http.Client
	log         *slog.Logger
	locationURI string
}

// GitHubContent is the subset of the contents API response used here.
type GitHubContent struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
	Size     int    `json:"size"`
}

// NewGitHubBackend creates a backend reading from owner/repo under root.
// ref selects a branch, tag or commit and may be empty. token is optional and
// needed for private repositories.
func NewGitHubBackend(owner, repo, root, ref, token string, log *slog.Logger) *GitHubBackend {
	return &GitHubBackend{
		apiURL:      defaultGitHubAPI,
		owner:       owner,
		repo:        repo,
		root:        strings.Trim(root, "/"),
		ref:         ref,
		token:       token,
		client:      &http.Client{Timeout: 30 * time.Second},
		log:         log,
		locationURI: fmt.Sprintf("github://%s/%s", owner, path.Join(repo, root)),
	}
}

// Fetch downloads the file for id and checks its content hash.
func (b *GitHubBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	content, err := b.fetchContent(ctx, b.filePath(id, contentType))
	if err != nil {
		return nil, err
	}

	if content.Encoding != "base64" {
		return nil, fmt.Errorf("unexpected content encoding: %s", content.Encoding)
	}

	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	if actual := interfaces.ComputeID(data); actual != id {
		b.log.Warn("Content hash mismatch",
			slog.String("expected", id.String()),
			slog.String("actual", actual.String()))
		return nil, fmt.Errorf("content hash mismatch for %s", id.Short())
	}

	b.log.Debug("Fetched content from GitHub",
		slog.String("content_id", id.Short()),
		slog.Int("size", len(data)))

	return data, nil
}

// Store always fails, shard sets are committed to the repository out of band.
func (b *GitHubBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	return interfaces.ComputeID(data), fmt.Errorf("%s: %w", b.Name(), ErrReadOnlyBackend)
}

// Available checks that the repository is reachable.
func (b *GitHubBackend) Available(ctx context.Context) bool {
	req, err := b.newRequest(ctx, fmt.Sprintf("%s/repos/%s/%s", b.apiURL, b.owner, b.repo))
	if err != nil {
		b.log.Debug("Failed to create request", "err", err)
		return false
	}

	resp, err := b.client.Do(req)
	if err != nil {
		b.log.Debug("GitHub backend unavailable", "err", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.log.Debug("GitHub backend unavailable", slog.String("status", resp.Status))
		return false
	}
	return true
}

func (b *GitHubBackend) Name() string {
	return fmt.Sprintf("github-%s-%s", b.owner, b.repo)
}

func (b *GitHubBackend) LocationURI() string {
	return b.locationURI
}

func (b *GitHubBackend) filePath(id interfaces.ContentID, contentType interfaces.ContentType) string {
	return path.Join(b.root, typeDir(contentType), id.String())
}

func (b *GitHubBackend) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	return req, nil
}

func (b *GitHubBackend) fetchContent(ctx context.Context, filePath string) (*GitHubContent, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", b.apiURL, b.owner, b.repo, filePath)
	if b.ref != "" {
		url += "?ref=" + b.ref
	}

	req, err := b.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, interfaces.ErrContentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("GitHub API error: %s, %s", resp.Status, string(body))
	}

	var content GitHubContent
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	if content.Type != "file" {
		return nil, fmt.Errorf("%s is a %s, not a file", filePath, content.Type)
	}
	return &content, nil
}
