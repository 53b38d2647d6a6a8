// Package github is a thin typed gateway over the Git hosting provider's
// content, branch and pull-request endpoints. Not-found responses are
// normalized into plain absent results; every other non-2xx response is a
// hard error. The gateway never retries; the save path is single-attempt and
// fail-fast.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pokrova/contentctl/internal/models"
)

// Gateway defines the provider operations the content workflow depends on.
type Gateway interface {
	// GetFile fetches a file's decoded content and sha. A missing file is
	// (nil, nil), not an error; callers use it to detect new records.
	GetFile(ctx context.Context, path, ref string) (*File, error)
	// ListDir lists a directory. A missing directory yields an empty slice.
	ListDir(ctx context.Context, path, ref string) ([]Entry, error)
	// PutFile creates or updates a file on a branch. sha is empty for
	// creates and must be the current blob sha for updates.
	PutFile(ctx context.Context, path string, content []byte, message, branch, sha string) (string, error)
	// DeleteFile removes a file; sha must be the current blob sha.
	DeleteFile(ctx context.Context, path, message, sha, branch string) error
	// DefaultBranch returns the repository's default branch name.
	DefaultBranch(ctx context.Context) (string, error)
	// BranchHead returns the commit sha a branch currently points at.
	BranchHead(ctx context.Context, branch string) (string, error)
	// CreateBranch creates a branch from a commit sha. An already-existing
	// name is treated as success.
	CreateBranch(ctx context.Context, name, fromSHA string) error
	// CreatePullRequest opens a PR from head into base.
	CreatePullRequest(ctx context.Context, title, head, base, body string) (*models.PullRequest, error)
	// EnableAutoMerge requests auto-merge for a PR by node id. Best-effort:
	// the return value reports whether the request was accepted, and a
	// failure must never fail the caller.
	EnableAutoMerge(ctx context.Context, nodeID string) bool
}

// File is a repository file with its content already base64-decoded.
type File struct {
	Name    string
	Path    string
	SHA     string
	Content []byte
}

// Entry is one directory listing entry.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Type string `json:"type"`
}

// HTTPClient implements Gateway against the GitHub REST and GraphQL APIs.
type HTTPClient struct {
	baseURL    string
	owner      string
	repo       string
	token      string
	httpClient *http.Client
}

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// NewHTTPClient creates a gateway for one repository. The token is an opaque
// bearer credential supplied by the caller; the gateway never reads ambient
// storage for it.
func NewHTTPClient(baseURL, owner, repo, token string) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		owner:      owner,
		repo:       repo,
		token:      token,
		httpClient: &http.Client{},
	}
}

func (c *HTTPClient) repoURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", c.baseURL, c.owner, c.repo, path)
}

func (c *HTTPClient) contentsURL(path, ref string) string {
	u := c.repoURL("/contents/" + path)
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}
	return u
}

func (c *HTTPClient) do(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	return resp, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, url string, reqBody, respBody interface{}) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.do(ctx, method, url, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// contentsFile is the provider's file payload; content arrives base64-encoded
// with embedded newlines.
type contentsFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// GetFile fetches one file. 404 is a valid absent result.
func (c *HTTPClient) GetFile(ctx context.Context, path, ref string) (*File, error) {
	resp, err := c.do(ctx, "GET", c.contentsURL(path, ref), nil)
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}

	var f contentsFile
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode file %s: %w", path, err)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(f.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode content of %s: %w", path, err)
	}

	return &File{Name: f.Name, Path: f.Path, SHA: f.SHA, Content: raw}, nil
}

// ListDir lists a directory. 404 yields an empty slice so first-time
// collections do not break the listing path.
func (c *HTTPClient) ListDir(ctx context.Context, path, ref string) ([]Entry, error) {
	resp, err := c.do(ctx, "GET", c.contentsURL(path, ref), nil)
	if err != nil {
		return nil, fmt.Errorf("list dir %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []Entry{}, nil
	}
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode dir %s: %w", path, err)
	}
	return entries, nil
}

// PutFile creates or updates a file on a branch in one commit and returns the
// commit sha.
func (c *HTTPClient) PutFile(ctx context.Context, path string, content []byte, message, branch, sha string) (string, error) {
	req := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		Branch  string `json:"branch"`
		SHA     string `json:"sha,omitempty"`
	}{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  branch,
		SHA:     sha,
	}

	var resp struct {
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
	}
	if err := c.doJSON(ctx, "PUT", c.repoURL("/contents/"+path), req, &resp); err != nil {
		return "", fmt.Errorf("put file %s: %w", path, err)
	}
	return resp.Commit.SHA, nil
}

// DeleteFile removes a file on a branch by its current sha.
func (c *HTTPClient) DeleteFile(ctx context.Context, path, message, sha, branch string) error {
	req := struct {
		Message string `json:"message"`
		SHA     string `json:"sha"`
		Branch  string `json:"branch"`
	}{Message: message, SHA: sha, Branch: branch}

	if err := c.doJSON(ctx, "DELETE", c.repoURL("/contents/"+path), req, nil); err != nil {
		return fmt.Errorf("delete file %s: %w", path, err)
	}
	return nil
}

// DefaultBranch returns the repository's default branch name.
func (c *HTTPClient) DefaultBranch(ctx context.Context) (string, error) {
	var resp struct {
		DefaultBranch string `json:"default_branch"`
	}
	if err := c.doJSON(ctx, "GET", c.repoURL(""), nil, &resp); err != nil {
		return "", fmt.Errorf("get repository: %w", err)
	}
	if resp.DefaultBranch == "" {
		return "main", nil
	}
	return resp.DefaultBranch, nil
}

// BranchHead returns the commit sha at the tip of a branch.
func (c *HTTPClient) BranchHead(ctx context.Context, branch string) (string, error) {
	var resp struct {
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}
	if err := c.doJSON(ctx, "GET", c.repoURL("/git/ref/heads/"+branch), nil, &resp); err != nil {
		return "", fmt.Errorf("get branch head %s: %w", branch, err)
	}
	return resp.Object.SHA, nil
}

// CreateBranch creates a ref from a commit sha. A 422 (name exists) is
// treated as success so retried saves stay idempotent.
func (c *HTTPClient) CreateBranch(ctx context.Context, name, fromSHA string) error {
	req := struct {
		Ref string `json:"ref"`
		SHA string `json:"sha"`
	}{Ref: "refs/heads/" + name, SHA: fromSHA}

	resp, err := c.do(ctx, "POST", c.repoURL("/git/refs"), jsonBody(req))
	if err != nil {
		return fmt.Errorf("create branch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("create branch %s: %w", name, decodeError(resp))
	}
	return nil
}

// CreatePullRequest opens a pull request from head into base.
func (c *HTTPClient) CreatePullRequest(ctx context.Context, title, head, base, body string) (*models.PullRequest, error) {
	req := struct {
		Title string `json:"title"`
		Head  string `json:"head"`
		Base  string `json:"base"`
		Body  string `json:"body"`
	}{Title: title, Head: head, Base: base, Body: body}

	var pr models.PullRequest
	if err := c.doJSON(ctx, "POST", c.repoURL("/pulls"), req, &pr); err != nil {
		return nil, fmt.Errorf("create pull request: %w", err)
	}
	return &pr, nil
}

// autoMergeMutation requests squash auto-merge once required checks pass.
const autoMergeMutation = `mutation($id:ID!){ enablePullRequestAutoMerge(input:{ pullRequestId:$id, mergeMethod:SQUASH }){ pullRequest{ number } } }`

// EnableAutoMerge requests auto-merge for a PR. Repository policy may reject
// it (feature disabled, insufficient permission); any failure is swallowed.
func (c *HTTPClient) EnableAutoMerge(ctx context.Context, nodeID string) bool {
	req := struct {
		Query     string            `json:"query"`
		Variables map[string]string `json:"variables"`
	}{Query: autoMergeMutation, Variables: map[string]string{"id": nodeID}}

	resp, err := c.do(ctx, "POST", c.baseURL+"/graphql", jsonBody(req))
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false
	}

	// GraphQL reports failures with 200 + errors array.
	var out struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false
	}
	return len(out.Errors) == 0
}

func jsonBody(v interface{}) io.Reader {
	data, _ := json.Marshal(v)
	return bytes.NewReader(data)
}

// RemoteError is a non-2xx, non-404 provider response.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (%d): %s", e.Status, e.Message)
}

// Stale reports whether the error is a rejected write caused by a sha that
// no longer matches the file's current state.
func (e *RemoteError) Stale() bool {
	return e.Status == http.StatusConflict
}

func decodeError(resp *http.Response) error {
	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Message == "" {
		return &RemoteError{Status: resp.StatusCode, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	return &RemoteError{Status: resp.StatusCode, Message: errResp.Message}
}
