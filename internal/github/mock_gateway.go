package github

import (
	"context"
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pokrova/contentctl/internal/models"
)

// MockGateway is an in-memory Gateway implementation for testing. It keeps
// files per branch, tracks created branches and opened pull requests, and can
// be made to fail a single named operation.
type MockGateway struct {
	mu sync.Mutex

	// Files maps "branch\x00path" to content. The default branch is "main"
	// unless Default is set.
	Files   map[string][]byte
	Default string
	HeadSHA string

	// Branches maps branch name to the sha it was created from.
	Branches map[string]string
	// PRs collects opened pull requests in order.
	PRs []MockPR
	// AutoMergeRequests collects node ids passed to EnableAutoMerge.
	AutoMergeRequests []string
	// AutoMergeOK is the result EnableAutoMerge reports.
	AutoMergeOK bool
	// Deleted collects "branch\x00path" keys of deleted files.
	Deleted []string

	// FailOn makes the named operation ("put", "delete", "branch", "pr",
	// "head", "repo", "get", "list") return Err.
	FailOn string
	Err    error

	nextPR int
}

// MockPR records one opened pull request.
type MockPR struct {
	Title string
	Head  string
	Base  string
	Body  string
}

// NewMockGateway creates an empty mock with a "main" default branch.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		Files:       make(map[string][]byte),
		Default:     "main",
		HeadSHA:     "headsha",
		Branches:    make(map[string]string),
		AutoMergeOK: true,
		nextPR:      1,
	}
}

// AddFile seeds a file on a branch.
func (m *MockGateway) AddFile(branch, path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[fileKey(branch, path)] = content
}

func fileKey(branch, path string) string {
	return branch + "\x00" + path
}

func mockSHA(content []byte) string {
	return fmt.Sprintf("%x", sha1.Sum(content))
}

func (m *MockGateway) failing(op string) error {
	if m.FailOn == op {
		if m.Err != nil {
			return m.Err
		}
		return &RemoteError{Status: 500, Message: "injected failure: " + op}
	}
	return nil
}

// resolve falls back to the default branch when ref is empty, matching the
// provider's behavior for omitted ref parameters.
func (m *MockGateway) resolve(ref string) string {
	if ref == "" {
		return m.Default
	}
	return ref
}

// GetFile returns a seeded file or (nil, nil) when absent.
func (m *MockGateway) GetFile(ctx context.Context, path, ref string) (*File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("get"); err != nil {
		return nil, err
	}
	content, ok := m.Files[fileKey(m.resolve(ref), path)]
	if !ok {
		return nil, nil
	}
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		name = path[i+1:]
	}
	return &File{Name: name, Path: path, SHA: mockSHA(content), Content: content}, nil
}

// ListDir lists immediate children of a directory, empty when absent.
func (m *MockGateway) ListDir(ctx context.Context, path, ref string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("list"); err != nil {
		return nil, err
	}

	branch := m.resolve(ref)
	prefix := path + "/"
	seen := make(map[string]Entry)
	for key, content := range m.Files {
		b, p, _ := strings.Cut(key, "\x00")
		if b != branch || !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			dir := rest[:i]
			seen[dir] = Entry{Name: dir, Path: prefix + dir, Type: "dir"}
		} else {
			seen[rest] = Entry{Name: rest, Path: p, SHA: mockSHA(content), Type: "file"}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, n := range names {
		entries = append(entries, seen[n])
	}
	return entries, nil
}

// PutFile stores content on a branch.
func (m *MockGateway) PutFile(ctx context.Context, path string, content []byte, message, branch, sha string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("put"); err != nil {
		return "", err
	}
	m.Files[fileKey(branch, path)] = content
	return mockSHA(content), nil
}

// DeleteFile removes a file, rejecting stale shas like the provider does.
func (m *MockGateway) DeleteFile(ctx context.Context, path, message, sha, branch string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("delete"); err != nil {
		return err
	}
	key := fileKey(branch, path)
	content, ok := m.Files[key]
	if !ok {
		// Deleting on a fresh branch that inherited the default branch's
		// files: fall back to the default branch copy.
		content, ok = m.Files[fileKey(m.Default, path)]
		if !ok {
			return &RemoteError{Status: 404, Message: "not found: " + path}
		}
	}
	if sha != mockSHA(content) {
		return &RemoteError{Status: 409, Message: "sha mismatch for " + path}
	}
	delete(m.Files, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}

// DefaultBranch returns the configured default branch name.
func (m *MockGateway) DefaultBranch(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("repo"); err != nil {
		return "", err
	}
	return m.Default, nil
}

// BranchHead returns the configured head sha.
func (m *MockGateway) BranchHead(ctx context.Context, branch string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("head"); err != nil {
		return "", err
	}
	return m.HeadSHA, nil
}

// CreateBranch records the branch; an existing name is success, as with the
// real provider's 422 handling.
func (m *MockGateway) CreateBranch(ctx context.Context, name, fromSHA string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("branch"); err != nil {
		return err
	}
	if _, exists := m.Branches[name]; exists {
		return nil
	}
	m.Branches[name] = fromSHA
	return nil
}

// CreatePullRequest records the PR and returns a sequential number.
func (m *MockGateway) CreatePullRequest(ctx context.Context, title, head, base, body string) (*models.PullRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("pr"); err != nil {
		return nil, err
	}
	m.PRs = append(m.PRs, MockPR{Title: title, Head: head, Base: base, Body: body})
	n := m.nextPR
	m.nextPR++
	return &models.PullRequest{
		Number: n,
		NodeID: fmt.Sprintf("PR_node_%d", n),
		URL:    fmt.Sprintf("https://example.test/pull/%d", n),
	}, nil
}

// EnableAutoMerge records the request and reports the configured result.
func (m *MockGateway) EnableAutoMerge(ctx context.Context, nodeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AutoMergeRequests = append(m.AutoMergeRequests, nodeID)
	return m.AutoMergeOK
}
