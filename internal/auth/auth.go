// Package auth acquires and stores the bearer credential the gateway needs.
// The credential's lifecycle is explicit: absent → acquired (device flow or
// direct entry) → invalidated on 401 → cleared. Nothing outside this package
// reads or writes the stored token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// Scope grants enough access to write content branches and open PRs on a
// public repository.
const Scope = "public_repo"

// TokenStore persists the credential as a single file with owner-only
// permissions.
type TokenStore struct {
	path string
}

// NewTokenStore creates a store backed by the given file path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load returns the stored token, or "" when absent.
func (s *TokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save stores a token.
func (s *TokenStore) Save(token string) error {
	if token == "" {
		return fmt.Errorf("refusing to store an empty token")
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an absent token is fine.
func (s *TokenStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// DevicePrompt receives the code the user must enter and the URL to enter it
// at, before DeviceLogin starts polling.
type DevicePrompt func(userCode, verificationURI string)

// DeviceLogin runs the OAuth device-authorization flow and returns the
// access token. It blocks until the user approves, the code expires or the
// context is cancelled.
func DeviceLogin(ctx context.Context, clientID string, prompt DevicePrompt) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("no OAuth client id configured")
	}

	cfg := &oauth2.Config{
		ClientID: clientID,
		Endpoint: githuboauth.Endpoint,
		Scopes:   []string{Scope},
	}

	da, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("request device code: %w", err)
	}
	if prompt != nil {
		prompt(da.UserCode, da.VerificationURI)
	}

	tok, err := cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		return "", fmt.Errorf("device authorization: %w", err)
	}
	return tok.AccessToken, nil
}

// Validate probes the provider with the token. It returns the authenticated
// login on success and ErrInvalidToken when the provider rejects the
// credential; the caller decides whether to clear the store.
func Validate(ctx context.Context, apiBaseURL, token string) (string, error) {
	if apiBaseURL == "" {
		apiBaseURL = "https://api.github.com"
	}
	req, err := http.NewRequestWithContext(ctx, "GET", strings.TrimRight(apiBaseURL, "/")+"/user", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("validate token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrInvalidToken
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("validate token: HTTP %d", resp.StatusCode)
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decode user: %w", err)
	}
	return user.Login, nil
}

// ErrInvalidToken marks a credential the provider no longer accepts.
var ErrInvalidToken = errors.New("token rejected by provider")
