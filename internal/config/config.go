// Package config manages contentctl configuration and the .contentctl
// directory structure: the TOML config file, the cached preview database and
// the stored credential.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	Dir          = ".contentctl"
	ConfigFile   = "config"
	DatabaseFile = "previews.db"
	TokenFile    = "token"
)

// Config describes the site repository and the collaborating endpoints.
type Config struct {
	// Owner and Repo identify the hosted site repository.
	Owner string `toml:"owner"`
	Repo  string `toml:"repo"`
	// ContentRef optionally pins reads to a ref instead of the default
	// branch (useful while a content PR is still open).
	ContentRef string `toml:"content_ref,omitempty"`
	// APIBaseURL overrides the provider endpoint; empty means the public
	// GitHub API.
	APIBaseURL string `toml:"api_base_url,omitempty"`
	// TranslateURL is the LibreTranslate-compatible endpoint; empty
	// disables translation backfill.
	TranslateURL string `toml:"translate_url,omitempty"`
	// ClientID is the OAuth app client id for device-flow login.
	ClientID string `toml:"client_id,omitempty"`
	// ListenAddr is the admin server bind address.
	ListenAddr string `toml:"listen_addr,omitempty"`

	path string // path to the .contentctl directory
}

// FindRoot locates the .contentctl directory by walking up from the current
// directory.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		p := filepath.Join(dir, Dir)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a contentctl workspace (run 'contentctl init' first)")
		}
		dir = parent
	}
}

// Load reads the configuration from the nearest .contentctl directory.
func Load() (*Config, error) {
	root, err := FindRoot()
	if err != nil {
		return nil, err
	}
	return LoadFrom(root)
}

// LoadFrom reads the configuration from an explicit .contentctl directory.
func LoadFrom(root string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.path = root
	return &cfg, nil
}

// Save writes the configuration back to disk.
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(c.path, ConfigFile), data, 0644)
}

// Path returns the .contentctl directory path.
func (c *Config) Path() string {
	return c.path
}

// DatabasePath returns the preview cache database path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.path, DatabaseFile)
}

// TokenPath returns the stored credential path.
func (c *Config) TokenPath() string {
	return filepath.Join(c.path, TokenFile)
}

// Listen returns the admin server bind address, defaulting to localhost.
func (c *Config) Listen() string {
	if c.ListenAddr == "" {
		return "127.0.0.1:8787"
	}
	return c.ListenAddr
}

// Initialize creates a .contentctl directory in the current directory with
// an initial configuration.
func Initialize(owner, repo string) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root := filepath.Join(cwd, Dir)
	if _, err := os.Stat(root); err == nil {
		return nil, fmt.Errorf("contentctl workspace already exists")
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", Dir, err)
	}

	cfg := &Config{Owner: owner, Repo: repo, path: root}
	if err := cfg.Save(); err != nil {
		os.RemoveAll(root)
		return nil, err
	}
	return cfg, nil
}
