// Package cli implements the contentctl command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pokrova/contentctl/internal/auth"
	"github.com/pokrova/contentctl/internal/cache"
	"github.com/pokrova/contentctl/internal/config"
	"github.com/pokrova/contentctl/internal/github"
	"github.com/pokrova/contentctl/internal/models"
	"github.com/pokrova/contentctl/internal/translate"
)

// cmdContext holds common resources for CLI commands.
type cmdContext struct {
	Config *config.Config
	Cache  *cache.Store
	Token  string
}

// Close releases resources held by cmdContext.
func (c *cmdContext) Close() {
	if c.Cache != nil {
		c.Cache.Close()
	}
}

// initContext loads the workspace configuration and applies environment
// overrides (populated from .env by main).
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	if v := os.Getenv("CONTENTCTL_TRANSLATE_URL"); v != "" {
		cfg.TranslateURL = v
	}
	if v := os.Getenv("CONTENTCTL_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}

	return &cmdContext{Config: cfg}
}

// initContextWithCache additionally opens the preview cache database.
func initContextWithCache() *cmdContext {
	c := initContext()

	st, err := cache.New(c.Config.DatabasePath())
	if err != nil {
		exitError("failed to open preview cache: %v", err)
	}
	c.Cache = st

	return c
}

// initAuthedContext loads the stored credential (or GITHUB_TOKEN) and fails
// when none is available.
func initAuthedContext() *cmdContext {
	c := initContextWithCache()

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		var err error
		token, err = auth.NewTokenStore(c.Config.TokenPath()).Load()
		if err != nil {
			c.Close()
			exitError("%v", err)
		}
	}
	if token == "" {
		c.Close()
		exitError("not logged in; run 'contentctl login' first")
	}
	c.Token = token

	return c
}

// Gateway builds the repository gateway bound to this context's credential.
func (c *cmdContext) Gateway() github.Gateway {
	return github.NewHTTPClient(c.Config.APIBaseURL, c.Config.Owner, c.Config.Repo, c.Token)
}

// Translator builds the translation client from the configuration.
func (c *cmdContext) Translator() *translate.Client {
	return translate.NewClient(c.Config.TranslateURL)
}

var rootCmd = &cobra.Command{
	Use:   "contentctl",
	Short: "Content workflow for the parish site repository",
	Long: `contentctl manages multilingual content records (articles, schedule
events) stored in a Git-hosted site repository. Every change lands as a
commit on a fresh branch plus an auto-mergeable pull request, never as a
direct write to the default branch.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(serveCmd)
}

// exitError prints an error and exits.
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// parseCollection validates a collection argument.
func parseCollection(arg string) models.Collection {
	c := models.Collection(arg)
	if !c.Valid() {
		exitError("unknown collection '%s' (expected 'articles' or 'schedule')", arg)
	}
	return c
}
