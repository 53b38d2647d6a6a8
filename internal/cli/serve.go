package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pokrova/contentctl/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin API server for the browser editor",
	Long: `Serve the JSON API the browser-based editor consumes. Each request
carries its own bearer token; the server stores no credentials.`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	c := initContextWithCache()
	defer c.Close()

	srv := server.New(c.Config, c.Translator(), c.Cache, nil)
	fmt.Printf("Admin API listening on %s (repo %s/%s)\n", c.Config.Listen(), c.Config.Owner, c.Config.Repo)
	if err := srv.Run(); err != nil {
		exitError("%v", err)
	}
}
