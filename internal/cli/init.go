package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pokrova/contentctl/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init <owner>/<repo>",
	Short: "Create a contentctl workspace in the current directory",
	Long: `Create the .contentctl directory with an initial configuration
pointing at the hosted site repository.

Example:
  contentctl init pokrova/site`,
	Args: cobra.ExactArgs(1),
	Run:  runInit,
}

func runInit(cmd *cobra.Command, args []string) {
	owner, repo, ok := strings.Cut(args[0], "/")
	if !ok || owner == "" || repo == "" {
		exitError("expected <owner>/<repo>, got '%s'", args[0])
	}

	cfg, err := config.Initialize(owner, repo)
	if err != nil {
		exitError("%v", err)
	}

	fmt.Printf("Initialized workspace for %s/%s in %s\n", owner, repo, cfg.Path())
}
