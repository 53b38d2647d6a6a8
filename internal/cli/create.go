package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pokrova/contentctl/internal/core"
)

var createCmd = &cobra.Command{
	Use:   "create <collection> <uid>",
	Short: "Create a new record via a pull request",
	Long: `Create a record with empty placeholder variants for every language
and open an auto-mergeable pull request for it. The uid becomes the record's
storage path segment and cannot change later.

Example:
  contentctl create articles feast-2025`,
	Args: cobra.ExactArgs(2),
	Run:  runCreate,
}

func runCreate(cmd *cobra.Command, args []string) {
	coll := parseCollection(args[0])
	uid := args[1]

	c := initAuthedContext()
	defer c.Close()

	result, err := core.CreateNew(context.Background(), c.Gateway(), coll, uid, printStep)
	if err != nil {
		exitError("%v", err)
	}

	c.Cache.Invalidate(coll)
	printResult(result)
}

// printStep surfaces orchestrator progress; on failure the last printed step
// shows how far the operation got.
func printStep(step string) {
	fmt.Printf("  %s\n", step)
}

func printResult(result *core.Result) {
	green := color.New(color.FgGreen)
	green.Printf("PR #%d: %s\n", result.PRNumber, result.PRURL)
	if result.AutoMerge {
		fmt.Println("Auto-merge enabled; the change publishes once checks pass.")
	} else {
		color.New(color.FgYellow).Println("Auto-merge not enabled; merge the PR manually.")
	}
}
