package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pokrova/contentctl/internal/core"
	"github.com/pokrova/contentctl/internal/models"
)

var listCached bool

var listCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List a collection's records",
	Long: `Enumerate the records of a collection and show one preview line per
record (uk variant preferred). The result is cached locally; --cached skips
the remote round-trip and prints the last fetched listing.

Examples:
  contentctl list articles
  contentctl list schedule --cached`,
	Args: cobra.ExactArgs(1),
	Run:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listCached, "cached", false, "Use the local preview cache, no remote calls")
}

func runList(cmd *cobra.Command, args []string) {
	coll := parseCollection(args[0])

	var previews []models.Preview
	if listCached {
		c := initContextWithCache()
		defer c.Close()

		var err error
		previews, err = c.Cache.Collection(coll)
		if err != nil {
			exitError("%v", err)
		}
		if at, err := c.Cache.FetchedAt(coll); err == nil && !at.IsZero() {
			fmt.Printf("(cached %s)\n", at.Local().Format("2006-01-02 15:04"))
		}
	} else {
		c := initAuthedContext()
		defer c.Close()

		var err error
		previews, err = core.ListPreviews(context.Background(), c.Gateway(), coll, c.Config.ContentRef)
		if err != nil {
			exitError("%v", err)
		}
		if err := c.Cache.ReplaceCollection(coll, previews); err != nil {
			// Cache trouble must not fail the listing.
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: preview cache not updated: %v\n", err)
		}
	}

	if len(previews) == 0 {
		fmt.Println("No records.")
		return
	}

	bold := color.New(color.Bold)
	counts := make(map[string]int)
	for _, p := range previews {
		counts[p.Category]++
		title := p.Title
		if title == "" {
			title = "(untitled)"
		}
		bold.Printf("%-24s", p.UID)
		fmt.Printf("  %-12s  %-10s  %s", p.Category, p.Date, title)
		if p.Time != "" {
			fmt.Printf("  %s", p.Time)
		}
		fmt.Println()
	}

	fmt.Printf("\n%d record(s)", len(previews))
	for _, cat := range coll.Categories() {
		if counts[cat] > 0 {
			fmt.Printf(", %d %s", counts[cat], cat)
		}
	}
	fmt.Println()
}
