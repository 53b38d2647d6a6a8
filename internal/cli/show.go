package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pokrova/contentctl/internal/core"
	"github.com/pokrova/contentctl/internal/models"
)

var showCmd = &cobra.Command{
	Use:   "show <collection> <uid>",
	Short: "Show a record's variants in every language",
	Args:  cobra.ExactArgs(2),
	Run:   runShow,
}

func runShow(cmd *cobra.Command, args []string) {
	coll := parseCollection(args[0])
	uid := args[1]

	c := initAuthedContext()
	defer c.Close()

	draft, err := core.LoadDraft(context.Background(), c.Gateway(), coll, uid, c.Config.ContentRef)
	if err != nil {
		exitError("%v", err)
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	bold.Printf("%s/%s\n", coll, uid)
	for _, lang := range models.Languages {
		v := draft.Variants[lang]
		fmt.Println()
		bold.Printf("[%s]", lang)
		if v.Empty() {
			dim.Println(" (empty)")
			continue
		}
		fmt.Println()
		fmt.Printf("  category: %s\n", v.Category)
		fmt.Printf("  title:    %s\n", v.Title)
		fmt.Printf("  date:     %s\n", v.Date)
		if coll == models.Schedule {
			fmt.Printf("  time:     %s\n", v.Time)
			fmt.Printf("  location: %s\n", v.Location)
			if v.Details != "" {
				fmt.Printf("  details:  %s\n", v.Details)
			}
		} else {
			if v.Excerpt != "" {
				fmt.Printf("  excerpt:  %s\n", v.Excerpt)
			}
			if v.Content != "" {
				fmt.Printf("  content:  %s\n", v.Content)
			}
		}
		if len(v.Images) > 0 {
			fmt.Printf("  images:   %v (hero: %s)\n", v.Images, v.Images[0])
		}
	}
}
