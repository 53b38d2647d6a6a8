package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pokrova/contentctl/internal/core"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <collection> <uid>",
	Short: "Delete a record and its images via a pull request",
	Long: `Delete a record's document and every image asset on a fresh branch
and open an auto-mergeable pull request for the removal.`,
	Args: cobra.ExactArgs(2),
	Run:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) {
	coll := parseCollection(args[0])
	uid := args[1]

	if !deleteYes {
		fmt.Printf("Delete %s/%s and all its images? [y/N] ", coll, uid)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return
		}
	}

	c := initAuthedContext()
	defer c.Close()

	result, err := core.Delete(context.Background(), c.Gateway(), coll, uid, c.Config.ContentRef, printStep)
	if err != nil {
		exitError("%v", err)
	}

	c.Cache.Invalidate(coll)
	printResult(result)
}
