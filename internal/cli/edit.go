package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pokrova/contentctl/internal/core"
	"github.com/pokrova/contentctl/internal/models"
	"github.com/pokrova/contentctl/internal/record"
)

var (
	editLang      string
	editFields    = map[string]*string{}
	editAddImages []string
	editRemove    []string
	editHero      string
	editTranslate bool
)

var editCmd = &cobra.Command{
	Use:   "edit <collection> <uid>",
	Short: "Edit a record's fields and images via a pull request",
	Long: `Load a record, apply the given field and image edits to one language
variant, and save the whole record as a commit on a fresh branch plus an
auto-mergeable pull request.

Field flags apply to the language selected with --lang (default uk). Image
removal applies to every language, since images are shared by filename.

Examples:
  contentctl edit articles feast-2025 --title "Престольне свято" --date 2025-10-14
  contentctl edit articles feast-2025 --lang en --translate
  contentctl edit schedule liturgy-sunday --add-image ./icon.jpg --hero icon.jpg
  contentctl edit articles feast-2025 --remove-image old.jpg`,
	Args: cobra.ExactArgs(2),
	Run:  runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editLang, "lang", "uk", "Language variant the field flags apply to")
	for _, field := range []string{"category", "title", "date", "excerpt", "content", "time", "location", "details"} {
		editFields[field] = editCmd.Flags().String(field, "", "Set the "+field+" field")
	}
	editCmd.Flags().StringArrayVar(&editAddImages, "add-image", nil, "Upload a local image file (repeatable)")
	editCmd.Flags().StringArrayVar(&editRemove, "remove-image", nil, "Remove an image by name from all variants (repeatable)")
	editCmd.Flags().StringVar(&editHero, "hero", "", "Promote an image to the hero position")
	editCmd.Flags().BoolVar(&editTranslate, "translate", false, "Backfill missing language variants before saving")
}

func runEdit(cmd *cobra.Command, args []string) {
	coll := parseCollection(args[0])
	uid := args[1]

	lang := models.Language(editLang)
	valid := false
	for _, l := range models.Languages {
		if l == lang {
			valid = true
		}
	}
	if !valid {
		exitError("unknown language '%s'", editLang)
	}

	c := initAuthedContext()
	defer c.Close()
	ctx := context.Background()

	draft, err := core.LoadDraft(ctx, c.Gateway(), coll, uid, c.Config.ContentRef)
	if err != nil {
		exitError("%v", err)
	}

	for field, value := range editFields {
		if cmd.Flags().Changed(field) {
			draft = record.SetField(draft, lang, field, *value)
		}
	}

	var uploads []core.Upload
	for _, path := range editAddImages {
		content, err := os.ReadFile(path)
		if err != nil {
			exitError("read image: %v", err)
		}
		name := filepath.Base(path)
		uploads = append(uploads, core.Upload{Name: name, Content: content})
		draft = record.AddImages(draft, lang, name)
	}

	var removed []string
	for _, name := range editRemove {
		draft, removed = record.RemoveImage(draft, removed, name)
	}

	if editHero != "" {
		draft = record.PromoteHero(draft, lang, editHero)
	}

	if editTranslate {
		draft = c.Translator().FillMissing(ctx, draft)
	}

	result, err := core.Save(ctx, c.Gateway(), core.SaveOptions{
		Collection: coll,
		UID:        uid,
		Draft:      draft,
		Uploads:    uploads,
		Removed:    removed,
		Ref:        c.Config.ContentRef,
	}, printStep)
	if err != nil {
		exitError("%v", err)
	}

	c.Cache.Invalidate(coll)
	printResult(result)
}
