package core

import (
	"context"
	"fmt"

	"github.com/pokrova/contentctl/internal/github"
	"github.com/pokrova/contentctl/internal/models"
	"github.com/pokrova/contentctl/internal/record"
)

// Delete removes a record and all its image assets through the same
// branch-and-PR machine as Save, minus the document write: every remote file
// is resolved to its current sha by a fresh listing and deleted on the
// mutation branch.
func Delete(ctx context.Context, gw github.Gateway, c models.Collection, uid, ref string, progress Progress) (*Result, error) {
	if progress == nil {
		progress = func(string) {}
	}

	progress("Preparing branch")
	base, branch, err := prepareBranch(ctx, gw, c, uid)
	if err != nil {
		return nil, err
	}

	progress("Deleting record files")
	entries, err := gw.ListDir(ctx, record.CollectionPath(c)+"/"+uid, ref)
	if err != nil {
		return nil, fmt.Errorf("list record files: %w", err)
	}
	for _, e := range entries {
		if e.Name != "index.json" || e.Type != "file" {
			continue
		}
		msg := fmt.Sprintf("delete %s %s", c.Singular(), uid)
		if err := gw.DeleteFile(ctx, e.Path, msg, e.SHA, branch); err != nil {
			return nil, fmt.Errorf("delete document: %w", err)
		}
	}

	images, err := gw.ListDir(ctx, record.ImagesPath(c, uid), ref)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	for _, im := range images {
		msg := fmt.Sprintf("delete image %s", im.Name)
		if err := gw.DeleteFile(ctx, im.Path, msg, im.SHA, branch); err != nil {
			return nil, fmt.Errorf("delete image %s: %w", im.Name, err)
		}
	}

	progress("Creating pull request")
	title := fmt.Sprintf("Content: delete %s %s", c.Singular(), uid)
	pr, autoMerge, err := openPR(ctx, gw, title, branch, base, "Delete via admin")
	if err != nil {
		return nil, err
	}

	progress(fmt.Sprintf("PR #%d created", pr.Number))
	return &Result{Branch: branch, PRNumber: pr.Number, PRURL: pr.URL, AutoMerge: autoMerge}, nil
}
