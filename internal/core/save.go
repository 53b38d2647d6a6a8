// Package core implements the branch-scoped content mutation workflow: the
// sequence of gateway calls that turns an in-memory edit into a reviewable,
// auto-mergeable pull request.
//
// Every mutation follows the same linear machine: prepare a fresh uniquely
// named branch from the default branch head, apply file writes and deletes to
// it, open a PR, request auto-merge. Steps run strictly in order because each
// step's input (branch name, file sha) comes from the previous one. A step's
// hard failure aborts the remaining steps; completed steps are not rolled
// back; the orphaned branch is left for maintainers to inspect, and the PR
// review process is the safety net.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/pokrova/contentctl/internal/github"
	"github.com/pokrova/contentctl/internal/models"
	"github.com/pokrova/contentctl/internal/record"
)

// Progress reports a human-readable status for the step about to run. The
// last reported status stays meaningful on failure: it tells the user how far
// the operation got.
type Progress func(step string)

// Upload is a pending local file to be committed under the record's images
// directory.
type Upload struct {
	Name    string
	Content []byte
}

// SaveOptions configures a save mutation.
type SaveOptions struct {
	Collection models.Collection
	UID        string
	Draft      record.Draft
	// Uploads are pending image files, committed one per file.
	Uploads []Upload
	// Removed are image names marked for removal; their shas are resolved
	// by re-listing the remote images directory immediately before delete.
	Removed []string
	// Ref optionally pins reads (sha resolution) to a content ref instead
	// of the default branch.
	Ref string
}

// Result is the outcome of a completed mutation.
type Result struct {
	Branch    string
	PRNumber  int
	PRURL     string
	AutoMerge bool
}

// now is stubbed in tests for deterministic branch names.
var now = time.Now

// branchName derives a branch unique per attempt. The timestamp guarantees
// two saves of the same record never share a branch.
func branchName(c models.Collection, uid string) string {
	return fmt.Sprintf("content/%s/%s-%d", c, uid, now().UnixMilli())
}

// prepareBranch fetches the default branch and its head and creates a fresh
// mutation branch from it. An already-existing branch name is not an error.
func prepareBranch(ctx context.Context, gw github.Gateway, c models.Collection, uid string) (base, branch string, err error) {
	base, err = gw.DefaultBranch(ctx)
	if err != nil {
		return "", "", fmt.Errorf("get default branch: %w", err)
	}
	sha, err := gw.BranchHead(ctx, base)
	if err != nil {
		return "", "", fmt.Errorf("get head of %s: %w", base, err)
	}
	branch = branchName(c, uid)
	if err := gw.CreateBranch(ctx, branch, sha); err != nil {
		return "", "", fmt.Errorf("create branch: %w", err)
	}
	return base, branch, nil
}

// openPR opens the pull request and fires the best-effort auto-merge request.
func openPR(ctx context.Context, gw github.Gateway, title, branch, base, body string) (*models.PullRequest, bool, error) {
	pr, err := gw.CreatePullRequest(ctx, title, branch, base, body)
	if err != nil {
		return nil, false, fmt.Errorf("create pull request: %w", err)
	}
	// Auto-merge may be rejected by repository policy; the save succeeded
	// either way.
	merged := gw.EnableAutoMerge(ctx, pr.NodeID)
	return pr, merged, nil
}

// Save persists an edited record: uploads pending images, deletes removed
// ones, rewrites the JSON document and opens a PR for the whole change.
func Save(ctx context.Context, gw github.Gateway, opts SaveOptions, progress Progress) (*Result, error) {
	if progress == nil {
		progress = func(string) {}
	}

	progress("Preparing branch")
	base, branch, err := prepareBranch(ctx, gw, opts.Collection, opts.UID)
	if err != nil {
		return nil, err
	}

	if len(opts.Uploads) > 0 {
		progress("Uploading images")
		for _, up := range opts.Uploads {
			path := record.ImagePath(opts.Collection, opts.UID, up.Name)
			msg := fmt.Sprintf("upload image %s", up.Name)
			if _, err := gw.PutFile(ctx, path, up.Content, msg, branch, ""); err != nil {
				return nil, fmt.Errorf("upload image %s: %w", up.Name, err)
			}
		}
	}

	if len(opts.Removed) > 0 {
		progress("Deleting removed images")
		if err := deleteRemovedImages(ctx, gw, opts, branch); err != nil {
			return nil, err
		}
	}

	progress("Writing document")
	if err := writeDocument(ctx, gw, opts, branch, fmt.Sprintf("save %s %s", opts.Collection.Singular(), opts.UID)); err != nil {
		return nil, err
	}

	progress("Creating pull request")
	title := fmt.Sprintf("Content: %s %s", opts.Collection.Singular(), opts.UID)
	pr, autoMerge, err := openPR(ctx, gw, title, branch, base, "Edit via admin")
	if err != nil {
		return nil, err
	}

	progress(fmt.Sprintf("PR #%d created", pr.Number))
	return &Result{Branch: branch, PRNumber: pr.Number, PRURL: pr.URL, AutoMerge: autoMerge}, nil
}

// deleteRemovedImages re-lists the remote images directory to resolve each
// removed name to its current sha, then deletes by sha on the mutation
// branch. Shas are never cached client-side; resolving right before use is
// the deliberate staleness tradeoff. Names with no remote counterpart (never
// committed, or already gone) are skipped.
func deleteRemovedImages(ctx context.Context, gw github.Gateway, opts SaveOptions, branch string) error {
	entries, err := gw.ListDir(ctx, record.ImagesPath(opts.Collection, opts.UID), opts.Ref)
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	shas := make(map[string]string, len(entries))
	for _, e := range entries {
		shas[e.Name] = e.SHA
	}
	for _, name := range opts.Removed {
		sha, ok := shas[name]
		if !ok {
			continue
		}
		path := record.ImagePath(opts.Collection, opts.UID, name)
		msg := fmt.Sprintf("delete image %s", name)
		if err := gw.DeleteFile(ctx, path, msg, sha, branch); err != nil {
			return fmt.Errorf("delete image %s: %w", name, err)
		}
	}
	return nil
}

// writeDocument serializes the draft and commits it to the mutation branch.
// The provider requires the current sha when overwriting, so the existing
// document is probed first; a missing document means a create.
func writeDocument(ctx context.Context, gw github.Gateway, opts SaveOptions, branch, message string) error {
	data, err := record.Serialize(opts.Draft, opts.Removed)
	if err != nil {
		return fmt.Errorf("serialize record: %w", err)
	}

	path := record.DocumentPath(opts.Collection, opts.UID)
	sha := ""
	if existing, err := gw.GetFile(ctx, path, opts.Ref); err != nil {
		return fmt.Errorf("probe document: %w", err)
	} else if existing != nil {
		sha = existing.SHA
	}

	if _, err := gw.PutFile(ctx, path, data, message, branch, sha); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// CreateNew creates a record with empty placeholder variants for every
// language and opens a PR for it. There are no prior images, so the machine
// skips straight from branch preparation to the document write.
func CreateNew(ctx context.Context, gw github.Gateway, c models.Collection, uid string, progress Progress) (*Result, error) {
	if progress == nil {
		progress = func(string) {}
	}

	progress("Preparing branch")
	base, branch, err := prepareBranch(ctx, gw, c, uid)
	if err != nil {
		return nil, err
	}

	progress("Writing document")
	draft := record.Materialize(c, uid, nil)
	data, err := record.Serialize(draft, nil)
	if err != nil {
		return nil, fmt.Errorf("serialize record: %w", err)
	}
	path := record.DocumentPath(c, uid)
	msg := fmt.Sprintf("create %s %s", c.Singular(), uid)
	if _, err := gw.PutFile(ctx, path, data, msg, branch, ""); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}

	progress("Creating pull request")
	title := fmt.Sprintf("Content: new %s %s", c.Singular(), uid)
	pr, autoMerge, err := openPR(ctx, gw, title, branch, base, "Create via admin")
	if err != nil {
		return nil, err
	}

	progress(fmt.Sprintf("PR #%d created", pr.Number))
	return &Result{Branch: branch, PRNumber: pr.Number, PRURL: pr.URL, AutoMerge: autoMerge}, nil
}

// LoadDraft fetches a record's document and materializes the editable draft.
// A missing or malformed document yields empty placeholders, never an error
// from the materialization itself.
func LoadDraft(ctx context.Context, gw github.Gateway, c models.Collection, uid, ref string) (record.Draft, error) {
	f, err := gw.GetFile(ctx, record.DocumentPath(c, uid), ref)
	if err != nil {
		return record.Draft{}, fmt.Errorf("load record %s/%s: %w", c, uid, err)
	}
	var raw []byte
	if f != nil {
		raw = f.Content
	}
	return record.Materialize(c, uid, raw), nil
}
