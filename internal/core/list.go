package core

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pokrova/contentctl/internal/github"
	"github.com/pokrova/contentctl/internal/models"
	"github.com/pokrova/contentctl/internal/record"
)

// listWorkers bounds concurrent per-record document reads.
const listWorkers = 4

// ListPreviews enumerates a collection's record directories and produces one
// display preview per record. Records are read concurrently; a read or parse
// failure for one record drops that record from the result and never fails
// the listing.
func ListPreviews(ctx context.Context, gw github.Gateway, c models.Collection, ref string) ([]models.Preview, error) {
	entries, err := gw.ListDir(ctx, record.CollectionPath(c), ref)
	if err != nil {
		return nil, err
	}

	// Indexed slots keep the listing in directory order regardless of
	// which read finishes first.
	slots := make([]*models.Preview, len(entries))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(listWorkers)

	for i, e := range entries {
		if e.Type != "dir" {
			continue
		}
		i, uid := i, e.Name
		g.Go(func() error {
			f, err := gw.GetFile(ctx, record.DocumentPath(c, uid), ref)
			if err != nil || f == nil {
				return nil // bad record, skip
			}
			p, ok := parsePreview(uid, f.Content)
			if !ok {
				return nil
			}
			mu.Lock()
			slots[i] = &p
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	previews := make([]models.Preview, 0, len(entries))
	for _, p := range slots {
		if p != nil {
			previews = append(previews, *p)
		}
	}
	return previews, nil
}

// parsePreview extracts the display variant from a raw document: the uk
// variant of the wire array if present, else the first element. A legacy
// single-object document is used directly.
func parsePreview(uid string, raw []byte) (models.Preview, bool) {
	var variants []models.Variant
	if err := json.Unmarshal(raw, &variants); err == nil {
		if len(variants) == 0 {
			return models.Preview{}, false
		}
		chosen := variants[0]
		for _, v := range variants {
			if strings.EqualFold(string(v.Language), string(models.Ukrainian)) {
				chosen = v
				break
			}
		}
		return variantPreview(uid, chosen), true
	}

	var single models.Variant
	if err := json.Unmarshal(raw, &single); err == nil {
		return variantPreview(uid, single), true
	}
	return models.Preview{}, false
}

func variantPreview(uid string, v models.Variant) models.Preview {
	return models.Preview{
		UID:      uid,
		Language: v.Language,
		Category: v.Category,
		Title:    v.Title,
		Date:     v.Date,
		Time:     v.Time,
		Location: v.Location,
		Images:   v.Images,
	}
}
