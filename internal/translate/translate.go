// Package translate backfills missing language variants through a
// LibreTranslate-compatible endpoint. Everything here is best-effort: a
// failed or empty translation returns the original text, and the save path
// never blocks on this package.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pokrova/contentctl/internal/models"
	"github.com/pokrova/contentctl/internal/record"
)

// interCallDelay paces requests to avoid rate-limiting the endpoint. This is
// a courtesy, not a correctness requirement.
const interCallDelay = 150 * time.Millisecond

// Client calls the translation endpoint. A zero BaseURL disables the client;
// all calls become no-ops that return their input.
type Client struct {
	baseURL    string
	httpClient *http.Client
	delay      time.Duration
}

// NewClient creates a translation client. baseURL may be empty, which yields
// a disabled client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		delay:      interCallDelay,
	}
}

// Enabled reports whether a translation endpoint is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Translate translates text from source into target. On any failure (no
// endpoint, transport error, non-2xx, empty result) the original text is
// returned unchanged.
func (c *Client) Translate(ctx context.Context, text, source, target string) string {
	if !c.Enabled() || strings.TrimSpace(text) == "" {
		return text
	}
	if source == "" {
		source = "auto"
	}

	reqBody, err := json.Marshal(struct {
		Q      string `json:"q"`
		Source string `json:"source"`
		Target string `json:"target"`
		Format string `json:"format"`
	}{Q: text, Source: source, Target: target, Format: "text"})
	if err != nil {
		return text
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/translate", bytes.NewReader(reqBody))
	if err != nil {
		return text
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return text
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return text
	}

	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return text
	}
	if strings.TrimSpace(out.TranslatedText) == "" {
		return text
	}
	return out.TranslatedText
}

// FillMissing translates into every language whose variant has an empty
// title, using the richest available source variant (uk preferred, else the
// first with a non-empty title). Non-empty fields are never overwritten.
// With no configured endpoint or no usable source the draft is returned
// unchanged.
func (c *Client) FillMissing(ctx context.Context, d record.Draft) record.Draft {
	if !c.Enabled() {
		return d
	}

	src, ok := sourceVariant(d)
	if !ok {
		return d
	}

	fields := []string{"title", "excerpt", "content"}
	if d.Collection == models.Schedule {
		fields = []string{"title", "details", "location"}
	}

	for _, lang := range models.Languages {
		if lang == src.Language || d.Variants[lang].Title != "" {
			continue
		}
		for _, field := range fields {
			current := fieldValue(d.Variants[lang], field)
			if current != "" {
				continue
			}
			translated := c.Translate(ctx, fieldValue(src, field), string(src.Language), string(lang))
			d = record.SetField(d, lang, field, translated)
			c.pause(ctx)
		}
	}
	return d
}

func (c *Client) pause(ctx context.Context) {
	if c.delay <= 0 {
		return
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func sourceVariant(d record.Draft) (models.Variant, bool) {
	if v := d.Variants[models.Ukrainian]; v.Title != "" {
		return v, true
	}
	for _, lang := range models.Languages {
		if v := d.Variants[lang]; v.Title != "" {
			return v, true
		}
	}
	return models.Variant{}, false
}

func fieldValue(v models.Variant, field string) string {
	switch field {
	case "title":
		return v.Title
	case "excerpt":
		return v.Excerpt
	case "content":
		return v.Content
	case "details":
		return v.Details
	case "location":
		return v.Location
	}
	return ""
}
