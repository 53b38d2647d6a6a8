package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokrova/contentctl/internal/github"
	"github.com/pokrova/contentctl/internal/models"
)

func TestListPreviews_SkipsBrokenRecords(t *testing.T) {
	gw := github.NewMockGateway()
	gw.AddFile("main", "data/articles/alpha/index.json", []byte(`[
		{"language":"en","category":"news","title":"Alpha EN"},
		{"language":"uk","category":"news","title":"Альфа","date":"2025-01-05"}
	]`))
	gw.AddFile("main", "data/articles/beta/index.json", []byte("{not json"))
	gw.AddFile("main", "data/articles/gamma/index.json", []byte(`{"language":"uk","title":"Гамма"}`))
	// Directory without a document and a stray top-level file are both skipped.
	gw.AddFile("main", "data/articles/empty/images/x.jpg", []byte("x"))
	gw.AddFile("main", "data/articles/notes.txt", []byte("x"))

	previews, err := ListPreviews(context.Background(), gw, models.Articles, "")
	require.NoError(t, err)

	require.Len(t, previews, 2)
	assert.Equal(t, "alpha", previews[0].UID)
	assert.Equal(t, "Альфа", previews[0].Title)
	assert.Equal(t, models.Ukrainian, previews[0].Language)
	assert.Equal(t, "2025-01-05", previews[0].Date)
	assert.Equal(t, "gamma", previews[1].UID)
	assert.Equal(t, "Гамма", previews[1].Title)
}

func TestListPreviews_PrefersUkrainianVariant(t *testing.T) {
	gw := github.NewMockGateway()
	gw.AddFile("main", "data/articles/x/index.json", []byte(`[
		{"language":"en","title":"English"},
		{"language":"UK","title":"Українська"}
	]`))

	previews, err := ListPreviews(context.Background(), gw, models.Articles, "")
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, "Українська", previews[0].Title)
}

func TestListPreviews_FallsBackToFirstVariant(t *testing.T) {
	gw := github.NewMockGateway()
	gw.AddFile("main", "data/articles/x/index.json", []byte(`[
		{"language":"en","title":"English"},
		{"language":"fr","title":"Français"}
	]`))

	previews, err := ListPreviews(context.Background(), gw, models.Articles, "")
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, "English", previews[0].Title)
}

func TestListPreviews_EmptyCollection(t *testing.T) {
	gw := github.NewMockGateway()

	previews, err := ListPreviews(context.Background(), gw, models.Articles, "")
	require.NoError(t, err)
	assert.Empty(t, previews)
}

func TestListPreviews_ListingFailureIsHard(t *testing.T) {
	gw := github.NewMockGateway()
	gw.FailOn = "list"

	_, err := ListPreviews(context.Background(), gw, models.Articles, "")
	assert.Error(t, err)
}

func TestListPreviews_ReadFailureDropsRecordOnly(t *testing.T) {
	gw := github.NewMockGateway()
	gw.AddFile("main", "data/articles/x/index.json", []byte(`[{"language":"uk","title":"X"}]`))
	gw.FailOn = "get"

	previews, err := ListPreviews(context.Background(), gw, models.Articles, "")
	require.NoError(t, err)
	assert.Empty(t, previews)
}

func TestParsePreview_EmptyArrayRejected(t *testing.T) {
	_, ok := parsePreview("x", []byte(`[]`))
	assert.False(t, ok)
}
