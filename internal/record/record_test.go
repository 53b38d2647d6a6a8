package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokrova/contentctl/internal/models"
)

func TestMaterialize_NilDocument(t *testing.T) {
	d := Materialize(models.Articles, "feast-2025", nil)

	assert.Len(t, d.Variants, 3)
	for _, lang := range models.Languages {
		v := d.Variants[lang]
		assert.Equal(t, lang, v.Language)
		assert.Equal(t, "news", v.Category)
		assert.Empty(t, v.Title)
		assert.Empty(t, v.Date)
		assert.Equal(t, []string{}, v.Images)
	}
}

func TestMaterialize_ScheduleDefaultCategory(t *testing.T) {
	d := Materialize(models.Schedule, "liturgy-sunday", nil)

	for _, lang := range models.Languages {
		assert.Equal(t, "liturgy", d.Variants[lang].Category)
	}
}

func TestMaterialize_MalformedDocument(t *testing.T) {
	d := Materialize(models.Articles, "x", []byte("{not json"))

	assert.Len(t, d.Variants, 3)
	for _, lang := range models.Languages {
		assert.True(t, d.Variants[lang].Empty())
	}
}

func TestMaterialize_OverlaysRemoteVariants(t *testing.T) {
	raw := []byte(`[
		{"language":"UK","category":"spiritual","title":"Святкування","date":"2025-10-14","images":["a.jpg"]},
		{"language":"en","category":"spiritual","title":"Celebration","date":"2025-10-14","images":["a.jpg"]}
	]`)

	d := Materialize(models.Articles, "feast-2025", raw)

	// Uppercase language codes are matched case-insensitively.
	assert.Equal(t, "Святкування", d.Variants[models.Ukrainian].Title)
	assert.Equal(t, models.Ukrainian, d.Variants[models.Ukrainian].Language)
	assert.Equal(t, "Celebration", d.Variants[models.English].Title)
	// Absent languages stay placeholders.
	assert.True(t, d.Variants[models.French].Empty())
	assert.Equal(t, "news", d.Variants[models.French].Category)
}

func TestMaterialize_UnknownLanguageIgnored(t *testing.T) {
	raw := []byte(`[{"language":"de","title":"Fest"}]`)

	d := Materialize(models.Articles, "x", raw)

	assert.Len(t, d.Variants, 3)
	for _, lang := range models.Languages {
		assert.True(t, d.Variants[lang].Empty())
	}
}

func TestSerialize_FixedLanguageOrder(t *testing.T) {
	d := Materialize(models.Articles, "x", nil)
	d = SetField(d, models.French, "title", "Fête")

	data, err := Serialize(d, nil)
	require.NoError(t, err)

	var wire []models.Variant
	require.NoError(t, json.Unmarshal(data, &wire))
	require.Len(t, wire, 3)
	assert.Equal(t, models.Ukrainian, wire[0].Language)
	assert.Equal(t, models.English, wire[1].Language)
	assert.Equal(t, models.French, wire[2].Language)
	assert.Equal(t, "Fête", wire[2].Title)
}

func TestSerialize_ArticleFieldsAlwaysPresent(t *testing.T) {
	d := Materialize(models.Articles, "x", nil)

	data, err := Serialize(d, nil)
	require.NoError(t, err)

	var wire []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))
	require.Len(t, wire, 3)
	for _, obj := range wire {
		assert.Contains(t, obj, "excerpt")
		assert.Contains(t, obj, "content")
		assert.NotContains(t, obj, "time")
		assert.Equal(t, []interface{}{}, obj["images"])
	}
}

func TestSerialize_ScheduleFieldsAlwaysPresent(t *testing.T) {
	d := Materialize(models.Schedule, "x", nil)

	data, err := Serialize(d, nil)
	require.NoError(t, err)

	var wire []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))
	for _, obj := range wire {
		assert.Contains(t, obj, "time")
		assert.Contains(t, obj, "location")
		assert.Contains(t, obj, "details")
		assert.NotContains(t, obj, "excerpt")
	}
}

func TestRoundTrip_PreservesContent(t *testing.T) {
	d := Materialize(models.Articles, "feast-2025", nil)
	d = SetField(d, models.Ukrainian, "title", "Престольне свято")
	d = SetField(d, models.Ukrainian, "excerpt", "Короткий опис")
	d = SetField(d, models.Ukrainian, "content", "Текст\nз рядками")
	d = SetField(d, models.Ukrainian, "date", "2025-10-14")
	d = AddImages(d, models.Ukrainian, "hero.jpg", "second.jpg")

	data, err := Serialize(d, nil)
	require.NoError(t, err)

	back := Materialize(models.Articles, "feast-2025", data)
	assert.Equal(t, d.Variants[models.Ukrainian], back.Variants[models.Ukrainian])
	assert.Equal(t, d.Variants[models.English], back.Variants[models.English])
	assert.Equal(t, d.Variants[models.French], back.Variants[models.French])
}

func TestRemoveImage_Idempotent(t *testing.T) {
	d := Materialize(models.Articles, "x", nil)
	d = AddImages(d, models.Ukrainian, "a.jpg", "b.jpg")
	d = AddImages(d, models.English, "a.jpg")

	var removed []string
	d, removed = RemoveImage(d, removed, "a.jpg")
	d, removed = RemoveImage(d, removed, "a.jpg")

	assert.Equal(t, []string{"a.jpg"}, removed)
	assert.Equal(t, []string{"b.jpg"}, d.Variants[models.Ukrainian].Images)
	assert.Equal(t, []string{}, d.Variants[models.English].Images)
}

func TestSerialize_ExcludesRemovedFromAllVariants(t *testing.T) {
	d := Materialize(models.Articles, "x", nil)
	d = AddImages(d, models.Ukrainian, "a.jpg", "b.jpg")
	d = AddImages(d, models.English, "a.jpg")
	d = AddImages(d, models.French, "c.jpg")

	data, err := Serialize(d, []string{"a.jpg"})
	require.NoError(t, err)

	var wire []models.Variant
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, []string{"b.jpg"}, wire[0].Images)
	assert.Equal(t, []string{}, wire[1].Images)
	assert.Equal(t, []string{"c.jpg"}, wire[2].Images)
}

func TestPromoteHero(t *testing.T) {
	d := Materialize(models.Articles, "x", nil)
	d = AddImages(d, models.Ukrainian, "a.jpg", "b.jpg", "c.jpg")

	d = PromoteHero(d, models.Ukrainian, "c.jpg")

	assert.Equal(t, []string{"c.jpg", "a.jpg", "b.jpg"}, d.Variants[models.Ukrainian].Images)
}

func TestPromoteHero_UnknownNameUnchanged(t *testing.T) {
	d := Materialize(models.Articles, "x", nil)
	d = AddImages(d, models.Ukrainian, "a.jpg")

	d = PromoteHero(d, models.Ukrainian, "missing.jpg")

	assert.Equal(t, []string{"a.jpg"}, d.Variants[models.Ukrainian].Images)
}

func TestAddImages_SkipsDuplicates(t *testing.T) {
	d := Materialize(models.Articles, "x", nil)
	d = AddImages(d, models.Ukrainian, "a.jpg")
	d = AddImages(d, models.Ukrainian, "a.jpg", "b.jpg")

	assert.Equal(t, []string{"a.jpg", "b.jpg"}, d.Variants[models.Ukrainian].Images)
}

func TestSetField_DoesNotMutateOriginal(t *testing.T) {
	d1 := Materialize(models.Articles, "x", nil)
	d2 := SetField(d1, models.Ukrainian, "title", "Нове")

	assert.Empty(t, d1.Variants[models.Ukrainian].Title)
	assert.Equal(t, "Нове", d2.Variants[models.Ukrainian].Title)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "data/articles/feast-2025/index.json", DocumentPath(models.Articles, "feast-2025"))
	assert.Equal(t, "data/schedule/liturgy/images", ImagesPath(models.Schedule, "liturgy"))
	assert.Equal(t, "data/articles/feast-2025/images/hero.jpg", ImagePath(models.Articles, "feast-2025", "hero.jpg"))
	assert.Equal(t, "data/articles", CollectionPath(models.Articles))
}

func TestPreview_PrefersUkrainian(t *testing.T) {
	d := Materialize(models.Articles, "x", nil)
	d = SetField(d, models.Ukrainian, "title", "Українська")
	d = SetField(d, models.English, "title", "English")

	p := Preview(d)
	assert.Equal(t, "Українська", p.Title)
	assert.Equal(t, models.Ukrainian, p.Language)
}

func TestPreview_FallsBackToFirstNonEmpty(t *testing.T) {
	d := Materialize(models.Articles, "x", nil)
	d = SetField(d, models.French, "title", "Français")

	p := Preview(d)
	assert.Equal(t, "Français", p.Title)
	assert.Equal(t, models.French, p.Language)
}
