// Package record implements the multilingual draft model: materializing a
// draft from a remote document, pure edits on it, and serializing it back to
// the wire array format.
package record

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pokrova/contentctl/internal/models"
)

// Draft is an in-memory record under edit: every site language is always
// present as a key, absent variants materialized as empty placeholders.
// Drafts are passed by value; edit operations return a new Draft.
type Draft struct {
	Collection models.Collection
	UID        string
	Variants   map[models.Language]models.Variant
}

// DocumentPath returns the repository path of a record's JSON document.
func DocumentPath(c models.Collection, uid string) string {
	return fmt.Sprintf("data/%s/%s/index.json", c, uid)
}

// ImagesPath returns the repository path of a record's images directory.
func ImagesPath(c models.Collection, uid string) string {
	return fmt.Sprintf("data/%s/%s/images", c, uid)
}

// ImagePath returns the repository path of one image asset.
func ImagePath(c models.Collection, uid, name string) string {
	return ImagesPath(c, uid) + "/" + name
}

// CollectionPath returns the repository path of a collection's root directory.
func CollectionPath(c models.Collection) string {
	return "data/" + string(c)
}

// Materialize builds a Draft from a remote document. raw may be nil (new
// record) or malformed (legacy or hand-edited content); in both cases every
// language stays an empty placeholder. Materialize never fails.
func Materialize(c models.Collection, uid string, raw []byte) Draft {
	d := Draft{
		Collection: c,
		UID:        uid,
		Variants:   make(map[models.Language]models.Variant, len(models.Languages)),
	}
	for _, lang := range models.Languages {
		d.Variants[lang] = models.EmptyVariant(c, lang)
	}
	if len(raw) == 0 {
		return d
	}

	var wire []models.Variant
	if err := json.Unmarshal(raw, &wire); err != nil {
		return d
	}
	for _, v := range wire {
		lang := models.Language(strings.ToLower(string(v.Language)))
		base, ok := d.Variants[lang]
		if !ok {
			continue
		}
		v.Language = lang
		if v.Category == "" {
			v.Category = base.Category
		}
		if v.Images == nil {
			v.Images = []string{}
		}
		d.Variants[lang] = v
	}
	return d
}

// Serialize encodes the draft as the persisted wire array: exactly one
// variant per language in uk, en, fr order, with any removed image names
// filtered out of every variant. Image uploads are shared by filename across
// languages, so removal applies uniformly.
func Serialize(d Draft, removed []string) ([]byte, error) {
	out := make([]wireVariant, 0, len(models.Languages))
	for _, lang := range models.Languages {
		v := d.Variants[lang]
		v.Images = filterImages(v.Images, removed)
		out = append(out, wireVariant{collection: d.Collection, v: v})
	}
	return json.MarshalIndent(out, "", "  ")
}

// wireVariant marshals a variant with the field set of its collection, so an
// empty article still serializes with explicit excerpt/content fields and an
// empty event with time/location/details.
type wireVariant struct {
	collection models.Collection
	v          models.Variant
}

func (w wireVariant) MarshalJSON() ([]byte, error) {
	if w.collection == models.Schedule {
		return json.Marshal(struct {
			Language models.Language `json:"language"`
			Category string          `json:"category"`
			Title    string          `json:"title"`
			Date     string          `json:"date"`
			Time     string          `json:"time"`
			Location string          `json:"location"`
			Details  string          `json:"details"`
			Images   []string        `json:"images"`
		}{w.v.Language, w.v.Category, w.v.Title, w.v.Date, w.v.Time, w.v.Location, w.v.Details, w.v.Images})
	}
	return json.Marshal(struct {
		Language models.Language `json:"language"`
		Category string          `json:"category"`
		Title    string          `json:"title"`
		Date     string          `json:"date"`
		Excerpt  string          `json:"excerpt"`
		Content  string          `json:"content"`
		Images   []string        `json:"images"`
	}{w.v.Language, w.v.Category, w.v.Title, w.v.Date, w.v.Excerpt, w.v.Content, w.v.Images})
}

func filterImages(images, removed []string) []string {
	if len(images) == 0 {
		return []string{}
	}
	if len(removed) == 0 {
		return images
	}
	out := make([]string, 0, len(images))
	for _, name := range images {
		if !contains(removed, name) {
			out = append(out, name)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// SetField updates one named field of one language's variant and returns the
// new draft. Unknown fields are ignored.
func SetField(d Draft, lang models.Language, field, value string) Draft {
	v := d.Variants[lang]
	switch field {
	case "category":
		v.Category = value
	case "title":
		v.Title = value
	case "date":
		v.Date = value
	case "excerpt":
		v.Excerpt = value
	case "content":
		v.Content = value
	case "time":
		v.Time = value
	case "location":
		v.Location = value
	case "details":
		v.Details = value
	}
	return setVariant(d, lang, v)
}

// AddImages appends image names to one language's variant, skipping names
// already present.
func AddImages(d Draft, lang models.Language, names ...string) Draft {
	v := d.Variants[lang]
	images := append([]string{}, v.Images...)
	for _, name := range names {
		if !contains(images, name) {
			images = append(images, name)
		}
	}
	v.Images = images
	return setVariant(d, lang, v)
}

// RemoveImage drops an image name from every variant's list and returns the
// name appended to the removal marks. Calling it twice for the same name is
// a no-op the second time.
func RemoveImage(d Draft, removed []string, name string) (Draft, []string) {
	for _, lang := range models.Languages {
		v := d.Variants[lang]
		v.Images = filterImages(v.Images, []string{name})
		d = setVariant(d, lang, v)
	}
	if contains(removed, name) {
		return d, removed
	}
	return d, append(append([]string{}, removed...), name)
}

// PromoteHero moves an image name to the front of one language's list,
// preserving the order of the rest. Unknown names leave the list unchanged.
func PromoteHero(d Draft, lang models.Language, name string) Draft {
	v := d.Variants[lang]
	if !contains(v.Images, name) {
		return d
	}
	images := make([]string, 0, len(v.Images))
	images = append(images, name)
	for _, n := range v.Images {
		if n != name {
			images = append(images, n)
		}
	}
	v.Images = images
	return setVariant(d, lang, v)
}

// Preview projects the draft's display variant (uk preferred, else the first
// non-empty variant) for list views.
func Preview(d Draft) models.Preview {
	v := d.Variants[models.Ukrainian]
	if v.Empty() {
		for _, lang := range models.Languages {
			if !d.Variants[lang].Empty() {
				v = d.Variants[lang]
				break
			}
		}
	}
	return models.Preview{
		UID:      d.UID,
		Language: v.Language,
		Category: v.Category,
		Title:    v.Title,
		Date:     v.Date,
		Time:     v.Time,
		Location: v.Location,
		Images:   v.Images,
	}
}

// setVariant returns a draft with one variant replaced, leaving the original
// draft's map untouched.
func setVariant(d Draft, lang models.Language, v models.Variant) Draft {
	variants := make(map[models.Language]models.Variant, len(d.Variants))
	for k, val := range d.Variants {
		variants[k] = val
	}
	variants[lang] = v
	d.Variants = variants
	return d
}
