// Package models defines the content record shapes shared across contentctl.
package models

// Language is a site language code. The set is closed for now; adding a
// language means extending Languages and the empty-variant defaults.
type Language string

const (
	Ukrainian Language = "uk"
	English   Language = "en"
	French    Language = "fr"
)

// Languages lists all site languages in the order variants are persisted.
var Languages = []Language{Ukrainian, English, French}

// Collection identifies a content collection under data/.
type Collection string

const (
	Articles Collection = "articles"
	Schedule Collection = "schedule"
)

// Valid reports whether the collection is one contentctl manages.
func (c Collection) Valid() bool {
	return c == Articles || c == Schedule
}

// Singular returns the collection's singular noun, used in commit messages
// and PR titles.
func (c Collection) Singular() string {
	if c == Articles {
		return "article"
	}
	return string(c)
}

// DefaultCategory returns the category a freshly created variant starts with.
func (c Collection) DefaultCategory() string {
	if c == Schedule {
		return "liturgy"
	}
	return "news"
}

// Categories returns the allowed category values for the collection.
func (c Collection) Categories() []string {
	if c == Schedule {
		return []string{"liturgy", "announcement"}
	}
	return []string{"news", "spiritual", "community"}
}

// Variant is one language's version of a record. Article records use
// Excerpt/Content; schedule records use Time/Location/Details. The remaining
// fields are shared. Images are filenames relative to the record's images/
// directory; the first entry is the hero image.
type Variant struct {
	Language Language `json:"language"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Content  string   `json:"content,omitempty"`
	Time     string   `json:"time,omitempty"`
	Location string   `json:"location,omitempty"`
	Details  string   `json:"details,omitempty"`
	Images   []string `json:"images"`
}

// Empty reports whether the variant carries no user-entered content.
func (v Variant) Empty() bool {
	return v.Title == "" && v.Excerpt == "" && v.Content == "" &&
		v.Details == "" && v.Location == "" && len(v.Images) == 0
}

// EmptyVariant returns the placeholder variant for a language in a collection.
func EmptyVariant(c Collection, lang Language) Variant {
	return Variant{
		Language: lang,
		Category: c.DefaultCategory(),
		Images:   []string{},
	}
}

// Preview is the single-language projection of a record used by list views.
type Preview struct {
	UID      string   `json:"uid"`
	Language Language `json:"language"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Time     string   `json:"time,omitempty"`
	Location string   `json:"location,omitempty"`
	Images   []string `json:"images,omitempty"`
}

// PullRequest identifies a pull request opened for a content mutation.
// NodeID is the provider's internal identifier used by the auto-merge call.
type PullRequest struct {
	Number int    `json:"number"`
	NodeID string `json:"node_id"`
	URL    string `json:"html_url"`
}
