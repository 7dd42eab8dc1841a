package topic

import (
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"regexp"
	"strings"
	"unicode"
)

// Topic is a single conversation prompt. Collection groups topics that came
// from the same deck or poster; Category is a free-text label inside it.
type Topic struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Collection string `json:"collectie"`
	Category   string `json:"categorie"`
}

func New(text, collection, category string) Topic {
	t := Topic{
		ID:         NewID(),
		Text:       text,
		Collection: collection,
		Category:   category,
	}
	t.Normalize()
	return t
}

func NewID() string {
	return uuid.NewString()
}

// IDs end up in URLs and file names, so only this alphabet is kept.
var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func ValidID(id string) bool {
	return validID.MatchString(id)
}

func (t *Topic) Normalize() {
	t.ID = strings.TrimSpace(t.ID)
	t.Text = CollapseSpace(t.Text)
	t.Collection = CollapseSpace(t.Collection)
	t.Category = CollapseSpace(t.Category)
	if !ValidID(t.ID) {
		t.ID = NewID()
	}
}

func (t Topic) Valid() bool {
	return t.Text != ""
}

// Key is the de-duplication key of t inside its collection.
func (t Topic) Key() string {
	return Key(t.Text)
}

var quoteFolder = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"’", "'",
	"‘", "'",
)

// Key folds text to the form used for case-insensitive comparison.
func Key(text string) string {
	s := norm.NFKC.String(text)
	s = strings.ToLower(s)
	s = quoteFolder.Replace(s)
	return CollapseSpace(s)
}

// CollapseSpace trims s and replaces every whitespace run with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Dedupe keeps the first topic for every (collection, key) pair and drops
// topics with empty text. Order is preserved.
func Dedupe(in []Topic) []Topic {
	seen := make(map[string]struct{}, len(in))
	out := make([]Topic, 0, len(in))
	for _, t := range in {
		if !t.Valid() {
			continue
		}
		k := ScopedKey(t.Collection, t.Text)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

func ScopedKey(collection, text string) string {
	return Key(collection) + "\x00" + Key(text)
}
