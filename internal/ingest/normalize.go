package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"teatopics/internal/domain/config"
	"teatopics/internal/domain/topic"
)

// NormalizeQuestion turns a candidate line into a topic text. Lines without
// a question mark are rejected; trailing punctuation is replaced by a single
// "?".
func NormalizeQuestion(s string) (string, bool) {
	s = topic.CollapseSpace(s)
	if !strings.Contains(s, "?") {
		return "", false
	}
	body := strings.TrimRight(s, " ?.!:;")
	if body == "" {
		return "", false
	}
	return body + "?", true
}

// Categorizer infers a category from keyword patterns. The first matching
// rule wins.
type Categorizer struct {
	rules []categoryRule
}

type categoryRule struct {
	name string
	re   *regexp.Regexp
}

func NewCategorizer(rules []config.CategoryRule) (*Categorizer, error) {
	c := &Categorizer{}
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", r.Name, err)
		}
		c.rules = append(c.rules, categoryRule{name: strings.TrimSpace(r.Name), re: re})
	}
	return c, nil
}

func (c *Categorizer) Infer(text string) string {
	if c == nil {
		return ""
	}
	for _, r := range c.rules {
		if r.re.MatchString(text) {
			return r.name
		}
	}
	return ""
}

// Prepare applies question filtering, normalization, category inference and
// per-collection de-duplication to decoded entries.
func Prepare(in []topic.Topic, cat *Categorizer) []topic.Topic {
	out := make([]topic.Topic, 0, len(in))
	for _, t := range in {
		text, ok := NormalizeQuestion(t.Text)
		if !ok {
			continue
		}
		t.Text = text
		t.Normalize()
		if t.Category == "" {
			t.Category = cat.Infer(t.Text)
		}
		out = append(out, t)
	}
	return topic.Dedupe(out)
}
