// Package extract pulls question-like lines out of raw OCR text.
package extract

import (
	"regexp"
	"strings"
	"teatopics/internal/domain/topic"
	"unicode/utf8"
)

const minLineLen = 6

// DefaultCollection receives extracted topics when the caller names none.
const DefaultCollection = "Nieuwe collectie (OCR)"

var (
	lineSplit     = regexp.MustCompile(`\r?\n`)
	leadingBullet = regexp.MustCompile(`^[•\-–—]+`)
	spaceBeforeQ  = regexp.MustCompile(`\s+\?`)
	interrogative = regexp.MustCompile(`(?i)^(in welke|in welk|met wie|zou je|ben je|heb je|wanneer|waarom|welke|welk|waar|wat|wie|hoe)\b`)
)

// Questions returns the distinct questions found in raw, in order of first
// appearance. Duplicates are detected case-insensitively.
func Questions(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		k := topic.Key(s)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}

	for _, line := range lineSplit.Split(raw, -1) {
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) < minLineLen || strings.HasPrefix(line, "---") {
			continue
		}
		line = topic.CollapseSpace(line)
		line = strings.TrimSpace(leadingBullet.ReplaceAllString(line, ""))
		line = spaceBeforeQ.ReplaceAllString(line, "?")

		for _, seg := range splitQuestions(line) {
			if q, ok := Classify(seg); ok {
				add(q)
			}
		}
	}
	return out
}

// splitQuestions cuts a line after every "?" so that "Wie ben je? Waar woon
// je?" yields two candidates. Text after the last "?" is kept as its own
// candidate.
func splitQuestions(line string) []string {
	var segs []string
	for {
		i := strings.IndexByte(line, '?')
		if i < 0 {
			break
		}
		if s := strings.TrimSpace(line[:i+1]); s != "?" {
			segs = append(segs, s)
		}
		line = line[i+1:]
	}
	if s := strings.TrimSpace(line); s != "" {
		segs = append(segs, s)
	}
	return segs
}

// Classify reports whether s reads as a question: it ends with "?" or it
// starts with an interrogative. The returned text always ends with "?".
func Classify(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "?" {
		return "", false
	}
	if strings.HasSuffix(s, "?") {
		return s, true
	}
	if interrogative.MatchString(s) {
		return strings.TrimRight(s, " .!:;,") + "?", true
	}
	return "", false
}

// Topics turns the questions in raw into topics of collection; an empty
// collection becomes DefaultCollection. Categories are left empty.
func Topics(raw, collection string) []topic.Topic {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = DefaultCollection
	}
	qs := Questions(raw)
	out := make([]topic.Topic, 0, len(qs))
	for _, q := range qs {
		out = append(out, topic.New(q, collection, ""))
	}
	return out
}
