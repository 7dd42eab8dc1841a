package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	domainerr "teatopics/internal/domain/errors"
	"teatopics/internal/domain/topic"
)

var errBadShape = errors.New(`expected an object with "topics" or "topicsRaw"`)

type document struct {
	Version   int               `json:"version,omitempty"`
	UpdatedAt string            `json:"updatedAt,omitempty"`
	Topics    []json.RawMessage `json:"topics"`
	TopicsRaw *string           `json:"topicsRaw"`
}

type record struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Category   string `json:"category"`
	Categorie  string `json:"categorie"`
	Collection string `json:"collection"`
	Collectie  string `json:"collectie"`
}

func (r record) category() string {
	if s := strings.TrimSpace(r.Categorie); s != "" {
		return s
	}
	return strings.TrimSpace(r.Category)
}

func (r record) collection() string {
	if s := strings.TrimSpace(r.Collectie); s != "" {
		return s
	}
	return strings.TrimSpace(r.Collection)
}

var lineSplit = regexp.MustCompile(`\r?\n`)

// Decode reads one topic document. Entries are returned as found, before
// question filtering or de-duplication; entries without a collection get
// defaultCollection.
func Decode(raw []byte, defaultCollection string) ([]topic.Topic, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}

	switch {
	case doc.Topics != nil:
		out := make([]topic.Topic, 0, len(doc.Topics))
		for i, item := range doc.Topics {
			t, ok, err := decodeItem(item, defaultCollection)
			if err != nil {
				return nil, fmt.Errorf("decode topics[%d]: %w", i, err)
			}
			if ok {
				out = append(out, t)
			}
		}
		return out, nil
	case doc.TopicsRaw != nil:
		var out []topic.Topic
		for _, line := range lineSplit.Split(*doc.TopicsRaw, -1) {
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			out = append(out, topic.Topic{Text: line, Collection: defaultCollection})
		}
		return out, nil
	default:
		return nil, errBadShape
	}
}

func decodeItem(item json.RawMessage, defaultCollection string) (topic.Topic, bool, error) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 || bytes.Equal(item, []byte("null")) {
		return topic.Topic{}, false, nil
	}
	if item[0] == '"' {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return topic.Topic{}, false, err
		}
		return topic.Topic{Text: s, Collection: defaultCollection}, true, nil
	}

	var r record
	if err := json.Unmarshal(item, &r); err != nil {
		return topic.Topic{}, false, err
	}
	coll := r.collection()
	if coll == "" {
		coll = defaultCollection
	}
	return topic.Topic{
		ID:         r.ID,
		Text:       r.Text,
		Collection: coll,
		Category:   r.category(),
	}, true, nil
}

// DecodeImport reads a document in export format. Unlike Decode it only
// accepts records that carry both text and collectie, and it fails when
// nothing usable remains.
func DecodeImport(raw []byte) ([]topic.Topic, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if doc.Topics == nil {
		return nil, fmt.Errorf("import: %w", errors.New(`JSON has no "topics" array`))
	}

	out := make([]topic.Topic, 0, len(doc.Topics))
	for _, item := range doc.Topics {
		var r record
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		if strings.TrimSpace(r.Text) == "" || r.collection() == "" {
			continue
		}
		t := topic.Topic{
			ID:         r.ID,
			Text:       r.Text,
			Collection: r.collection(),
			Category:   r.category(),
		}
		t.Normalize()
		out = append(out, t)
	}
	out = topic.Dedupe(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("import: %w", domainerr.ErrNoTopics)
	}
	return out, nil
}
