// Package export writes the library in the interchange format read back
// by import.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"teatopics/internal/domain/topic"
	"time"
)

const Version = 1

type Document struct {
	Version   int           `json:"version"`
	UpdatedAt string        `json:"updatedAt"`
	Topics    []topic.Topic `json:"topics"`
}

// Build returns a sorted copy of topics wrapped in a Document stamped with now.
func Build(topics []topic.Topic, now time.Time) Document {
	items := make([]topic.Topic, len(topics))
	copy(items, topics)
	topic.SortByCollectionText(items)
	return Document{
		Version:   Version,
		UpdatedAt: now.Format(time.DateOnly),
		Topics:    items,
	}
}

func Write(w io.Writer, topics []topic.Topic, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Build(topics, now)); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Filename is the suggested download name for a snapshot taken at now.
func Filename(now time.Time) string {
	return "topics-" + now.Format(time.DateOnly) + ".json"
}
