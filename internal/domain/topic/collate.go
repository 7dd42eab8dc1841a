package topic

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"sort"
)

// Collator orders strings the way a Dutch reader expects. A Collator is not
// safe for concurrent use.
type Collator struct {
	c *collate.Collator
}

func NewCollator() *Collator {
	return &Collator{c: collate.New(language.Dutch, collate.IgnoreCase)}
}

func (c *Collator) Compare(a, b string) int {
	return c.c.CompareString(a, b)
}

func SortStrings(items []string) {
	c := NewCollator()
	sort.SliceStable(items, func(i, j int) bool {
		return c.Compare(items[i], items[j]) < 0
	})
}

// SortByCollectionText orders topics by collection, then text.
func SortByCollectionText(items []Topic) {
	c := NewCollator()
	sort.SliceStable(items, func(i, j int) bool {
		if d := c.Compare(items[i].Collection, items[j].Collection); d != 0 {
			return d < 0
		}
		return c.Compare(items[i].Text, items[j].Text) < 0
	})
}
