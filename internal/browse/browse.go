// Package browse filters and paginates the topic list shown in the grid.
// Everything here is pure: the same list and query always give the same page.
package browse

import (
	"strings"
	"teatopics/internal/domain/topic"
)

// All is the sentinel filter value meaning "no filter".
const All = "ALLE"

type Query struct {
	Text       string
	Collection string
	Category   string
	Page       int
}

func (q Query) Normalized() Query {
	q.Text = strings.ToLower(strings.TrimSpace(q.Text))
	q.Collection = normFacet(q.Collection)
	q.Category = normFacet(q.Category)
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

func normFacet(s string) string {
	s = strings.TrimSpace(s)
	if s == All {
		return ""
	}
	return s
}

func (q Query) IsZero() bool {
	n := q.Normalized()
	return n.Text == "" && n.Collection == "" && n.Category == ""
}

// Filter applies collection, then category, then the case-insensitive
// substring query. Source order is preserved.
func Filter(list []topic.Topic, q Query) []topic.Topic {
	q = q.Normalized()
	out := make([]topic.Topic, 0, len(list))
	for _, t := range list {
		if q.Collection != "" && t.Collection != q.Collection {
			continue
		}
		if q.Category != "" && t.Category != q.Category {
			continue
		}
		if q.Text != "" && !strings.Contains(strings.ToLower(t.Text), q.Text) {
			continue
		}
		out = append(out, t)
	}
	return out
}

type Page struct {
	Items []topic.Topic
	// Page is 1-based and always within [1, Pages].
	Page  int
	Pages int
	Size  int
	// Total is the size of the unfiltered list, Shown the filtered one.
	Total int
	Shown int
}

func (p Page) HasPrev() bool { return p.Page > 1 }
func (p Page) HasNext() bool { return p.Page < p.Pages }

// Numbers lists the page numbers for pagination controls.
func (p Page) Numbers() []int {
	out := make([]int, p.Pages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Paginate slices filtered into pages of size. An empty list still has one
// (empty) page.
func Paginate(filtered []topic.Topic, page, size, total int) Page {
	if size <= 0 {
		size = 24
	}
	pages := (len(filtered) + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}
	return Page{
		Items: filtered[start:end],
		Page:  page,
		Pages: pages,
		Size:  size,
		Total: total,
		Shown: len(filtered),
	}
}

// Apply is Filter followed by Paginate.
func Apply(list []topic.Topic, q Query, size int) Page {
	q = q.Normalized()
	return Paginate(Filter(list, q), q.Page, size, len(list))
}

// Reconcile drops a category filter that no longer exists under the selected
// collection, mirroring how the category picker resets.
func Reconcile(q Query, categories []string) Query {
	c := normFacet(q.Category)
	if c == "" {
		return q
	}
	for _, x := range categories {
		if x == c {
			return q
		}
	}
	q.Category = ""
	return q
}
