package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"teatopics/internal/domain/topic"
)

func fiveTopics() []topic.Topic {
	return []topic.Topic{
		{ID: "1", Text: "Welke thee drink je graag?", Collection: "A", Category: "Thee"},
		{ID: "2", Text: "Waar ga je heen?", Collection: "A", Category: "Reizen"},
		{ID: "3", Text: "Met wie drink je THEE?", Collection: "B", Category: "Thee"},
		{ID: "4", Text: "Wat eet je graag?", Collection: "B", Category: "Eten"},
		{ID: "5", Text: "Hoe voel je je?", Collection: "B"},
	}
}

func ids(items []topic.Topic) []string {
	var out []string
	for _, t := range items {
		out = append(out, t.ID)
	}
	return out
}

func TestFilterByCategory(t *testing.T) {
	got := Filter(fiveTopics(), Query{Category: "Thee"})
	assert.Equal(t, []string{"1", "3"}, ids(got))
	for _, tp := range got {
		assert.Equal(t, "Thee", tp.Category)
	}
}

func TestFilterQueryIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, []string{"1", "3"}, ids(Filter(fiveTopics(), Query{Text: "  tHeE "})))
	assert.Equal(t, []string{"3"}, ids(Filter(fiveTopics(), Query{Text: "thee", Collection: "B"})))
}

func TestFilterAllSentinel(t *testing.T) {
	got := Filter(fiveTopics(), Query{Collection: All, Category: All})
	assert.Len(t, got, 5)
	assert.True(t, Query{Collection: All, Category: " "}.IsZero())
}

func TestPaginateClampsPage(t *testing.T) {
	list := fiveTopics()

	p := Paginate(list, 2, 2, len(list))
	assert.Equal(t, []string{"3", "4"}, ids(p.Items))
	assert.Equal(t, 3, p.Pages)
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())

	last := Paginate(list, 99, 2, len(list))
	assert.Equal(t, 3, last.Page)
	assert.Equal(t, []string{"5"}, ids(last.Items))
	assert.False(t, last.HasNext())

	assert.Equal(t, []int{1, 2, 3}, last.Numbers())
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(nil, 3, 10, 7)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.Pages)
	assert.Empty(t, p.Items)
	assert.Equal(t, 7, p.Total)
	assert.Zero(t, p.Shown)
}

func TestApplyIsDeterministic(t *testing.T) {
	q := Query{Text: "je", Page: 2}
	a := Apply(fiveTopics(), q, 2)
	b := Apply(fiveTopics(), q, 2)
	assert.Equal(t, a, b)
	assert.Equal(t, 5, a.Total)
	assert.Equal(t, 5, a.Shown)
}

func TestReconcile(t *testing.T) {
	catsA := []string{"Reizen", "Thee"}

	q := Reconcile(Query{Collection: "A", Category: "Eten"}, catsA)
	assert.Empty(t, q.Category)
	q = Reconcile(Query{Collection: "A", Category: "Thee"}, catsA)
	assert.Equal(t, "Thee", q.Category)
}
