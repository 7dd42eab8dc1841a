package topic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFoldsCaseQuotesAndSpace(t *testing.T) {
	assert.Equal(t, Key("Wat is  je NAAM?"), Key(" wat is je naam? "))
	assert.Equal(t, Key("Wat is “thuis”?"), Key(`wat is "thuis"?`))
	assert.NotEqual(t, Key("Wat is je naam?"), Key("Wat is jouw naam?"))
}

func TestNormalizeAssignsID(t *testing.T) {
	tp := Topic{Text: "  Hoe   gaat het?  "}
	tp.Normalize()
	assert.Equal(t, "Hoe gaat het?", tp.Text)
	assert.NotEmpty(t, tp.ID)

	kept := Topic{ID: " abc ", Text: "x?"}
	kept.Normalize()
	assert.Equal(t, "abc", kept.ID)
}

func TestNormalizeReplacesUnsafeIDs(t *testing.T) {
	for _, id := range []string{"../../escaped", "a/b", `a\b`, "kaart 1", ".", strings.Repeat("x", 65)} {
		tp := Topic{ID: id, Text: "Wat?"}
		tp.Normalize()
		assert.NotEqual(t, id, tp.ID, id)
		assert.True(t, ValidID(tp.ID), tp.ID)
	}
}

func TestDedupeIsScopedPerCollection(t *testing.T) {
	in := []Topic{
		{ID: "1", Text: "Wat is je naam?", Collection: "A"},
		{ID: "2", Text: "wat is je naam?", Collection: "A"},
		{ID: "3", Text: "Wat is je naam?", Collection: "B"},
		{ID: "4", Text: "", Collection: "B"},
	}
	out := Dedupe(in)
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "3", out[1].ID)
}
