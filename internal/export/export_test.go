package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teatopics/internal/domain/topic"
	"teatopics/internal/ingest"
)

var fixedNow = time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)

func TestBuildSortsByCollectionThenText(t *testing.T) {
	in := []topic.Topic{
		topic.New("Zou je ooit?", "b", ""),
		topic.New("Waar ga je heen?", "a", "Reizen"),
		topic.New("Ben je blij?", "b", ""),
	}
	doc := Build(in, fixedNow)

	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, "2024-03-09", doc.UpdatedAt)
	require.Len(t, doc.Topics, 3)
	assert.Equal(t, "Waar ga je heen?", doc.Topics[0].Text)
	assert.Equal(t, "Ben je blij?", doc.Topics[1].Text)
	assert.Equal(t, "Zou je ooit?", doc.Topics[2].Text)
	assert.Equal(t, "Zou je ooit?", in[0].Text, "input must not be reordered")
}

func TestWriteUsesInterchangeFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []topic.Topic{topic.New("Wat drink je?", "Thee", "Thee")}, fixedNow))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	items := raw["topics"].([]any)
	first := items[0].(map[string]any)
	assert.Contains(t, first, "collectie")
	assert.Contains(t, first, "categorie")
	assert.Contains(t, first, "id")
}

func TestExportImportRoundTrip(t *testing.T) {
	in := []topic.Topic{
		topic.New("Wat is je favoriete thee?", "Thee", "Thee"),
		topic.New("Waar wil je wonen?", "Reizen & zo", "Reizen"),
		topic.New("Wat maakt je blij?", "Thee", ""),
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in, fixedNow))

	out, err := ingest.DecodeImport(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, out, len(in))

	byText := make(map[string]topic.Topic, len(out))
	for _, tp := range out {
		byText[tp.Text] = tp
	}
	for _, want := range in {
		got, ok := byText[want.Text]
		require.True(t, ok, want.Text)
		assert.Equal(t, want.Category, got.Category)
		assert.Equal(t, want.Collection, got.Collection)
		assert.Equal(t, want.ID, got.ID)
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "topics-2024-03-09.json", Filename(fixedNow))
}
