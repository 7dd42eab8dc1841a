package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "topics.json")
	require.NoError(t, os.WriteFile(src, []byte(source), 0o644))
	cfg := "source:\n  path: " + src + "\nlibrary:\n  path: " + filepath.Join(dir, "lib.db") +
		"\nbuild:\n  public_dir: " + filepath.Join(dir, "public") + "\nlog:\n  level: error\n"
	path := filepath.Join(dir, "teatopics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestExtractFromStdin(t *testing.T) {
	out, err := runCLI(t, "- Wat is je lievelingsthee\nZomaar een zin\nWaar? Hier!", "extract", "-")
	require.NoError(t, err)
	assert.Equal(t, "Wat is je lievelingsthee?\nWaar?\n", out)
}

func TestExtractJSONIsImportable(t *testing.T) {
	out, err := runCLI(t, "Hoe gaat het?", "extract", "--json", "--collection", "Poster", "-")
	require.NoError(t, err)
	var doc struct {
		Topics []struct {
			Text       string `json:"text"`
			Collection string `json:"collectie"`
		} `json:"topics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Topics, 1)
	assert.Equal(t, "Poster", doc.Topics[0].Collection)
}

func TestListAndImport(t *testing.T) {
	cfg := writeConfig(t, `{"topics":["Wat is je favoriete thee?","Waar wil je wonen?"]}`)

	out, err := runCLI(t, "", "--config", cfg, "--env-file", "", "list", "--category", "Thee")
	require.NoError(t, err)
	assert.Contains(t, out, "Wat is je favoriete thee?")
	assert.NotContains(t, out, "Waar wil je wonen?")
	assert.Contains(t, out, "page 1/1, 1 of 2 topics")

	doc := `{"version":1,"topics":[{"text":"Wie bel je het eerst?","collectie":"Import","categorie":""}]}`
	out, err = runCLI(t, doc, "--config", cfg, "--env-file", "", "import", "-")
	require.NoError(t, err)
	assert.Equal(t, "added 1, skipped 0\n", out)

	out, err = runCLI(t, "", "--config", cfg, "--env-file", "", "list", "--collection", "Import")
	require.NoError(t, err)
	assert.Contains(t, out, "Wie bel je het eerst?")

	out, err = runCLI(t, "", "--config", cfg, "--env-file", "", "export", "--collection", "Import")
	require.NoError(t, err)
	assert.Contains(t, out, "Wie bel je het eerst?")
	assert.NotContains(t, out, "Waar wil je wonen?")

	out, err = runCLI(t, "", "--config", cfg, "--env-file", "", "reset")
	require.NoError(t, err)
	assert.Equal(t, "library reset, 2 topics\n", out)

	out, err = runCLI(t, doc, "--config", cfg, "--env-file", "", "import", "--replace", "-")
	require.NoError(t, err)
	assert.Equal(t, "replaced library with 1 topics\n", out)

	out, err = runCLI(t, "", "--config", cfg, "--env-file", "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Wie bel je het eerst?")
	assert.NotContains(t, out, "Waar wil je wonen?")
}

func TestMissingExplicitConfigFails(t *testing.T) {
	_, err := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "--env-file", "", "list")
	assert.Error(t, err)
}

func TestTranslateDisabled(t *testing.T) {
	cfg := writeConfig(t, `{"topics":["Wat?"]}`)
	t.Setenv("TEATOPICS_TRANSLATE_ENDPOINTS", "")
	_, err := runCLI(t, "", "--config", cfg, "--env-file", "", "translate", "Hallo")
	assert.ErrorContains(t, err, "translation is disabled")
}
