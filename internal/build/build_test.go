package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teatopics/internal/domain/config"
	"teatopics/internal/index"
	"teatopics/internal/ingest"
	"teatopics/internal/library"
	"teatopics/internal/logging"
)

func TestBuildWritesStaticSite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "topics.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"topicsRaw":"Wat is je favoriete thee?\nWaar wil je heen?\nGeen vraag\nWie inspireert jou?"}`), 0o644))

	cfg := config.Default()
	cfg.Source.Path = src
	cfg.Site.PageSize = 2
	cfg.Site.Intro = "Welkom bij *thee*"
	cfg.Build.PublicDir = filepath.Join(dir, "public")
	cfg.Build.ThemeDir = filepath.Join(dir, "themes")
	cfg.Build.Now = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	st, err := index.Open(index.OpenOptions{Path: filepath.Join(dir, "library.db")})
	require.NoError(t, err)
	defer st.Close()
	opt, err := ingest.OptionsFromConfig(cfg)
	require.NoError(t, err)

	b := &Builder{Cfg: cfg, Library: library.New(st, opt, logging.NewNop()), Logger: logging.NewNop()}
	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Topics)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 3, res.Cards)

	out := cfg.Build.PublicDir
	home, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(home), "<em>thee</em>")
	assert.Contains(t, string(home), `href="/page/2/"`)

	page2, err := os.ReadFile(filepath.Join(out, "page", "2", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page2), "Wie inspireert jou?")

	exported, err := os.ReadFile(filepath.Join(out, "topics.json"))
	require.NoError(t, err)
	assert.Contains(t, string(exported), `"updatedAt": "2024-05-01"`)

	for _, rel := range []string{"404.html", filepath.Join("static", "app.css")} {
		_, err := os.Stat(filepath.Join(out, rel))
		assert.NoError(t, err, rel)
	}
	cards, err := os.ReadDir(filepath.Join(out, "cards"))
	require.NoError(t, err)
	assert.Len(t, cards, 3)
}

func TestBuildFailsWithoutSource(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Source.Path = filepath.Join(dir, "missing.json")
	cfg.Build.PublicDir = filepath.Join(dir, "public")

	st, err := index.Open(index.OpenOptions{Path: filepath.Join(dir, "library.db")})
	require.NoError(t, err)
	defer st.Close()
	opt, err := ingest.OptionsFromConfig(cfg)
	require.NoError(t, err)

	b := &Builder{Cfg: cfg, Library: library.New(st, opt, logging.NewNop())}
	_, err = b.Run(context.Background())
	assert.Error(t, err)
}

func TestBuildKeepsCardsInsidePublicDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "topics.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"topics":["Wat is je favoriete thee?"]}`), 0o644))

	cfg := config.Default()
	cfg.Source.Path = src
	cfg.Build.PublicDir = filepath.Join(dir, "site", "public")
	cfg.Build.ThemeDir = filepath.Join(dir, "themes")

	st, err := index.Open(index.OpenOptions{Path: filepath.Join(dir, "library.db")})
	require.NoError(t, err)
	defer st.Close()
	opt, err := ingest.OptionsFromConfig(cfg)
	require.NoError(t, err)
	lib := library.New(st, opt, logging.NewNop())

	_, err = lib.Reload(context.Background())
	require.NoError(t, err)
	imported, err := ingest.DecodeImport([]byte(`{"topics":[{"id":"../../escaped","text":"Wie bel je het eerst?","collectie":"Import"}]}`))
	require.NoError(t, err)
	added, err := lib.Add(imported)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.NotEqual(t, "../../escaped", added[0].ID)

	b := &Builder{Cfg: cfg, Library: lib, Logger: logging.NewNop()}
	_, err = b.Run(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "escaped.png"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(cfg.Build.PublicDir, "cards", added[0].ID+".png"))
	assert.NoError(t, err)
}

func TestWriteFileRejectsEscapingPaths(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"../x.html", filepath.Join("cards", "..", "..", "x.png"), "/etc/x"} {
		assert.Error(t, writeFile(root, rel, []byte("x")), rel)
	}
	require.NoError(t, writeFile(root, filepath.Join("page", "2", "index.html"), []byte("x")))
}
