package build

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"teatopics/internal/app"
	"teatopics/internal/browse"
	"teatopics/internal/domain/config"
	"teatopics/internal/domain/site"
	"teatopics/internal/domain/topic"
	"teatopics/internal/export"
	"teatopics/internal/imaging"
	"teatopics/internal/ingest"
	"teatopics/internal/library"
	"teatopics/internal/logging"
	"teatopics/internal/render"
	"time"

	"golang.org/x/sync/errgroup"
)

// Builder writes a static snapshot of the library into Cfg.Build.PublicDir.
type Builder struct {
	Cfg     config.Config
	Library *library.Library
	Logger  *slog.Logger
}

type Result struct {
	Topics   int
	Pages    int
	Cards    int
	Warnings []ingest.Warning
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	logger := logging.Component(b.Logger, "build")
	if _, err := b.Library.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	snap := b.Library.Snapshot()

	themeDir := b.Cfg.Build.ThemeDir
	themeName := b.Cfg.Site.Theme
	tpl, err := render.NewTemplateRenderer(themeDir, themeName)
	if err != nil {
		return nil, fmt.Errorf("load theme (%s): %w", themeDir, err)
	}
	intro, err := render.NewMarkdownRenderer().Render(b.Cfg.Site.Intro)
	if err != nil {
		return nil, fmt.Errorf("render intro: %w", err)
	}

	outDir := b.Cfg.Build.PublicDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	rb := &app.RouteBuilder{PageSize: b.Cfg.Site.PageSize}
	pages := rb.BuildPageRoutes(len(snap.Topics))
	cards := rb.BuildCardRoutes(snap.Topics)

	for _, r := range pages {
		if err := b.buildPage(ctx, tpl, intro, outDir, r, snap.Topics); err != nil {
			return nil, fmt.Errorf("build %s: %w", r, err)
		}
	}
	for _, r := range rb.BuildFixedRoutes() {
		if err := b.buildFixed(ctx, tpl, outDir, r, snap.Topics); err != nil {
			return nil, fmt.Errorf("build %s: %w", r, err)
		}
	}
	if err := b.buildCards(ctx, outDir, cards, snap.Topics); err != nil {
		return nil, fmt.Errorf("build cards: %w", err)
	}
	if err := copyStaticAssets(render.StaticFS(themeDir, themeName), filepath.Join(outDir, "static")); err != nil {
		return nil, fmt.Errorf("copy static assets: %w", err)
	}

	logger.Info("site built",
		slog.String("out", outDir),
		slog.Int("topics", len(snap.Topics)),
		slog.Int("pages", len(pages)),
	)
	return &Result{
		Topics:   len(snap.Topics),
		Pages:    len(pages),
		Cards:    len(cards),
		Warnings: snap.Warnings,
	}, nil
}

func (b *Builder) now() time.Time {
	if b.Cfg.Build.Now.IsZero() {
		return time.Now()
	}
	return b.Cfg.Build.Now
}

func (b *Builder) buildPage(ctx context.Context, tpl render.Renderer, intro template.HTML, outDir string, r site.Route, all []topic.Topic) error {
	page := render.HomePage{
		Site:      b.Cfg.Site,
		Intro:     intro,
		Page:      browse.Paginate(all, r.Page, b.Cfg.Site.PageSize, len(all)),
		Static:    true,
		Generated: b.now(),
	}
	htmlBytes, err := tpl.RenderHome(ctx, page)
	if err != nil {
		return err
	}
	return writeFile(outDir, r.OutPath, htmlBytes)
}

func (b *Builder) buildFixed(ctx context.Context, tpl render.Renderer, outDir string, r site.Route, all []topic.Topic) error {
	switch r.Kind {
	case site.RouteExport:
		var buf bytes.Buffer
		if err := export.Write(&buf, all, b.now()); err != nil {
			return err
		}
		return writeFile(outDir, r.OutPath, buf.Bytes())
	case site.RouteNotFound:
		htmlBytes, err := tpl.RenderNotFound(ctx, render.NotFoundPage{Site: b.Cfg.Site, Title: "Niet gevonden"})
		if err != nil {
			return err
		}
		return writeFile(outDir, r.OutPath, htmlBytes)
	}
	return fmt.Errorf("unexpected route kind %q", r.Kind)
}

// buildCards renders one PNG per topic, in parallel.
func (b *Builder) buildCards(ctx context.Context, outDir string, routes []site.Route, all []topic.Topic) error {
	byID := make(map[string]topic.Topic, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, r := range routes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := imaging.EncodePNG(&buf, imaging.RenderCard(byID[r.Key], imaging.DefaultCardStyle)); err != nil {
				return fmt.Errorf("%s: %w", r.Key, err)
			}
			return writeFile(outDir, r.OutPath, buf.Bytes())
		})
	}
	return g.Wait()
}

func copyStaticAssets(src fs.FS, dstDir string) error {
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		in, err := fs.ReadFile(src, path)
		if err != nil {
			return err
		}
		return writeFile(dstDir, filepath.FromSlash(path), in)
	})
}

func writeFile(root, rel string, data []byte) error {
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("refusing to write %q outside %s", rel, root)
	}
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}
