package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"teatopics/internal/browse"
	"unicode/utf8"
)

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

//go:embed static
var defaultStatic embed.FS

type TemplateRenderer struct {
	tpl *template.Template
}

// NewTemplateRenderer parses the built-in templates, then any *.tmpl found
// in themeDir/themeName/templates. A theme file replaces the built-in
// template of the same name.
func NewTemplateRenderer(themeDir, themeName string) (*TemplateRenderer, error) {
	tpl, err := template.New("").Funcs(templateFuncs()).ParseFS(defaultTemplates, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	if themeDir != "" && themeName != "" {
		pattern := filepath.Join(themeDir, themeName, "templates", "*.tmpl")
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			if tpl, err = tpl.ParseFiles(matches...); err != nil {
				return nil, fmt.Errorf("theme %s: %w", themeName, err)
			}
		}
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

// StaticFS serves the theme's static directory when present, the built-in
// assets otherwise.
func StaticFS(themeDir, themeName string) fs.FS {
	dir := filepath.Join(themeDir, themeName, "static")
	if st, err := os.Stat(dir); err == nil && st.IsDir() {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(defaultStatic, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add":       func(a, b int) int { return a + b },
		"sub":       func(a, b int) int { return a - b },
		"truncate":  truncate,
		"query":     QueryString,
		"pagePath":  PagePath,
		"present":   PresentPath,
		"presentAt": PresentAt,
		"all":       func() string { return browse.All },
	}
}

func truncate(n int, s string) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}

func queryValues(q browse.Query) url.Values {
	v := url.Values{}
	if q.IsZero() {
		return v
	}
	if q.Text != "" {
		v.Set("q", q.Text)
	}
	if q.Collection != "" && q.Collection != browse.All {
		v.Set("collectie", q.Collection)
	}
	if q.Category != "" && q.Category != browse.All {
		v.Set("categorie", q.Category)
	}
	return v
}

// QueryString encodes q with page replaced, for grid links.
func QueryString(q browse.Query, page int) string {
	v := queryValues(q)
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

// PresentPath opens the fullscreen presenter on the same filter.
func PresentPath(q browse.Query) string {
	return PresentAt(q, "")
}

// PresentAt opens the presenter on the same filter, starting at topic id.
func PresentAt(q browse.Query, id string) string {
	v := queryValues(q)
	if id != "" {
		v.Set("at", id)
	}
	if len(v) == 0 {
		return "/fullscreen"
	}
	return "/fullscreen?" + v.Encode()
}

// PagePath is the static-site location of grid page n.
func PagePath(n int) string {
	if n <= 1 {
		return "/"
	}
	return "/page/" + strconv.Itoa(n) + "/"
}

func (r *TemplateRenderer) RenderHome(ctx context.Context, page HomePage) ([]byte, error) {
	return r.exec("home.tmpl", page)
}

func (r *TemplateRenderer) RenderFullscreen(ctx context.Context, page FullscreenPage) ([]byte, error) {
	return r.exec("fullscreen.tmpl", page)
}

func (r *TemplateRenderer) RenderOCR(ctx context.Context, page OCRPage) ([]byte, error) {
	return r.exec("ocr.tmpl", page)
}

func (r *TemplateRenderer) RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return r.exec("404.tmpl", page)
}

var errTemplateMissing = errors.New("template not found")

func (r *TemplateRenderer) exec(name string, data any) ([]byte, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", errTemplateMissing, name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
