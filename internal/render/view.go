package render

import (
	"html/template"
	"teatopics/internal/browse"
	"teatopics/internal/domain/config"
	"teatopics/internal/domain/topic"
	"teatopics/internal/index"
	"time"
)

type HomePage struct {
	Site  config.SiteConfig
	Intro template.HTML
	Title string

	Query       browse.Query
	Page        browse.Page
	Collections []index.Facet
	Categories  []index.Facet

	// Message replaces the grid when nothing could be loaded.
	Message string
	// Lang is set when card texts were translated for display.
	Lang      string
	Translate bool
	Languages []string

	// Static switches links to the prebuilt /page/N/ layout.
	Static    bool
	Dev       bool
	Generated time.Time
}

type FullscreenPage struct {
	Site     config.SiteConfig
	Title    string
	Topic    topic.Topic
	Position int
	Total    int
	Query    browse.Query
	Dev      bool
}

type OCRPage struct {
	Site       config.SiteConfig
	Title      string
	Text       string
	Questions  []string
	Collection string
	Added      int
	Message    string
	Available  bool
	Dev        bool
}

type NotFoundPage struct {
	Site  config.SiteConfig
	Title string
	Path  string
	Dev   bool
}
