package app

import (
	"path/filepath"
	"strconv"
	"teatopics/internal/domain/site"
	"teatopics/internal/domain/topic"
)

type RouteBuilder struct {
	PageSize int
}

// BuildPageRoutes lays out the grid: page 1 at the root, page n under
// page/n/. There is always at least one page.
func (rb *RouteBuilder) BuildPageRoutes(total int) []site.Route {
	size := rb.PageSize
	if size <= 0 {
		size = 24
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	routes := []site.Route{{Kind: site.RouteIndex, Page: 1, OutPath: "index.html"}}
	for n := 2; n <= pages; n++ {
		routes = append(routes, site.Route{
			Kind:    site.RoutePage,
			Page:    n,
			OutPath: filepath.Join("page", strconv.Itoa(n), "index.html"),
		})
	}
	return routes
}

func (rb *RouteBuilder) BuildCardRoutes(topics []topic.Topic) []site.Route {
	routes := make([]site.Route, 0, len(topics))
	for _, t := range topics {
		routes = append(routes, site.Route{
			Kind:    site.RouteCard,
			Key:     t.ID,
			OutPath: filepath.Join("cards", t.ID+".png"),
		})
	}
	return routes
}

func (rb *RouteBuilder) BuildFixedRoutes() []site.Route {
	return []site.Route{
		{Kind: site.RouteExport, OutPath: "topics.json"},
		{Kind: site.RouteNotFound, OutPath: "404.html"},
	}
}
