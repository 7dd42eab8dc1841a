package site

import (
	"path"
	"path/filepath"
	"strconv"
)

type RouteKind string

const (
	RouteIndex    RouteKind = "index"
	RoutePage     RouteKind = "page"
	RouteCard     RouteKind = "card"
	RouteExport   RouteKind = "export"
	RouteNotFound RouteKind = "404"
)

// Route is one file of the static build.
type Route struct {
	Kind    RouteKind
	Key     string // topic id for cards
	Page    int
	OutPath string
}

// URL is the path the file is served under, matching the live server's
// routes where one exists.
func (r Route) URL() string {
	switch r.Kind {
	case RouteIndex:
		return "/"
	case RoutePage:
		if r.Page <= 1 {
			return "/"
		}
		return "/page/" + strconv.Itoa(r.Page) + "/"
	case RouteCard:
		return "/cards/" + r.Key + ".png"
	}
	return path.Join("/", filepath.ToSlash(r.OutPath))
}

func (r Route) String() string {
	return string(r.Kind) + " " + r.URL()
}
