package serve

import (
	"net/http"
	"strconv"
	"strings"
	"teatopics/internal/browse"
	"teatopics/internal/domain/topic"
	"teatopics/internal/library"
	"teatopics/internal/logging"
	"teatopics/internal/render"
	"teatopics/internal/translate"
)

var displayLanguages = []string{"en", "de", "fr", "es"}

func parseQuery(r *http.Request) browse.Query {
	page, _ := strconv.Atoi(r.FormValue("page"))
	return browse.Query{
		Text:       r.FormValue("q"),
		Collection: r.FormValue("collectie"),
		Category:   r.FormValue("categorie"),
		Page:       page,
	}.Normalized()
}

type gridView struct {
	Query   browse.Query
	Page    browse.Page
	Facets  library.Facets
	Message string
}

// view filters the current library with q. The category is dropped when it
// does not exist under the selected collection.
func (s *Server) view(r *http.Request) gridView {
	snap := s.lib.Snapshot()
	q := parseQuery(r)
	facets, err := s.lib.Facets(q.Collection)
	if err != nil {
		s.logger.Warn("facets unavailable", logging.Error(err))
	} else {
		q = browse.Reconcile(q, facets.CategoryNames())
	}
	return gridView{
		Query:   q,
		Page:    browse.Apply(snap.Topics, q, s.cfg.Site.PageSize),
		Facets:  facets,
		Message: snap.Message,
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	v := s.view(r)
	page := v.Page

	lang := ""
	if s.tr != nil {
		lang = translate.NormalizeTarget(r.FormValue("lang"))
	}
	if lang != "" && len(page.Items) > 0 {
		page.Items = s.translateItems(r, page.Items, lang)
	}

	hp := render.HomePage{
		Site:        s.cfg.Site,
		Intro:       s.intro,
		Query:       v.Query,
		Page:        page,
		Collections: v.Facets.Collections,
		Categories:  v.Facets.Categories,
		Message:     v.Message,
		Lang:        lang,
		Translate:   s.tr != nil,
		Languages:   displayLanguages,
		Dev:         s.dev,
		Generated:   s.now(),
	}
	out, err := s.tpl.RenderHome(r.Context(), hp)
	if err != nil {
		s.logger.Error("render home failed", logging.Error(err))
		http.Error(w, "render home error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, out)
}

func (s *Server) translateItems(r *http.Request, items []topic.Topic, lang string) []topic.Topic {
	texts := make([]string, len(items))
	for i, t := range items {
		texts[i] = t.Text
	}
	translated := s.tr.Translate(r.Context(), texts, lang)
	out := make([]topic.Topic, len(items))
	for i, t := range items {
		t.Text = translated[i]
		out[i] = t
	}
	return out
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	page := render.NotFoundPage{
		Site:  s.cfg.Site,
		Title: "Niet gevonden",
		Path:  r.URL.Path,
		Dev:   s.dev,
	}
	out, err := s.tpl.RenderNotFound(r.Context(), page)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(out)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
