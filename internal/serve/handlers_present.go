package serve

import (
	"errors"
	"fmt"
	"net/http"
	"teatopics/internal/browse"
	"teatopics/internal/logging"
	"teatopics/internal/presenter"
	"teatopics/internal/render"
	"time"
)

const sessionCookie = "teatopics_session"

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	sid := presenter.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((12 * time.Hour).Seconds()),
	})
	return sid
}

// present runs move on the visitor's deck over the topics matching q. The
// deck is rebuilt whenever the filter or the library changes.
func (s *Server) present(w http.ResponseWriter, r *http.Request, q browse.Query, move func(*presenter.Deck) string) (presenter.View, error) {
	snap := s.lib.Snapshot()
	pool := browse.Filter(snap.Topics, q)
	ids := make([]string, len(pool))
	for i, t := range pool {
		ids[i] = t.ID
	}
	key := fmt.Sprintf("%d\x00%s\x00%s\x00%s", snap.Version, q.Text, q.Collection, q.Category)
	return s.decks.Do(s.sessionID(w, r), key, ids, move)
}

func (s *Server) handleFullscreen(w http.ResponseWriter, r *http.Request) {
	q := parseQuery(r)
	at := r.FormValue("at")
	view, err := s.present(w, r, q, func(d *presenter.Deck) string {
		if at != "" {
			return d.OpenAt(at)
		}
		return d.Current()
	})
	if errors.Is(err, presenter.ErrEmptyDeck) {
		http.Redirect(w, r, render.QueryString(q, 1), http.StatusSeeOther)
		return
	}
	if err != nil {
		s.logger.Error("presenter failed", logging.Error(err))
		http.Error(w, "presenter error", http.StatusInternalServerError)
		return
	}

	t, err := s.lib.Get(view.ID)
	if err != nil {
		// Library moved on since the deck was built.
		s.decks.Close(s.sessionID(w, r))
		http.Redirect(w, r, render.PresentPath(q), http.StatusSeeOther)
		return
	}

	page := render.FullscreenPage{
		Site:     s.cfg.Site,
		Title:    t.Text,
		Topic:    t,
		Position: view.Position,
		Total:    view.Total,
		Query:    q,
		Dev:      s.dev,
	}
	out, err := s.tpl.RenderFullscreen(r.Context(), page)
	if err != nil {
		s.logger.Error("render fullscreen failed", logging.Error(err))
		http.Error(w, "render fullscreen error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, out)
}

func (s *Server) handleFullscreenAction(w http.ResponseWriter, r *http.Request) {
	q := parseQuery(r)
	var move func(*presenter.Deck) string
	switch r.PathValue("action") {
	case "next":
		move = (*presenter.Deck).Next
	case "prev":
		move = (*presenter.Deck).Prev
	case "random":
		move = (*presenter.Deck).Random
	case "close":
		s.decks.Close(s.sessionID(w, r))
		http.Redirect(w, r, render.QueryString(q, 1), http.StatusSeeOther)
		return
	default:
		s.handleNotFound(w, r)
		return
	}

	view, err := s.present(w, r, q, move)
	if errors.Is(err, presenter.ErrEmptyDeck) {
		http.Redirect(w, r, render.QueryString(q, 1), http.StatusSeeOther)
		return
	}
	if err != nil {
		s.logger.Error("presenter failed", logging.Error(err))
		http.Error(w, "presenter error", http.StatusInternalServerError)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, view)
		return
	}
	http.Redirect(w, r, render.PresentPath(q), http.StatusSeeOther)
}
