package serve

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	domainerr "teatopics/internal/domain/errors"
	"teatopics/internal/domain/topic"
	"teatopics/internal/export"
	"teatopics/internal/imaging"
	"teatopics/internal/index"
	"teatopics/internal/ingest"
	"teatopics/internal/logging"
)

const maxImportBytes = 8 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type apiError struct {
	Error string `json:"error"`
}

type topicsResponse struct {
	Items   []topic.Topic `json:"items"`
	Page    int           `json:"page"`
	Pages   int           `json:"pages"`
	Total   int           `json:"total"`
	Shown   int           `json:"shown"`
	Message string        `json:"message,omitempty"`
}

func (s *Server) handleAPITopics(w http.ResponseWriter, r *http.Request) {
	v := s.view(r)
	page := v.Page
	items := page.Items
	if items == nil {
		items = []topic.Topic{}
	}
	writeJSON(w, http.StatusOK, topicsResponse{
		Items:   items,
		Page:    page.Page,
		Pages:   page.Pages,
		Total:   page.Total,
		Shown:   page.Shown,
		Message: v.Message,
	})
}

type facetsResponse struct {
	Total       int           `json:"total"`
	Collections []index.Facet `json:"collections"`
	Categories  []index.Facet `json:"categories"`
}

func (s *Server) handleAPIFacets(w http.ResponseWriter, r *http.Request) {
	f := s.view(r).Facets
	if f.Collections == nil {
		f.Collections = []index.Facet{}
	}
	if f.Categories == nil {
		f.Categories = []index.Facet{}
	}
	writeJSON(w, http.StatusOK, facetsResponse{Total: f.Total, Collections: f.Collections, Categories: f.Categories})
}

type translateRequest struct {
	Texts  []string `json:"texts"`
	Target string   `json:"target"`
}

type translateResponse struct {
	Translations []string `json:"translations"`
}

// handleAPITranslate never fails on upstream trouble: untranslatable texts
// come back as sent.
func (s *Server) handleAPITranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}
	out := req.Texts
	if out == nil {
		out = []string{}
	}
	if s.tr != nil {
		target := req.Target
		if target == "" {
			target = s.cfg.Translate.Target
		}
		out = s.tr.Translate(r.Context(), req.Texts, target)
	}
	writeJSON(w, http.StatusOK, translateResponse{Translations: out})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.lib.Snapshot()
	now := s.now()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(now)+`"`)
	if err := export.Write(w, snap.Topics, now); err != nil {
		s.logger.Error("export failed", logging.Error(err))
	}
}

type importResponse struct {
	Added    int  `json:"added"`
	Skipped  int  `json:"skipped"`
	Replaced bool `json:"replaced,omitempty"`
}

// handleImport accepts an export document either as the request body or as
// the "file" field of a multipart form. With replace set the document
// becomes the whole library; otherwise its topics are merged in.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	raw, form, err := readImport(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	topics, err := ingest.DecodeImport(raw)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domainerr.ErrNoTopics) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, apiError{Error: err.Error()})
		return
	}

	replace := isTrue(r.FormValue("replace"))
	var added []topic.Topic
	if replace {
		added, err = s.lib.Replace(topics)
	} else {
		added, err = s.lib.Add(topics)
	}
	if errors.Is(err, domainerr.ErrNoTopics) {
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("import failed", logging.Error(err))
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "import failed"})
		return
	}
	if replace {
		s.decks.Reset()
	}
	s.logger.Info("imported topics",
		slog.Int("added", len(added)),
		slog.Int("skipped", len(topics)-len(added)),
		slog.Bool("replace", replace),
	)
	if form && !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Added: len(added), Skipped: len(topics) - len(added), Replaced: replace})
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes", "ja":
		return true
	}
	return false
}

func readImport(r *http.Request) ([]byte, bool, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, true, errors.New(`missing "file" upload`)
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		return raw, true, err
	}
	raw, err := io.ReadAll(r.Body)
	return raw, false, err
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	t, err := s.lib.Get(id)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	img := imaging.RenderCard(t, imaging.DefaultCardStyle)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	if err := imaging.EncodePNG(w, img); err != nil {
		s.logger.Warn("card encode failed", logging.Error(err))
	}
}
