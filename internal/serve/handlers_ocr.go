package serve

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"teatopics/internal/extract"
	"teatopics/internal/logging"
	"teatopics/internal/ocr"
	"teatopics/internal/render"
)

const (
	maxUploadBytes = 32 << 20
	maxImages      = 20
)

func (s *Server) ocrAvailable() bool {
	if s.engine == nil {
		return false
	}
	if t, ok := s.engine.(*ocr.Tesseract); ok {
		return t.Available() == nil
	}
	return true
}

func (s *Server) defaultCollection() string {
	if c := strings.TrimSpace(s.cfg.OCR.DefaultCollection); c != "" {
		return c
	}
	return extract.DefaultCollection
}

func (s *Server) renderOCR(w http.ResponseWriter, r *http.Request, status int, page render.OCRPage) {
	page.Site = s.cfg.Site
	page.Title = "OCR"
	page.Available = s.ocrAvailable()
	page.Dev = s.dev
	if page.Collection == "" {
		page.Collection = s.defaultCollection()
	}
	out, err := s.tpl.RenderOCR(r.Context(), page)
	if err != nil {
		s.logger.Error("render ocr failed", logging.Error(err))
		http.Error(w, "render ocr error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (s *Server) handleOCRPage(w http.ResponseWriter, r *http.Request) {
	s.renderOCR(w, r, http.StatusOK, render.OCRPage{})
}

// handleOCRUpload recognizes every uploaded image and shows the combined
// text with the questions found in it, ready to be edited and added.
func (s *Server) handleOCRUpload(w http.ResponseWriter, r *http.Request) {
	if !s.ocrAvailable() {
		s.renderOCR(w, r, http.StatusServiceUnavailable, render.OCRPage{Message: "OCR is niet beschikbaar."})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderOCR(w, r, http.StatusBadRequest, render.OCRPage{Message: "Upload kon niet gelezen worden."})
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		s.renderOCR(w, r, http.StatusBadRequest, render.OCRPage{Message: "Kies eerst een of meer afbeeldingen."})
		return
	}
	if len(files) > maxImages {
		s.renderOCR(w, r, http.StatusBadRequest, render.OCRPage{
			Message: fmt.Sprintf("Maximaal %d afbeeldingen per keer, je koos er %d.", maxImages, len(files)),
		})
		return
	}

	inputs := make([]ocr.Input, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			s.renderOCR(w, r, http.StatusBadRequest, render.OCRPage{Message: "Upload kon niet gelezen worden."})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			s.renderOCR(w, r, http.StatusBadRequest, render.OCRPage{Message: "Upload kon niet gelezen worden."})
			return
		}
		inputs = append(inputs, ocr.Input{Name: fh.Filename, Data: data})
	}

	p := ocr.NewPipeline(s.cfg.OCR, s.engine, s.logger)
	p.Progress = func(pr ocr.Progress) {
		s.logger.Debug("ocr progress",
			slog.String("file", pr.Name),
			slog.String("stage", string(pr.Stage)),
			slog.Int("index", pr.Index),
			slog.Int("total", pr.Total),
		)
	}
	text, err := p.Run(r.Context(), inputs)
	if err != nil {
		msg := "Tekstherkenning mislukt."
		if errors.Is(err, ocr.ErrEngineMissing) {
			msg = "OCR is niet beschikbaar."
		}
		s.renderOCR(w, r, http.StatusUnprocessableEntity, render.OCRPage{Message: msg})
		return
	}

	s.renderOCR(w, r, http.StatusOK, render.OCRPage{
		Text:       text,
		Questions:  extract.Questions(text),
		Collection: r.FormValue("collectie"),
	})
}

func (s *Server) handleOCRAdd(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("text")
	coll := strings.TrimSpace(r.FormValue("collectie"))
	if coll == "" {
		coll = s.defaultCollection()
	}
	found := extract.Topics(text, coll)
	if len(found) == 0 {
		s.renderOCR(w, r, http.StatusUnprocessableEntity, render.OCRPage{
			Text:       text,
			Collection: coll,
			Message:    "Geen vragen gevonden in de tekst.",
		})
		return
	}
	added, err := s.lib.Add(found)
	if err != nil {
		s.logger.Error("ocr add failed", logging.Error(err))
		http.Error(w, "ocr add error", http.StatusInternalServerError)
		return
	}
	s.logger.Info("added ocr topics", slog.String("collection", coll), slog.Int("added", len(added)))
	s.renderOCR(w, r, http.StatusOK, render.OCRPage{
		Text:       text,
		Questions:  extract.Questions(text),
		Collection: coll,
		Added:      len(added),
	})
}
