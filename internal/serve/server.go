package serve

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"teatopics/internal/domain/config"
	"teatopics/internal/library"
	"teatopics/internal/logging"
	"teatopics/internal/ocr"
	"teatopics/internal/presenter"
	"teatopics/internal/render"
	"teatopics/internal/translate"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Deps are the collaborators a Server needs. Translator and OCR are
// optional; leaving them nil disables the matching routes' work.
type Deps struct {
	Library    *library.Library
	Renderer   render.Renderer
	Static     fs.FS
	Translator *translate.Client
	OCR        ocr.Engine
	Logger     *slog.Logger
	Dev        bool
}

type Server struct {
	cfg    config.Config
	lib    *library.Library
	tpl    render.Renderer
	static fs.FS
	intro  template.HTML
	tr     *translate.Client
	engine ocr.Engine
	decks  *presenter.Sessions
	logger *slog.Logger
	dev    bool
	now    func() time.Time

	sseMu     sync.Mutex
	sseConns  map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Library == nil {
		return nil, errors.New("serve: library is required")
	}
	tpl := deps.Renderer
	if tpl == nil {
		r, err := render.NewTemplateRenderer(cfg.Build.ThemeDir, cfg.Site.Theme)
		if err != nil {
			return nil, fmt.Errorf("serve: failed to create template renderer: %w", err)
		}
		tpl = r
	}
	static := deps.Static
	if static == nil {
		static = render.StaticFS(cfg.Build.ThemeDir, cfg.Site.Theme)
	}
	intro, err := render.NewMarkdownRenderer().Render(cfg.Site.Intro)
	if err != nil {
		return nil, fmt.Errorf("serve: render intro: %w", err)
	}

	return &Server{
		cfg:      cfg,
		lib:      deps.Library,
		tpl:      tpl,
		static:   static,
		intro:    intro,
		tr:       deps.Translator,
		engine:   deps.OCR,
		decks:    presenter.NewSessions(0),
		logger:   logging.Component(deps.Logger, "serve"),
		dev:      deps.Dev,
		now:      time.Now,
		sseConns: make(map[chan string]struct{}),
	}, nil
}

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Handler returns the routing tree. It does not load the library; call
// Reload or ListenAndServe first.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /fullscreen", s.handleFullscreen)
	mux.HandleFunc("POST /fullscreen/{action}", s.handleFullscreenAction)

	mux.HandleFunc("GET /api/topics", s.handleAPITopics)
	mux.HandleFunc("GET /api/facets", s.handleAPIFacets)
	mux.HandleFunc("POST /api/translate", s.handleAPITranslate)

	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("POST /import", s.handleImport)

	mux.HandleFunc("GET /ocr", s.handleOCRPage)
	mux.HandleFunc("POST /ocr", s.handleOCRUpload)
	mux.HandleFunc("POST /ocr/add", s.handleOCRAdd)

	mux.HandleFunc("GET /cards/{file}", s.handleCard)

	mux.HandleFunc("GET /dev/events", s.handleSSE)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(s.static)))

	mux.HandleFunc("/", s.handleNotFound)
	return s.logRequests(mux)
}

// Reload reloads the library and, when its contents changed, drops every
// presenter deck and tells dev clients to refresh.
func (s *Server) Reload(ctx context.Context) error {
	changed, err := s.lib.Reload(ctx)
	s.decks.Reset()
	if err != nil {
		s.logger.Warn("library unavailable", logging.Error(err))
	} else if changed {
		s.logger.Info("library rebuilt")
	}
	s.broadcastSSE("reload")
	return err
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	// A broken source is shown inline, so startup continues.
	_ = s.Reload(ctx)

	if s.cfg.Source.Watch {
		if err := s.startWatch(ctx); err != nil {
			s.logger.Warn("source watch disabled", logging.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("took", s.now().Sub(start)),
		)
	})
}

func writeHTML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}
