package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"teatopics/internal/logging"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		src := filepath.Clean(s.cfg.Source.Path)
		info, e := os.Stat(src)
		switch {
		case e != nil:
			// Watch the parent so the source can be created later.
			err = w.Add(filepath.Dir(src))
		case info.IsDir():
			err = filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if path != src && strings.HasPrefix(d.Name(), ".") {
						return filepath.SkipDir
					}
					return w.Add(path)
				}
				return nil
			})
		default:
			err = w.Add(filepath.Dir(src))
		}
		if err != nil {
			return
		}
		go s.watchLoop(ctx, src)
	})
	return err
}

// relevant reports whether ev touches the source: the file itself, or any
// JSON deck below a source directory.
func relevant(src string, ev fsnotify.Event) bool {
	name := filepath.Clean(ev.Name)
	if name == src {
		return true
	}
	rel, err := filepath.Rel(src, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".json")
}

func (s *Server) watchLoop(ctx context.Context, src string) {
	s.logger.Info("watching topic source", slog.String("path", src))
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 || !relevant(src, ev) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = s.watcher.Add(ev.Name)
				}
			}
			debounce.Reset(reloadDebounce)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", logging.Error(err))
		case <-debounce.C:
			rctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			_ = s.Reload(rctx)
			cancel()
		}
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 8)

	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		s.sseMu.Unlock()
	}()
	fmt.Fprintf(w, "data: %s\n\n", "hello")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcastSSE(msg string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- msg:
		default:
		}
	}
}
