// Package library keeps the in-memory topic list in step with the source
// file and the persistent store.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"teatopics/internal/domain/build"
	domainerr "teatopics/internal/domain/errors"
	"teatopics/internal/domain/topic"
	"teatopics/internal/index"
	"teatopics/internal/ingest"
	"teatopics/internal/logging"
	"time"
)

// Snapshot is one consistent view of the library. Topics must not be
// modified by callers.
type Snapshot struct {
	Topics   []topic.Topic
	Message  string
	Warnings []ingest.Warning
	Loaded   time.Time
	Version  uint64
}

type Library struct {
	store  *index.Store
	opt    ingest.Options
	logger *slog.Logger
	now    func() time.Time

	mu   sync.RWMutex
	snap Snapshot
}

func New(store *index.Store, opt ingest.Options, logger *slog.Logger) *Library {
	return &Library{
		store:  store,
		opt:    opt,
		logger: logging.Component(logger, "library"),
		now:    time.Now,
	}
}

// Reload reads the source again. The store is only rebuilt when the source
// or the category rules changed since the last successful load. A failed
// load drops the previous source topics, keeps Message set until the next
// successful load and returns the error.
func (l *Library) Reload(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	start := l.now()
	prev, err := l.store.Fingerprint()
	if err != nil {
		return false, fmt.Errorf("library: read fingerprint: %w", err)
	}

	res, err := ingest.Ingest(l.opt)
	if err != nil {
		if prev != "" {
			if rerr := l.store.Rebuild(nil, ""); rerr != nil {
				return false, fmt.Errorf("library: clear after failed load: %w", rerr)
			}
		}
		all, lerr := l.store.All()
		if lerr != nil {
			return false, fmt.Errorf("library: list: %w", lerr)
		}
		l.publish(all, nil, loadMessage(err))
		return prev != "", err
	}
	for _, w := range res.Warnings {
		l.logger.Warn("skipped deck", slog.String("path", w.Path), slog.String("reason", w.Msg))
	}

	changed := !res.Fingerprint.Same(build.Fingerprint{LoadHash: prev})
	if changed {
		if err := l.store.Rebuild(res.Topics, res.Fingerprint.LoadHash); err != nil {
			return false, fmt.Errorf("library: rebuild: %w", err)
		}
	}

	all, err := l.store.All()
	if err != nil {
		return false, fmt.Errorf("library: list: %w", err)
	}
	l.publish(all, res.Warnings, "")
	l.logger.Info("library loaded",
		slog.Int("topics", len(all)),
		slog.Bool("rebuilt", changed),
		slog.Duration("took", l.now().Sub(start)),
	)
	return changed, nil
}

// Add normalizes topics, infers missing categories and appends the ones the
// library does not have yet. A pending load failure message is kept.
func (l *Library) Add(topics []topic.Topic) ([]topic.Topic, error) {
	prepared := ingest.Prepare(topics, l.opt.Categorizer)
	added, err := l.store.Append(prepared)
	if err != nil {
		return nil, fmt.Errorf("library: append: %w", err)
	}
	if len(added) == 0 {
		return nil, nil
	}
	if err := l.republish(); err != nil {
		return added, err
	}
	return added, nil
}

// Replace swaps the whole library for topics, the way loading a document
// does. Earlier imports and OCR additions are forgotten. The replacement
// stays until the source file changes.
func (l *Library) Replace(topics []topic.Topic) ([]topic.Topic, error) {
	prepared := ingest.Prepare(topics, l.opt.Categorizer)
	if len(prepared) == 0 {
		return nil, domainerr.ErrNoTopics
	}
	fp, err := l.store.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("library: read fingerprint: %w", err)
	}
	if err := l.store.ClearAdded(); err != nil {
		return nil, fmt.Errorf("library: clear added: %w", err)
	}
	if err := l.store.Rebuild(prepared, fp); err != nil {
		return nil, fmt.Errorf("library: rebuild: %w", err)
	}
	all, err := l.store.All()
	if err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}
	l.publish(all, nil, "")
	return all, nil
}

func (l *Library) republish() error {
	all, err := l.store.All()
	if err != nil {
		return fmt.Errorf("library: list: %w", err)
	}
	l.mu.RLock()
	warnings, msg := l.snap.Warnings, l.snap.Message
	l.mu.RUnlock()
	l.publish(all, warnings, msg)
	return nil
}

// Facets is the state of the filter pickers: the named collections and the
// categories under the selected collection, with topic counts.
type Facets struct {
	Total       int
	Collections []index.Facet
	Categories  []index.Facet
}

func (f Facets) CategoryNames() []string {
	return index.Names(f.Categories)
}

// Facets reads the pickers for collection; "" means every collection.
func (l *Library) Facets(collection string) (Facets, error) {
	var f Facets
	var err error
	if f.Total, err = l.store.Count(); err != nil {
		return f, fmt.Errorf("library: count: %w", err)
	}
	colls, err := l.store.Collections()
	if err != nil {
		return f, fmt.Errorf("library: collections: %w", err)
	}
	for _, c := range colls {
		if c.Name != "" {
			f.Collections = append(f.Collections, c)
		}
	}
	if f.Categories, err = l.store.Categories(collection); err != nil {
		return f, fmt.Errorf("library: categories: %w", err)
	}
	return f, nil
}

func (l *Library) Get(id string) (topic.Topic, error) {
	return l.store.Get(id)
}

// Collection returns the topics of one collection in library order.
func (l *Library) Collection(name string) ([]topic.Topic, error) {
	return l.store.ByCollection(name)
}

// Reset drops every imported or OCR-added topic and reloads the source.
func (l *Library) Reset(ctx context.Context) error {
	if err := l.store.ClearAdded(); err != nil {
		return fmt.Errorf("library: clear added: %w", err)
	}
	// Force the next Reload to rebuild even when the source is unchanged.
	if err := l.store.Rebuild(nil, ""); err != nil {
		return fmt.Errorf("library: wipe: %w", err)
	}
	_, err := l.Reload(ctx)
	return err
}

func (l *Library) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

func (l *Library) publish(topics []topic.Topic, warnings []ingest.Warning, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap = Snapshot{
		Topics:   topics,
		Message:  msg,
		Warnings: warnings,
		Loaded:   l.now(),
		Version:  l.snap.Version + 1,
	}
}

func loadMessage(err error) string {
	var le *domainerr.LoadError
	if errors.As(err, &le) {
		if errors.Is(err, domainerr.ErrNoTopics) {
			return fmt.Sprintf("Geen onderwerpen gevonden in %s.", le.Source)
		}
		return fmt.Sprintf("Kon %s niet laden: %s.", le.Source, le.Message)
	}
	return "Kon de onderwerpen niet laden."
}
