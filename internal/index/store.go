package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrLocked means another process (usually a running server) holds the
// library file.
var ErrLocked = errors.New("index: library is in use by another process")

// Store is the persistent topic library. All methods are safe for
// concurrent use; bolt serializes writers.
type Store struct {
	db *bolt.DB
}

type OpenOptions struct {
	Path    string        // e.g. ".teatopics/library.db"
	Timeout time.Duration // wait for the file lock, default 1s
}

func Open(opt OpenOptions) (*Store, error) {
	if opt.Path == "" {
		return nil, errors.New("index: missing path")
	}
	if opt.Timeout <= 0 {
		opt.Timeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(opt.Path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(opt.Path, 0o600, &bolt.Options{Timeout: opt.Timeout})
	if errors.Is(err, bolt.ErrTimeout) {
		return nil, fmt.Errorf("%w: %s", ErrLocked, opt.Path)
	}
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
