package presenter

import (
	"github.com/google/uuid"
	"math/rand/v2"
	"sync"
	"time"
)

// Sessions keeps one deck per visitor. Idle decks expire after ttl.
type Sessions struct {
	mu    sync.Mutex
	decks map[string]*session
	ttl   time.Duration
	now   func() time.Time
	rng   func() *rand.Rand
}

type session struct {
	deck *Deck
	pool string
	seen time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Sessions{
		decks: make(map[string]*session),
		ttl:   ttl,
		now:   time.Now,
		rng:   func() *rand.Rand { return nil },
	}
}

// WithRand makes new decks use rng; for tests.
func (s *Sessions) WithRand(rng func() *rand.Rand) *Sessions {
	s.rng = rng
	return s
}

// View is what the fullscreen page needs to render one card.
type View struct {
	ID       string
	Position int // 1-based
	Total    int
}

func NewSessionID() string {
	return uuid.NewString()
}

// Do runs fn on the deck of sid, creating it from ids when the session is
// new or when poolKey (a digest of the filtered pool) changed.
func (s *Sessions) Do(sid, poolKey string, ids []string, fn func(*Deck) string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()

	sess, ok := s.decks[sid]
	if !ok || sess.pool != poolKey {
		d, err := NewDeck(ids, s.rng())
		if err != nil {
			delete(s.decks, sid)
			return View{}, err
		}
		sess = &session{deck: d, pool: poolKey}
		s.decks[sid] = sess
	}
	sess.seen = s.now()
	id := fn(sess.deck)
	return View{ID: id, Position: sess.deck.Cursor() + 1, Total: sess.deck.Len()}, nil
}

// Close drops the visitor's deck.
func (s *Sessions) Close(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.decks, sid)
}

// Reset drops every deck, e.g. after the library was reloaded.
func (s *Sessions) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks = make(map[string]*session)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.decks)
}

func (s *Sessions) expireLocked() {
	cutoff := s.now().Add(-s.ttl)
	for k, v := range s.decks {
		if v.seen.Before(cutoff) {
			delete(s.decks, k)
		}
	}
}
