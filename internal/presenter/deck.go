// Package presenter drives fullscreen mode: a shuffled walk over a pool of
// topic IDs with wraparound navigation.
package presenter

import (
	"errors"
	"math/rand/v2"
)

var ErrEmptyDeck = errors.New("presenter: no topics to show")

// Deck is a permutation of topic IDs plus a cursor. It is not safe for
// concurrent use; Sessions guards decks shared across requests.
type Deck struct {
	order  []string
	cursor int
	rng    *rand.Rand
}

// NewDeck shuffles ids into a fresh permutation. rng may be nil.
func NewDeck(ids []string, rng *rand.Rand) (*Deck, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyDeck
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	d := &Deck{order: append([]string(nil), ids...), rng: rng}
	d.shuffle(d.order)
	return d, nil
}

func (d *Deck) shuffle(s []string) {
	d.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

func (d *Deck) Len() int    { return len(d.order) }
func (d *Deck) Cursor() int { return d.cursor }

func (d *Deck) Current() string {
	return d.order[d.cursor]
}

// Order returns a copy of the current permutation.
func (d *Deck) Order() []string {
	return append([]string(nil), d.order...)
}

func (d *Deck) Next() string {
	d.cursor = (d.cursor + 1) % len(d.order)
	return d.Current()
}

func (d *Deck) Prev() string {
	d.cursor = (d.cursor - 1 + len(d.order)) % len(d.order)
	return d.Current()
}

// Random reshuffles the whole pool and starts over at the first card.
func (d *Deck) Random() string {
	d.shuffle(d.order)
	d.cursor = 0
	return d.Current()
}

// OpenAt puts id first, followed by a fresh shuffle of the rest. Unknown ids
// behave like Random.
func (d *Deck) OpenAt(id string) string {
	rest := make([]string, 0, len(d.order))
	found := false
	for _, x := range d.order {
		if x == id && !found {
			found = true
			continue
		}
		rest = append(rest, x)
	}
	d.shuffle(rest)
	if found {
		d.order = append([]string{id}, rest...)
	} else {
		d.order = rest
	}
	d.cursor = 0
	return d.Current()
}

