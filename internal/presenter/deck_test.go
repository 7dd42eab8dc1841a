package presenter

import (
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestNewDeckIsPermutation(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	d, err := NewDeck(ids, seeded())
	require.NoError(t, err)

	got := d.Order()
	sort.Strings(got)
	assert.Equal(t, ids, got)
	assert.Equal(t, 0, d.Cursor())
}

func TestNewDeckEmpty(t *testing.T) {
	_, err := NewDeck(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestNextWrapsFromLastToFirst(t *testing.T) {
	d, err := NewDeck([]string{"a", "b", "c"}, seeded())
	require.NoError(t, err)
	order := d.Order()

	assert.Equal(t, order[1], d.Next())
	assert.Equal(t, order[2], d.Next())
	assert.Equal(t, order[0], d.Next())
	assert.Equal(t, 0, d.Cursor())
}

func TestPrevWrapsFromFirstToLast(t *testing.T) {
	d, err := NewDeck([]string{"a", "b", "c", "d"}, seeded())
	require.NoError(t, err)
	order := d.Order()

	assert.Equal(t, order[3], d.Prev())
	assert.Equal(t, 3, d.Cursor())
}

func TestRandomResetsCursor(t *testing.T) {
	d, err := NewDeck([]string{"a", "b", "c"}, seeded())
	require.NoError(t, err)
	d.Next()
	d.Random()
	assert.Equal(t, 0, d.Cursor())
	assert.Equal(t, 3, d.Len())
}

func TestOpenAtMovesTopicToFront(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	d, err := NewDeck(ids, seeded())
	require.NoError(t, err)
	d.Next()

	assert.Equal(t, "c", d.OpenAt("c"))
	assert.Equal(t, 0, d.Cursor())
	order := d.Order()
	assert.Equal(t, "c", order[0])
	sort.Strings(order)
	assert.Equal(t, ids, order)

	// unknown ids keep the pool intact
	d.OpenAt("zz")
	assert.Equal(t, 5, d.Len())
}

func TestSingleCardDeck(t *testing.T) {
	d, err := NewDeck([]string{"only"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "only", d.Next())
	assert.Equal(t, "only", d.Prev())
	assert.Equal(t, "only", d.Random())
}

func TestSessionsKeepDeckPerVisitor(t *testing.T) {
	s := NewSessions(time.Hour).WithRand(seeded)
	ids := []string{"a", "b", "c"}

	v1, err := s.Do("x", "pool", ids, func(d *Deck) string { return d.Current() })
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Position)
	assert.Equal(t, 3, v1.Total)

	v2, err := s.Do("x", "pool", ids, func(d *Deck) string { return d.Next() })
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Position)

	// a changed pool starts a fresh deck
	v3, err := s.Do("x", "other", ids[:2], func(d *Deck) string { return d.Current() })
	require.NoError(t, err)
	assert.Equal(t, 1, v3.Position)
	assert.Equal(t, 2, v3.Total)

	s.Close("x")
	assert.Zero(t, s.Len())

	_, err = s.Do("y", "empty", nil, func(d *Deck) string { return d.Current() })
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestSessionsExpire(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewSessions(time.Minute)
	s.now = func() time.Time { return now }

	_, err := s.Do("old", "p", []string{"a"}, func(d *Deck) string { return d.Current() })
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Do("new", "p", []string{"a"}, func(d *Deck) string { return d.Current() })
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}
