package index

import (
	"encoding/json"
	bolt "go.etcd.io/bbolt"
	"strings"
	domainerr "teatopics/internal/domain/errors"
	"teatopics/internal/domain/topic"
)

var ErrNotFound = domainerr.ErrNotFound

// Facet is a filter value with the number of topics carrying it.
type Facet struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func Names(items []Facet) []string {
	out := make([]string, len(items))
	for i, f := range items {
		out[i] = f.Name
	}
	return out
}

func (s *Store) Get(id string) (topic.Topic, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return topic.Topic{}, ErrNotFound
	}
	var t topic.Topic
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bTopics)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &t)
	})
	return t, err
}

// All returns every topic in source order.
func (s *Store) All() ([]topic.Topic, error) {
	var out []topic.Topic
	err := s.db.View(func(tx *bolt.Tx) error {
		return walkSeq(tx, tx.Bucket(bOrder), func(t topic.Topic) {
			out = append(out, t)
		})
	})
	return out, err
}

func (s *Store) ByCollection(name string) ([]topic.Topic, error) {
	var out []topic.Topic
	err := s.db.View(func(tx *bolt.Tx) error {
		parent := tx.Bucket(bIdxCollection)
		if parent == nil {
			return nil
		}
		return walkSeq(tx, parent.Bucket(collectionBucketName(strings.TrimSpace(name))), func(t topic.Topic) {
			out = append(out, t)
		})
	})
	return out, err
}

func walkSeq(tx *bolt.Tx, idx *bolt.Bucket, fn func(topic.Topic)) error {
	topicsB := tx.Bucket(bTopics)
	if idx == nil || topicsB == nil {
		return nil
	}
	c := idx.Cursor()
	for k, id := c.First(); k != nil; k, id = c.Next() {
		v := topicsB.Get(id)
		if v == nil {
			continue
		}
		var t topic.Topic
		if err := json.Unmarshal(v, &t); err != nil {
			continue
		}
		fn(t)
	}
	return nil
}

func (s *Store) Count() (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bOrder); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}

// Collections lists every collection name with its topic count, in Dutch
// collation order.
func (s *Store) Collections() ([]Facet, error) {
	var out []Facet
	err := s.db.View(func(tx *bolt.Tx) error {
		parent := tx.Bucket(bIdxCollection)
		if parent == nil {
			return nil
		}
		return parent.ForEachBucket(func(k []byte) error {
			sb := parent.Bucket(k)
			out = append(out, Facet{Name: collectionFromBucketName(k), Count: sb.Stats().KeyN})
			return nil
		})
	})
	sortFacets(out)
	return out, err
}

// Categories lists the categories used inside collection, or across all
// collections when collection is empty.
func (s *Store) Categories(collection string) ([]Facet, error) {
	collection = strings.TrimSpace(collection)
	counts := make(map[string]int)
	err := s.db.View(func(tx *bolt.Tx) error {
		parent := tx.Bucket(bIdxCategory)
		if parent == nil {
			return nil
		}
		return parent.ForEachBucket(func(k []byte) error {
			coll, cat := splitCategoryBucketName(k)
			if collection != "" && coll != collection {
				return nil
			}
			counts[cat] += parent.Bucket(k).Stats().KeyN
			return nil
		})
	})
	out := make([]Facet, 0, len(counts))
	for name, n := range counts {
		out = append(out, Facet{Name: name, Count: n})
	}
	sortFacets(out)
	return out, err
}

func (s *Store) Fingerprint() (string, error) {
	var fp string
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bState); b != nil {
			fp = string(b.Get(kFingerprint))
		}
		return nil
	})
	return fp, err
}

func sortFacets(items []Facet) {
	names := make([]string, len(items))
	byName := make(map[string]Facet, len(items))
	for i, f := range items {
		names[i] = f.Name
		byName[f.Name] = f
	}
	topic.SortStrings(names)
	for i, n := range names {
		items[i] = byName[n]
	}
}
