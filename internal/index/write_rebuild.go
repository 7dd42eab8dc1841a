package index

import (
	"encoding/json"
	bolt "go.etcd.io/bbolt"
	"teatopics/internal/domain/topic"
)

// Rebuild replaces the source part of the library with topics and records
// fingerprint. Topics added through Append are replayed after them, minus
// any the new source now contains.
func (s *Store) Rebuild(topics []topic.Topic, fingerprint string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		added, err := readAdded(tx)
		if err != nil {
			return err
		}
		for _, name := range [][]byte{bTopics, bOrder, bKeys, bState, bIdxCollection, bIdxCategory} {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
		}
		w, err := newWriter(tx)
		if err != nil {
			return err
		}
		for _, t := range topics {
			if _, _, err := w.put(t); err != nil {
				return err
			}
		}
		for _, t := range added {
			if _, _, err := w.put(t); err != nil {
				return err
			}
		}
		if err := w.state.Put(kFingerprint, []byte(fingerprint)); err != nil {
			return err
		}
		return w.flush()
	})
}

// Append adds topics at the end of the library, skipping any whose text is
// already present in the same collection. It returns the topics that were
// actually stored.
func (s *Store) Append(topics []topic.Topic) ([]topic.Topic, error) {
	var added []topic.Topic
	err := s.db.Update(func(tx *bolt.Tx) error {
		w, err := newWriter(tx)
		if err != nil {
			return err
		}
		journal, err := tx.CreateBucketIfNotExists(bAdded)
		if err != nil {
			return err
		}
		for _, t := range topics {
			stored, ok, err := w.put(t)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			data, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			seq, err := journal.NextSequence()
			if err != nil {
				return err
			}
			if err := journal.Put(seqKey(seq), data); err != nil {
				return err
			}
			added = append(added, stored)
		}
		return w.flush()
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func readAdded(tx *bolt.Tx) ([]topic.Topic, error) {
	b := tx.Bucket(bAdded)
	if b == nil {
		return nil, nil
	}
	var out []topic.Topic
	err := b.ForEach(func(_, v []byte) error {
		var t topic.Topic
		if err := json.Unmarshal(v, &t); err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	return out, err
}

// ClearAdded forgets every topic added through Append. They disappear on
// the next Rebuild.
func (s *Store) ClearAdded() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bAdded); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		return nil
	})
}

type writer struct {
	topics, order, keys, state, coll, cat *bolt.Bucket
	next                                  uint64
}

func newWriter(tx *bolt.Tx) (*writer, error) {
	w := &writer{}
	var err error
	for _, b := range []struct {
		dst  **bolt.Bucket
		name []byte
	}{
		{&w.topics, bTopics},
		{&w.order, bOrder},
		{&w.keys, bKeys},
		{&w.state, bState},
		{&w.coll, bIdxCollection},
		{&w.cat, bIdxCategory},
	} {
		if *b.dst, err = tx.CreateBucketIfNotExists(b.name); err != nil {
			return nil, err
		}
	}
	if v := w.state.Get(kNextSeq); v != nil {
		w.next = seqFromKey(v)
	}
	return w, nil
}

func (w *writer) put(t topic.Topic) (topic.Topic, bool, error) {
	t.Normalize()
	if !t.Valid() {
		return t, false, nil
	}
	key := []byte(topic.ScopedKey(t.Collection, t.Text))
	if w.keys.Get(key) != nil {
		return t, false, nil
	}
	if w.topics.Get([]byte(t.ID)) != nil {
		t.ID = topic.NewID()
	}

	data, err := json.Marshal(t)
	if err != nil {
		return t, false, err
	}
	id := []byte(t.ID)
	seq := seqKey(w.next)
	w.next++

	if err := w.topics.Put(id, data); err != nil {
		return t, false, err
	}
	if err := w.order.Put(seq, id); err != nil {
		return t, false, err
	}
	if err := w.keys.Put(key, id); err != nil {
		return t, false, err
	}
	sb, err := w.coll.CreateBucketIfNotExists(collectionBucketName(t.Collection))
	if err != nil {
		return t, false, err
	}
	if err := sb.Put(seq, id); err != nil {
		return t, false, err
	}
	if t.Category != "" {
		cb, err := w.cat.CreateBucketIfNotExists(categoryBucketName(t.Collection, t.Category))
		if err != nil {
			return t, false, err
		}
		if err := cb.Put(seq, id); err != nil {
			return t, false, err
		}
	}
	return t, true, nil
}

func (w *writer) flush() error {
	return w.state.Put(kNextSeq, seqKey(w.next))
}
