// internal/app/console/store.go
package console

import (
	"sync"

	"github.com/dalemusser/ccbportal/internal/domain/models"
)

// Store holds one console's copy of the ten resource lists.
type Store struct {
	mu     sync.RWMutex
	lists  map[models.Kind][]models.Record
	loaded bool
}

func NewStore() *Store {
	return &Store{lists: make(map[models.Kind][]models.Record)}
}

// ReplaceAll swaps every list at once. Kinds missing from lists become empty.
func (s *Store) ReplaceAll(lists map[models.Kind][]models.Record) {
	next := make(map[models.Kind][]models.Record, len(models.Kinds))
	for _, k := range models.Kinds {
		l := lists[k]
		if l == nil {
			l = []models.Record{}
		}
		next[k] = l
	}

	s.mu.Lock()
	s.lists = next
	s.loaded = true
	s.mu.Unlock()
}

// Replace swaps one list.
func (s *Store) Replace(k models.Kind, list []models.Record) {
	if list == nil {
		list = []models.Record{}
	}
	s.mu.Lock()
	s.lists[k] = list
	s.mu.Unlock()
}

// Patch replaces the record with rec's id. It reports whether one matched.
func (s *Store) Patch(k models.Kind, rec models.Record) bool {
	id := rec.ID()
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.lists[k]
	for i, r := range cur {
		if r.ID() == id {
			next := append([]models.Record(nil), cur...)
			next[i] = rec
			s.lists[k] = next
			return true
		}
	}
	return false
}

func (s *Store) Append(k models.Kind, rec models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.lists[k]
	next := make([]models.Record, 0, len(cur)+1)
	s.lists[k] = append(append(next, cur...), rec)
}

// Remove drops the record with id. It reports whether one was removed.
func (s *Store) Remove(k models.Kind, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.lists[k]
	next := make([]models.Record, 0, len(cur))
	for _, r := range cur {
		if r.ID() != id {
			next = append(next, r)
		}
	}
	s.lists[k] = next
	return len(next) != len(cur)
}

// RemoveWhere drops every record of kind k for which match is true and returns
// how many went.
func (s *Store) RemoveWhere(k models.Kind, match func(models.Record) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.lists[k]
	next := make([]models.Record, 0, len(cur))
	for _, r := range cur {
		if !match(r) {
			next = append(next, r)
		}
	}
	s.lists[k] = next
	return len(cur) - len(next)
}

// List returns the records of kind k. The slice must not be modified.
func (s *Store) List(k models.Kind) []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lists[k]
}

func (s *Store) Find(k models.Kind, id int64) (models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.lists[k] {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// Counts returns the length of every list.
func (s *Store) Counts() map[models.Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[models.Kind]int, len(models.Kinds))
	for _, k := range models.Kinds {
		out[k] = len(s.lists[k])
	}
	return out
}

// Loaded reports whether a bulk load has completed since the last Reset.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Reset empties every list.
func (s *Store) Reset() {
	s.mu.Lock()
	s.lists = make(map[models.Kind][]models.Record)
	s.loaded = false
	s.mu.Unlock()
}
