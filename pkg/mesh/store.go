package mesh

import (
	"sort"
	"sync"

	"github.com/philipparndt/meshscan/pkg/geometry"
)

// Store owns the set of currently known mesh fragments, keyed by fragment ID.
// It is the single source of truth for the current surface geometry: at any
// time it reflects exactly the add/update/remove events delivered so far.
// Fragments are stored as private copies; readers only ever see clones.
type Store struct {
	mu        sync.RWMutex
	fragments map[string]*Fragment
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		fragments: make(map[string]*Fragment),
	}
}

// Upsert inserts or replaces the fragment keyed by its ID. Replacing an
// existing fragment with the same ID is idempotent.
func (s *Store) Upsert(fragment *Fragment) {
	if fragment == nil || fragment.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments[fragment.ID] = fragment.Clone()
}

// Remove deletes the fragment with the given ID; no-op if absent
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fragments, id)
}

// Len returns the number of fragments currently held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments)
}

// SnapshotIDs returns the sorted set of fragment IDs, for diagnostics and
// testing
func (s *Store) SnapshotIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.fragments))
	for id := range s.fragments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Walk calls fn for every fragment under a read lock. The fragment passed to
// fn must not be retained or mutated; callers needing a copy use Clone.
func (s *Store) Walk(fn func(*Fragment)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, fragment := range s.fragments {
		fn(fragment)
	}
}

// Bounds returns the world-space bounding box over all fragment vertices
func (s *Store) Bounds() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	s.Walk(func(f *Fragment) {
		for _, v := range f.Vertices {
			bbox.Extend(f.Transform.Apply(v))
		}
	})
	return bbox
}
