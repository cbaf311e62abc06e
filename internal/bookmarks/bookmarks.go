// Package bookmarks keeps the ordered set of bookmarked item ids.
package bookmarks

import "github.com/blackwell-systems/pkgstash/internal/store"

// Store is an ordered set of bookmark ids backed by the state database.
type Store struct {
	store *store.Store
}

// New creates a bookmark Store over st.
func New(st *store.Store) *Store {
	return &Store{store: st}
}

// Add inserts id. Adding an id that is already bookmarked keeps its position.
func (s *Store) Add(id uint32) error {
	return s.store.InsertBookmark(id)
}

// Remove deletes id from the set.
func (s *Store) Remove(id uint32) error {
	return s.store.DeleteBookmark(id)
}

// List returns the bookmarked ids in insertion order.
func (s *Store) List() ([]uint32, error) {
	return s.store.ListBookmarks()
}

// Contains reports whether id is bookmarked.
func (s *Store) Contains(id uint32) (bool, error) {
	ids, err := s.List()
	if err != nil {
		return false, err
	}
	for _, b := range ids {
		if b == id {
			return true, nil
		}
	}
	return false, nil
}
