// Package state persists the set of notification identifiers that have
// already been delivered. The Watcher owns the set in memory and saves the
// whole set after every successful notification.
package state

import (
	"context"
	"slices"
)

// Set is a set of notification identifiers.
type Set map[string]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Sorted returns the identifiers in lexical order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Store loads and saves the notified set.
type Store interface {
	// Load returns the persisted set. The returned Set is never nil; on
	// failure it is empty and the error describes what went wrong.
	Load(ctx context.Context) (Set, error)
	// Save overwrites the persisted set with s.
	Save(ctx context.Context, s Set) error
	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
}
