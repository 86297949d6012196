// Package store manages a directory of named relations, the ambient
// multi-relation layer the CLI operates against. A single relation is
// the storage engine's focus; Store adds the thin directory-of-relations
// convenience a multi-relation CLI needs on top of it.
package store

import (
	"fmt"
	"os"
	"sort"

	"mahstore/pkg/relation"
)

// Store owns a base directory and tracks every relation currently open
// under it.
type Store struct {
	dir  string
	open map[string]*relation.Relation
}

// Open returns a Store rooted at dir, creating dir if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0775); err != nil {
		return nil, relation.NewError(relation.IOError, "open store", err)
	}
	return &Store{dir: dir, open: make(map[string]*relation.Relation)}, nil
}

// Dir returns the store's base directory.
func (s *Store) Dir() string {
	return s.dir
}

// Create makes a new relation named name and tracks it as open.
func (s *Store) Create(name string, nattrs, npages, depth int, cv string) (*relation.Relation, error) {
	if _, exists := s.open[name]; exists {
		return nil, relation.NewError(relation.ParseError, "create", fmt.Errorf("relation %q is already open", name))
	}
	r, err := relation.New(s.dir, name, nattrs, npages, depth, cv)
	if err != nil {
		return nil, err
	}
	s.open[name] = r
	return r, nil
}

// Relation returns the named relation, opening it from disk on first
// reference.
func (s *Store) Relation(name string) (*relation.Relation, error) {
	if r, ok := s.open[name]; ok {
		return r, nil
	}
	r, err := relation.Open(s.dir, name)
	if err != nil {
		return nil, err
	}
	s.open[name] = r
	return r, nil
}

// Names returns the names of every relation the store currently holds
// open, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.open))
	for name := range s.open {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close persists and closes every relation the store still holds open.
func (s *Store) Close() error {
	var first error
	for name, r := range s.open {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
		delete(s.open, name)
	}
	return first
}
