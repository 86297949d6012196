// Package testutil provides small helpers shared by this module's
// package tests: temp-directory relation setup and insert-and-check
// convenience wrappers.
package testutil

import (
	"testing"

	"mahstore/pkg/relation"
	"mahstore/pkg/tuple"
)

// NewRelation creates a relation under a fresh temp directory and
// registers it for cleanup at the end of the test.
func NewRelation(t *testing.T, name string, nattrs, npages, depth int, cv string) *relation.Relation {
	t.Helper()
	dir := t.TempDir()
	r, err := relation.New(dir, name, nattrs, npages, depth, cv)
	if err != nil {
		t.Fatalf("creating relation %q: %v", name, err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

// Insert parses raw as a tuple of the given arity and inserts it,
// failing the test on any error.
func Insert(t *testing.T, r *relation.Relation, raw string, nattrs int) {
	t.Helper()
	tp, err := tuple.Parse(raw, nattrs)
	if err != nil {
		t.Fatalf("parsing tuple %q: %v", raw, err)
	}
	if _, err := r.Insert(tp); err != nil {
		t.Fatalf("inserting %q: %v", raw, err)
	}
}
