package tuple_test

import (
	"testing"

	"mahstore/pkg/tuple"
)

func TestParseAndMarshal(t *testing.T) {
	tp, err := tuple.Parse("alpha,bravo", 2)
	if err != nil {
		t.Fatal(err)
	}
	raw := tp.Marshal()
	if raw[len(raw)-1] != 0 {
		t.Fatal("expected trailing NUL terminator")
	}
	got := tuple.Unmarshal(raw)
	if got.String() != "alpha,bravo" {
		t.Errorf("round trip: got %q", got.String())
	}
}

func TestParseArityMismatch(t *testing.T) {
	if _, err := tuple.Parse("alpha,bravo", 3); err == nil {
		t.Error("expected arity mismatch error")
	}
}

func TestParseEmptyField(t *testing.T) {
	if _, err := tuple.Parse("alpha,", 2); err == nil {
		t.Error("expected error for empty attribute")
	}
}

func TestMatch(t *testing.T) {
	pattern := tuple.Tuple{"alpha", "?"}
	if !tuple.Match(pattern, tuple.Tuple{"alpha", "bravo"}) {
		t.Error("expected match")
	}
	if tuple.Match(pattern, tuple.Tuple{"charlie", "bravo"}) {
		t.Error("expected no match")
	}
}

func TestIter(t *testing.T) {
	var data []byte
	tuples := []tuple.Tuple{{"alpha", "bravo"}, {"charlie", "delta"}, {"echo", "foxtrot"}}
	for _, tp := range tuples {
		data = append(data, tp.Marshal()...)
	}
	it := tuple.NewIter(data, len(tuples))
	for i, want := range tuples {
		raw, ok := it.Next()
		if !ok {
			t.Fatalf("iterator exhausted early at index %d", i)
		}
		got := tuple.Unmarshal(raw)
		if got.String() != want.String() {
			t.Errorf("tuple %d: got %q, want %q", i, got.String(), want.String())
		}
	}
	if _, ok := it.Next(); ok {
		t.Error("expected iterator to be exhausted")
	}
}
