package list_test

import (
	"testing"

	"mahstore/pkg/list"
)

func TestPushTailAndMap(t *testing.T) {
	l := list.NewList()
	l.PushTail(1)
	l.PushTail(2)
	l.PushTail(3)

	var got []int
	l.Map(func(link *list.Link) {
		got = append(got, link.GetValue().(int))
	})
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestEmptyList(t *testing.T) {
	l := list.NewList()
	if l.PeekHead() != nil {
		t.Error("expected nil head on empty list")
	}
	if l.Len() != 0 {
		t.Error("expected length 0 on empty list")
	}
}
