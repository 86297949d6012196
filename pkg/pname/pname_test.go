package pname_test

import (
	"testing"

	"mahstore/pkg/pname"
)

func TestParseNormalizesSpace(t *testing.T) {
	p, err := pname.Parse("Smith, John")
	if err != nil {
		t.Fatal(err)
	}
	if p.String() != "Smith,John" {
		t.Errorf("got %q, want %q", p.String(), "Smith,John")
	}
}

func TestParseRejectsBadFormat(t *testing.T) {
	if _, err := pname.Parse("smith,john"); err == nil {
		t.Error("expected error for lowercase family name")
	}
	if _, err := pname.Parse("Smith John"); err == nil {
		t.Error("expected error for missing comma")
	}
}

func TestFamilyAndGiven(t *testing.T) {
	p, err := pname.Parse("Hebbar,Sudha Mhe")
	if err != nil {
		t.Fatal(err)
	}
	if p.Family() != "Hebbar" {
		t.Errorf("got family %q", p.Family())
	}
	if p.Given() != "Sudha Mhe" {
		t.Errorf("got given %q", p.Given())
	}
	if p.Show() != "Sudha Hebbar" {
		t.Errorf("got show %q", p.Show())
	}
}

func TestCompareOrdersByFamilyThenGiven(t *testing.T) {
	a, _ := pname.Parse("Adams,Zeno")
	b, _ := pname.Parse("Brown,Abel")
	if a.Compare(b) >= 0 {
		t.Error("expected Adams < Brown by family name")
	}
	a2, _ := pname.Parse("Adams,Abel")
	if a.Compare(a2) <= 0 {
		t.Error("expected Zeno > Abel within the same family")
	}
}
