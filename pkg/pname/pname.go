// Package pname implements a PersonName attribute type of the form
// "Family, Given", validated and compared the way the PostgreSQL pname
// extension type does. It is a standalone attribute helper: the relation
// engine addresses tuples purely by their string fields and never treats
// a PersonName specially.
package pname

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spaolacci/murmur3"
)

var format = regexp.MustCompile(`^[A-Z][A-Za-z'-]+([ ][A-Z][A-Za-z'-]+)*,[ ]?[A-Z][A-Za-z'-]+([ ][A-Z][A-Za-z'-]+)*$`)

// PersonName is a validated "Family,Given" name.
type PersonName string

// Parse validates s against the family/given format and normalizes away
// the optional space after the comma.
func Parse(s string) (PersonName, error) {
	if !format.MatchString(s) {
		return "", fmt.Errorf("pname: invalid input syntax for PersonName: %q", s)
	}
	i := strings.LastIndexByte(s, ',')
	family, given := s[:i], s[i+1:]
	given = strings.TrimPrefix(given, " ")
	return PersonName(family + "," + given), nil
}

// Family returns the family-name portion.
func (p PersonName) Family() string {
	i := strings.LastIndexByte(string(p), ',')
	return string(p)[:i]
}

// Given returns the given-name portion.
func (p PersonName) Given() string {
	i := strings.LastIndexByte(string(p), ',')
	return string(p)[i+1:]
}

// Show renders the name as "FirstGiven Family", dropping any middle given
// names.
func (p PersonName) Show() string {
	first := p.Given()
	if i := strings.IndexByte(first, ' '); i >= 0 {
		first = first[:i]
	}
	return first + " " + p.Family()
}

// Compare orders PersonNames by family name, then given name, matching
// pname_cmp.
func (p PersonName) Compare(other PersonName) int {
	if c := strings.Compare(p.Family(), other.Family()); c != 0 {
		return c
	}
	return strings.Compare(p.Given(), other.Given())
}

// Hash returns a hash code suitable for hash-indexing a PersonName,
// analogous to pname_hash's use of hash_any.
func (p PersonName) Hash() uint32 {
	return murmur3.Sum32([]byte(p))
}

// String returns the canonical "Family,Given" representation.
func (p PersonName) String() string {
	return string(p)
}
