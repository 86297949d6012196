// Package tuple implements the on-disk tuple encoding: an ordered sequence
// of attribute values serialized as "v1,v2,…,vN\0". Attribute values are
// non-empty byte strings that may not contain commas or NULs.
package tuple

import (
	"bytes"
	"fmt"
	"strings"
)

// Tuple is a parsed, in-memory tuple: one non-empty string per attribute.
type Tuple []string

// Parse splits a comma-separated attribute string (without its trailing
// NUL) into a Tuple, validating its arity against nattrs and rejecting
// empty fields.
func Parse(s string, nattrs int) (Tuple, error) {
	fields := strings.Split(s, ",")
	if len(fields) != nattrs {
		return nil, fmt.Errorf("tuple: expected %d attributes, got %d in %q", nattrs, len(fields), s)
	}
	for i, f := range fields {
		if f == "" {
			return nil, fmt.Errorf("tuple: attribute %d is empty in %q", i, s)
		}
	}
	return Tuple(fields), nil
}

// Marshal serializes t as "v1,v2,…,vN\0".
func (t Tuple) Marshal() []byte {
	joined := strings.Join(t, ",")
	buf := make([]byte, len(joined)+1)
	copy(buf, joined)
	buf[len(joined)] = 0
	return buf
}

// Unmarshal parses a NUL-terminated serialized tuple (the NUL itself is
// optional in data, trimmed if present) back into a Tuple.
func Unmarshal(data []byte) Tuple {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return Tuple(strings.Split(string(data), ","))
}

// Match reports whether t matches pattern field-by-field: every
// non-wildcard ("?") attribute of pattern must equal the corresponding
// attribute of t exactly.
func Match(pattern, t Tuple) bool {
	if len(pattern) != len(t) {
		return false
	}
	for i, p := range pattern {
		if p != "?" && p != t[i] {
			return false
		}
	}
	return true
}

// String renders t as its comma-joined form, without a trailing NUL.
func (t Tuple) String() string {
	return strings.Join(t, ",")
}

// Iter walks the NUL-terminated tuple strings packed into a page's data
// area, in on-disk order, without precomputing an offset table — the
// on-disk layout is pure bytes and is scanned linearly, same as the rest
// of this store.
type Iter struct {
	data      []byte
	pos       int
	remaining int
}

// NewIter returns an iterator over the first n tuples packed into data.
func NewIter(data []byte, n int) *Iter {
	return &Iter{data: data, remaining: n}
}

// Next returns the next tuple's raw bytes (including its NUL terminator)
// and advances past it, or returns ok=false once n tuples (per NewIter)
// have been produced or the NUL-terminator run out early.
func (it *Iter) Next() (raw []byte, ok bool) {
	if it.remaining <= 0 || it.pos >= len(it.data) {
		return nil, false
	}
	end := bytes.IndexByte(it.data[it.pos:], 0)
	if end < 0 {
		return nil, false
	}
	raw = it.data[it.pos : it.pos+end+1]
	it.pos += end + 1
	it.remaining--
	return raw, true
}
