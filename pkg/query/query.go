// Package query implements the partial-match scan: given a tuple pattern
// with "?" wildcards, it enumerates exactly the buckets that could hold a
// matching tuple and streams them out one at a time.
package query

import (
	"mahstore/pkg/bits"
	"mahstore/pkg/cursor"
	"mahstore/pkg/pager"
	"mahstore/pkg/relation"
	"mahstore/pkg/tuple"
)

// Query is an open partial-match scan over one relation. It implements
// cursor.Cursor[tuple.Tuple].
type Query struct {
	rel     *relation.Relation
	pattern tuple.Tuple

	known     uint32
	starBits  []uint32
	bitSeq    uint32
	bitSeqMax uint32

	curPage *pager.Page
	iter    *tuple.Iter

	pending tuple.Tuple
	err     error
}

var _ cursor.Cursor[tuple.Tuple] = (*Query)(nil)

// Start compiles patternStr against rel's schema and choice vector and
// positions the scan at its first candidate bucket.
func Start(rel *relation.Relation, patternStr string) (*Query, error) {
	pattern, err := tuple.Parse(patternStr, int(rel.NAttrs()))
	if err != nil {
		return nil, relation.NewError(relation.ParseError, "select", err)
	}

	cv := rel.ChoiceVector()
	d := rel.Depth()

	q := &Query{rel: rel, pattern: pattern}
	for i := 0; i <= int(d); i++ {
		item := cv[i]
		val := pattern[item.Att]
		if val != "?" {
			h := rel.AttrHash(val)
			if bits.IsSet(h, uint(item.Bit)) {
				q.known = bits.Set(q.known, uint(i))
			}
		} else {
			q.starBits = append(q.starBits, uint32(i))
		}
	}
	for i := range q.starBits {
		q.bitSeqMax = bits.Set(q.bitSeqMax, uint(i))
	}

	page, err := rel.GetPrimaryPage(rel.Addr(q.known | q.unknownAt(q.bitSeq)))
	if err != nil {
		return nil, err
	}
	q.curPage = page
	return q, nil
}

// unknownAt scatters bitSeq's bits across the recorded star positions.
func (q *Query) unknownAt(bitSeq uint32) uint32 {
	var u uint32
	for i, pos := range q.starBits {
		if bits.IsSet(bitSeq, uint(i)) {
			u = bits.Set(u, uint(pos))
		}
	}
	return u
}

// Next advances to the next matching tuple, fetching further pages and
// buckets as needed. It reports whether one was found.
func (q *Query) Next() bool {
	for {
		if q.iter == nil {
			q.iter = tuple.NewIter(q.curPage.Data[:q.curPage.Free], int(q.curPage.NTuples))
		}
		for {
			raw, ok := q.iter.Next()
			if !ok {
				break
			}
			cand := tuple.Unmarshal(raw)
			if tuple.Match(q.pattern, cand) {
				q.pending = cand
				return true
			}
		}

		if q.curPage.Ovflow != pager.NoPage {
			page, err := q.rel.GetOverflowPage(q.curPage.Ovflow)
			if err != nil {
				q.err = err
				return false
			}
			q.curPage = page
			q.iter = nil
			continue
		}

		if q.bitSeq == q.bitSeqMax {
			return false
		}
		q.bitSeq++
		unknown := q.unknownAt(q.bitSeq)
		malHash := q.known | unknown
		d := uint32(q.rel.Depth())

		if len(q.starBits) == 0 || q.starBits[len(q.starBits)-1] != d {
			page, err := q.rel.GetPrimaryPage(q.rel.Addr(malHash))
			if err != nil {
				q.err = err
				return false
			}
			q.curPage = page
			q.iter = nil
			continue
		}

		p := bits.Lower(malHash, uint(d)+1)
		if p >= uint32(q.rel.NPages()) {
			continue
		}
		page, err := q.rel.GetPrimaryPage(pager.PageID(p))
		if err != nil {
			q.err = err
			return false
		}
		q.curPage = page
		q.iter = nil
	}
}

// Value returns the tuple found by the most recent successful Next.
func (q *Query) Value() (tuple.Tuple, error) {
	if q.err != nil {
		return nil, q.err
	}
	return q.pending, nil
}

// Close releases the query. The only page it holds is its current page, a
// private in-memory copy, so there is nothing left to release.
func (q *Query) Close() error {
	return nil
}
