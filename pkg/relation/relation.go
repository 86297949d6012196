// Package relation implements the linear-hash engine: the three files
// backing one relation (descriptor, primary pages, overflow pages), the
// multi-attribute hash addressing rule, insertion with on-the-fly
// splitting, and the bucket-chain diagnostic dump.
package relation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mahstore/pkg/bits"
	"mahstore/pkg/chvec"
	"mahstore/pkg/list"
	"mahstore/pkg/mhash"
	"mahstore/pkg/pager"
	"mahstore/pkg/tuple"
)

// Relation is one open multi-attribute linear-hashed relation.
type Relation struct {
	name     string
	infoPath string

	nattrs    int32
	depth     int32
	sp        int32
	npages    int32
	ntups     int32
	c         int32
	insertion int32
	splitting bool
	cv        chvec.Vector

	data   *pager.Pager
	ovflow *pager.Pager

	fetches int64
}

// New creates a relation's three files under dir, pre-allocating npages
// empty primary pages, and leaves it open for use.
func New(dir, name string, nattrs, npages, depth int, cvStr string) (*Relation, error) {
	if nattrs <= 0 {
		return nil, newErr(ParseError, "create", fmt.Errorf("nattrs must be positive, got %d", nattrs))
	}
	cv, err := chvec.Parse(cvStr, uint32(nattrs))
	if err != nil {
		return nil, newErr(ParseError, "create", err)
	}

	dp, err := pager.Open(filepath.Join(dir, name+".data"))
	if err != nil {
		return nil, newErr(IOError, "create", err)
	}
	op, err := pager.Open(filepath.Join(dir, name+".ovflow"))
	if err != nil {
		dp.Close()
		return nil, newErr(IOError, "create", err)
	}

	r := &Relation{
		name:     name,
		infoPath: filepath.Join(dir, name+".info"),
		nattrs:   int32(nattrs),
		depth:    int32(depth),
		c:        int32(1024 / (10 * nattrs)),
		cv:       cv,
		data:     dp,
		ovflow:   op,
	}
	for i := 0; i < npages; i++ {
		if _, err := r.data.AddPage(); err != nil {
			dp.Close()
			op.Close()
			return nil, newErr(IOError, "create", err)
		}
	}
	r.npages = int32(npages)
	if err := r.writeDescriptor(); err != nil {
		dp.Close()
		op.Close()
		return nil, err
	}
	return r, nil
}

// Open rehydrates a relation's descriptor and opens its files.
func Open(dir, name string) (*Relation, error) {
	infoPath := filepath.Join(dir, name+".info")
	buf, err := os.ReadFile(infoPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newErr(NotFound, "open", err)
		}
		return nil, newErr(IOError, "open", err)
	}
	d, err := unmarshalDescriptor(buf)
	if err != nil {
		return nil, err
	}

	dp, err := pager.Open(filepath.Join(dir, name+".data"))
	if err != nil {
		return nil, newErr(IOError, "open", err)
	}
	op, err := pager.Open(filepath.Join(dir, name+".ovflow"))
	if err != nil {
		dp.Close()
		return nil, newErr(IOError, "open", err)
	}

	return &Relation{
		name:      name,
		infoPath:  infoPath,
		nattrs:    d.nattrs,
		depth:     d.depth,
		sp:        d.sp,
		npages:    d.npages,
		ntups:     d.ntups,
		c:         d.c,
		insertion: d.insertion,
		splitting: d.splitting != 0,
		cv:        d.cv,
		data:      dp,
		ovflow:    op,
	}, nil
}

// Close persists the descriptor and releases the relation's files.
func (r *Relation) Close() error {
	if err := r.writeDescriptor(); err != nil {
		return err
	}
	if err := r.data.Close(); err != nil {
		return newErr(IOError, "close", err)
	}
	if err := r.ovflow.Close(); err != nil {
		return newErr(IOError, "close", err)
	}
	return nil
}

func (r *Relation) writeDescriptor() error {
	splitting := int32(0)
	if r.splitting {
		splitting = 1
	}
	d := &descriptor{
		nattrs: r.nattrs, depth: r.depth, sp: r.sp, npages: r.npages,
		ntups: r.ntups, c: r.c, insertion: r.insertion, splitting: splitting,
		cv: r.cv,
	}
	if err := os.WriteFile(r.infoPath, d.marshal(), 0666); err != nil {
		return newErr(IOError, "close", err)
	}
	return nil
}

// NAttrs, Depth, SplitPointer, NPages, NTuples and ChoiceVector expose the
// descriptor fields the query engine needs to compile and enumerate over
// without duplicating the addressing rule.
func (r *Relation) NAttrs() int32           { return r.nattrs }
func (r *Relation) Depth() int32            { return r.depth }
func (r *Relation) SplitPointer() int32     { return r.sp }
func (r *Relation) NPages() int32           { return r.npages }
func (r *Relation) NTuples() int32          { return r.ntups }
func (r *Relation) ChoiceVector() chvec.Vector { return r.cv }

// AttrHash returns the keyed digest of a single attribute value.
func (r *Relation) AttrHash(val string) uint32 {
	return mhash.Of([]byte(val))
}

// Addr composes the bucket address for composite hash h under the
// relation's current depth and split pointer.
func (r *Relation) Addr(h uint32) pager.PageID {
	p := bits.Lower(h, uint(r.depth))
	if p < uint32(r.sp) {
		p = bits.Lower(h, uint(r.depth)+1)
	}
	return pager.PageID(p)
}

// GetPrimaryPage reads a fresh copy of primary page id. Every call
// increments the relation's fetch counter (see FetchCount), so a query's
// page-fetch cost can be measured from outside the engine.
func (r *Relation) GetPrimaryPage(id pager.PageID) (*pager.Page, error) {
	page, err := r.data.GetPage(id)
	if err != nil {
		return nil, newErr(IOError, "query", err)
	}
	r.fetches++
	return page, nil
}

// GetOverflowPage reads a fresh copy of overflow page id, also counted by
// FetchCount.
func (r *Relation) GetOverflowPage(id pager.PageID) (*pager.Page, error) {
	page, err := r.ovflow.GetPage(id)
	if err != nil {
		return nil, newErr(IOError, "query", err)
	}
	r.fetches++
	return page, nil
}

// FetchCount returns the number of pages GetPrimaryPage/GetOverflowPage
// have read since the relation was opened or last reset.
func (r *Relation) FetchCount() int64 {
	return r.fetches
}

// ResetFetchCount zeroes the fetch counter.
func (r *Relation) ResetFetchCount() {
	r.fetches = 0
}

// tupleHash composes the 32-bit composite hash of t by drawing bit i from
// the choice vector's i-th (attribute, bit) pair.
func (r *Relation) tupleHash(t tuple.Tuple) uint32 {
	attrHashes := make([]uint32, r.nattrs)
	for i, v := range t {
		attrHashes[i] = r.AttrHash(v)
	}
	var h uint32
	for i := 0; i < chvec.MaxItems; i++ {
		item := r.cv[i]
		if bits.IsSet(attrHashes[item.Att], uint(item.Bit)) {
			h = bits.Set(h, uint(i))
		}
	}
	return h
}

// Insert places t into its bucket, splitting the relation first if the
// per-split insertion budget has been reached. It returns the id of the
// bucket's primary page.
func (r *Relation) Insert(t tuple.Tuple) (pager.PageID, error) {
	if len(t) != int(r.nattrs) {
		return pager.NoPage, newErr(ParseError, "insert", fmt.Errorf("tuple has %d attributes, want %d", len(t), r.nattrs))
	}
	if r.insertion == r.c {
		r.insertion = 0
		r.splitting = true
		err := r.split()
		r.splitting = false
		if err != nil {
			return pager.NoPage, err
		}
	}

	h := r.tupleHash(t)
	p := r.Addr(h)
	if err := r.insertIntoBucket(p, t.Marshal()); err != nil {
		return pager.NoPage, err
	}
	if !r.splitting {
		r.ntups++
		r.insertion++
	}
	return p, nil
}

// insertIntoBucket appends raw to the bucket whose primary page is p,
// walking its overflow chain and allocating a new overflow page if
// needed.
func (r *Relation) insertIntoBucket(p pager.PageID, raw []byte) error {
	page, err := r.data.GetPage(p)
	if err != nil {
		return newErr(IOError, "insert", err)
	}
	if page.Add(raw) {
		if err := r.data.PutPage(p, page); err != nil {
			return newErr(IOError, "insert", err)
		}
		return nil
	}

	if page.Ovflow == pager.NoPage {
		newID, err := r.ovflow.AddPage()
		if err != nil {
			return newErr(IOError, "insert", err)
		}
		newPage, err := r.ovflow.GetPage(newID)
		if err != nil {
			return newErr(IOError, "insert", err)
		}
		if !newPage.Add(raw) {
			return newErr(NoSpace, "insert", fmt.Errorf("tuple of %d bytes exceeds page capacity", len(raw)))
		}
		if err := r.ovflow.PutPage(newID, newPage); err != nil {
			return newErr(IOError, "insert", err)
		}
		page.Ovflow = newID
		if err := r.data.PutPage(p, page); err != nil {
			return newErr(IOError, "insert", err)
		}
		return nil
	}

	var prevID pager.PageID
	var prevPage *pager.Page
	curID := page.Ovflow
	for curID != pager.NoPage {
		cur, err := r.ovflow.GetPage(curID)
		if err != nil {
			return newErr(IOError, "insert", err)
		}
		if cur.Add(raw) {
			return r.wrapIOErr("insert", r.ovflow.PutPage(curID, cur))
		}
		prevID = curID
		prevPage = cur
		curID = cur.Ovflow
	}

	newID, err := r.ovflow.AddPage()
	if err != nil {
		return newErr(IOError, "insert", err)
	}
	newPage, err := r.ovflow.GetPage(newID)
	if err != nil {
		return newErr(IOError, "insert", err)
	}
	if !newPage.Add(raw) {
		return newErr(NoSpace, "insert", fmt.Errorf("tuple of %d bytes exceeds page capacity", len(raw)))
	}
	if err := r.ovflow.PutPage(newID, newPage); err != nil {
		return newErr(IOError, "insert", err)
	}
	prevPage.Ovflow = newID
	return r.wrapIOErr("insert", r.ovflow.PutPage(prevID, prevPage))
}

func (r *Relation) wrapIOErr(op string, err error) error {
	if err != nil {
		return newErr(IOError, op, err)
	}
	return nil
}

// split extends the address space by one bucket: it allocates a buddy
// primary page, snapshots bucket sp's entire chain (clearing each page as
// it is consumed, preserving the chain's ovflow links), advances sp so
// that the addressing rule sends each tuple to the old bucket or its
// buddy, re-inserts every snapshotted tuple, and finally rolls depth over
// (d+1, sp=0) once sp reaches 2^d.
func (r *Relation) split() error {
	if _, err := r.data.AddPage(); err != nil {
		return newErr(IOError, "split", err)
	}
	r.npages++

	snapshot := list.NewList()
	curPager := r.data
	curID := pager.PageID(r.sp)
	for {
		page, err := curPager.GetPage(curID)
		if err != nil {
			return newErr(IOError, "split", err)
		}
		it := tuple.NewIter(page.Data[:page.Free], int(page.NTuples))
		for {
			raw, ok := it.Next()
			if !ok {
				break
			}
			cp := make([]byte, len(raw))
			copy(cp, raw)
			snapshot.PushTail(cp)
		}
		next := page.Ovflow
		cleared := pager.New()
		cleared.Ovflow = next
		if err := curPager.PutPage(curID, cleared); err != nil {
			return newErr(IOError, "split", err)
		}
		if next == pager.NoPage {
			break
		}
		curID = next
		curPager = r.ovflow
	}

	r.sp++

	var reinsertErr error
	snapshot.Map(func(l *list.Link) {
		if reinsertErr != nil {
			return
		}
		t := tuple.Unmarshal(l.GetValue().([]byte))
		if _, err := r.Insert(t); err != nil {
			reinsertErr = err
		}
	})
	if reinsertErr != nil {
		return reinsertErr
	}

	if r.sp == 1<<uint(r.depth) {
		r.depth++
		r.sp = 0
	}
	return nil
}

// Stats renders the global counters, the choice vector, and every
// bucket's chain of (pageID, #tuples, freebytes, ovflow) in walk order.
func (r *Relation) Stats() (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Global Info:\n")
	fmt.Fprintf(&sb, "#attrs:%d  #pages:%d  #tuples:%d  d:%d  sp:%d\n",
		r.nattrs, r.npages, r.ntups, r.depth, r.sp)
	fmt.Fprintf(&sb, "Choice vector\n%s", r.cv.Print())
	fmt.Fprintf(&sb, "Bucket Info:\n")
	fmt.Fprintf(&sb, "%-4s %s\n", "#", "Info on pages in bucket")
	fmt.Fprintf(&sb, "%-4s %s\n", "", "(pageID,#tuples,freebytes,ovflow)")
	for pid := int32(0); pid < r.npages; pid++ {
		fmt.Fprintf(&sb, "[%2d]  ", pid)
		page, err := r.data.GetPage(pager.PageID(pid))
		if err != nil {
			return "", newErr(IOError, "stats", err)
		}
		fmt.Fprintf(&sb, "(d%d,%d,%d,%d)", pid, page.NTuples, page.FreeSpace(), page.Ovflow)
		ovid := page.Ovflow
		for ovid != pager.NoPage {
			curid := ovid
			ovpage, err := r.ovflow.GetPage(ovid)
			if err != nil {
				return "", newErr(IOError, "stats", err)
			}
			fmt.Fprintf(&sb, " -> (ov%d,%d,%d,%d)", curid, ovpage.NTuples, ovpage.FreeSpace(), ovpage.Ovflow)
			ovid = ovpage.Ovflow
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
