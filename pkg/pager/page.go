package pager

import "encoding/binary"

// PageSize is the fixed size, in bytes, of every page on disk.
const PageSize = 1024

// headerSize is the size of the three uint32 header fields: ntuples, free,
// ovflow.
const headerSize = 12

// DataSize is the number of bytes available for packed tuple data in a
// page.
const DataSize = PageSize - headerSize

// PageID identifies a page by its zero-based position within its file.
type PageID int32

// NoPage is the sentinel PageID meaning "no page" — the all-ones value of
// the PageID type.
const NoPage PageID = -1

// Page is an in-memory copy of one on-disk page: a count, a free-space
// cursor, an overflow link, and a packed run of NUL-terminated tuple
// strings.
type Page struct {
	NTuples uint32
	Free    uint32
	Ovflow  PageID
	Data    [DataSize]byte
}

// New returns a fresh, empty page with no overflow link.
func New() *Page {
	return &Page{Ovflow: NoPage}
}

// FreeSpace returns the number of unused bytes left in the page's data
// area.
func (p *Page) FreeSpace() uint32 {
	return DataSize - p.Free
}

// Add appends the already-serialized tuple raw (including its trailing
// NUL) to the page if it fits, updating Free and NTuples. It reports
// whether the tuple was added.
func (p *Page) Add(raw []byte) bool {
	if uint32(len(raw)) > p.FreeSpace() {
		return false
	}
	copy(p.Data[p.Free:], raw)
	p.Free += uint32(len(raw))
	p.NTuples++
	return true
}

// marshal serializes the page's header and data area into exactly
// PageSize bytes.
func (p *Page) marshal() []byte {
	buf := make([]byte, PageSize)
	binary.LittleEndian.PutUint32(buf[0:4], p.NTuples)
	binary.LittleEndian.PutUint32(buf[4:8], p.Free)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Ovflow))
	copy(buf[headerSize:], p.Data[:])
	return buf
}

// unmarshal populates p from exactly PageSize bytes previously produced by
// marshal.
func (p *Page) unmarshal(buf []byte) {
	p.NTuples = binary.LittleEndian.Uint32(buf[0:4])
	p.Free = binary.LittleEndian.Uint32(buf[4:8])
	p.Ovflow = PageID(binary.LittleEndian.Uint32(buf[8:12]))
	copy(p.Data[:], buf[headerSize:])
}
