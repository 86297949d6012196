// Package pager implements the fixed-size page abstraction and the direct,
// unbuffered file I/O that reads and writes pages for it. Pages are never
// cached across operations: GetPage always returns a freshly read copy,
// and the caller is responsible for writing it back with PutPage (or
// simply discarding it if it only read). This is the resource discipline
// the relation engine's single-operation-at-a-time model requires — there
// is no buffer pool, pin counting, or page table to keep consistent,
// because nothing ever holds two operations' pages open at once.
package pager

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// ErrInvalidPageID is returned by GetPage/PutPage for an id outside
// [0, NumPages).
var ErrInvalidPageID = errors.New("pager: invalid page id")

// Pager manages pages of data stored in one page-aligned file.
type Pager struct {
	file     *os.File
	numPages int64
}

// Open opens (creating, along with any missing parent directories, if
// necessary) the page-aligned file at path.
func Open(path string) (*Pager, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0775); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size()%PageSize != 0 {
		file.Close()
		return nil, errors.New("pager: file size is not a multiple of the page size")
	}
	return &Pager{file: file, numPages: info.Size() / PageSize}, nil
}

// NumPages returns the number of pages currently in the file.
func (p *Pager) NumPages() int64 {
	return p.numPages
}

// GetPage reads and returns a fresh copy of page id.
func (p *Pager) GetPage(id PageID) (*Page, error) {
	if id < 0 || int64(id) >= p.numPages {
		return nil, ErrInvalidPageID
	}
	buf := make([]byte, PageSize)
	if _, err := p.file.ReadAt(buf, int64(id)*PageSize); err != nil && err != io.EOF {
		return nil, err
	}
	page := &Page{}
	page.unmarshal(buf)
	return page, nil
}

// PutPage writes page back to slot id.
func (p *Pager) PutPage(id PageID, page *Page) error {
	if id < 0 || int64(id) >= p.numPages {
		return ErrInvalidPageID
	}
	_, err := p.file.WriteAt(page.marshal(), int64(id)*PageSize)
	return err
}

// AddPage appends one freshly initialized, empty page to the file and
// returns its id.
func (p *Pager) AddPage() (PageID, error) {
	id := PageID(p.numPages)
	if _, err := p.file.WriteAt(New().marshal(), int64(id)*PageSize); err != nil {
		return NoPage, err
	}
	p.numPages++
	return id, nil
}

// Close closes the backing file. Every write already happened synchronously
// in PutPage/AddPage, so there is nothing left to flush.
func (p *Pager) Close() error {
	return p.file.Close()
}

// FileName returns the path the pager was opened with.
func (p *Pager) FileName() string {
	return p.file.Name()
}
