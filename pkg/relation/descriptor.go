package relation

import (
	"encoding/binary"

	"github.com/cespare/xxhash"

	"mahstore/pkg/chvec"
)

// descriptor is the persisted relation header: the counters declared in
// nattrs, depth, sp, npages, ntups, c, insertion, splitting order, the
// choice vector, and a trailing corruption checksum.
type descriptor struct {
	nattrs    int32
	depth     int32
	sp        int32
	npages    int32
	ntups     int32
	c         int32
	insertion int32
	splitting int32
	cv        chvec.Vector
}

// descriptorSize is the on-disk size of a descriptor, including its
// trailing checksum.
const descriptorSize = 8*4 + chvec.MaxItems*2*4 + 8

func (d *descriptor) marshal() []byte {
	buf := make([]byte, descriptorSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(d.nattrs))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(d.depth))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(d.sp))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(d.npages))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(d.ntups))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(d.c))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(d.insertion))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(d.splitting))
	off := 32
	for _, item := range d.cv {
		binary.LittleEndian.PutUint32(buf[off:off+4], item.Att)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], item.Bit)
		off += 8
	}
	sum := xxhash.Sum64(buf[:off])
	binary.LittleEndian.PutUint64(buf[off:off+8], sum)
	return buf
}

// unmarshalDescriptor parses buf (exactly descriptorSize bytes) and
// verifies its checksum.
func unmarshalDescriptor(buf []byte) (*descriptor, error) {
	if len(buf) != descriptorSize {
		return nil, newErr(Corruption, "open", errShortInfo)
	}
	body := buf[:len(buf)-8]
	want := binary.LittleEndian.Uint64(buf[len(buf)-8:])
	if xxhash.Sum64(body) != want {
		return nil, newErr(Corruption, "open", errChecksumMismatch)
	}
	d := &descriptor{
		nattrs:    int32(binary.LittleEndian.Uint32(buf[0:4])),
		depth:     int32(binary.LittleEndian.Uint32(buf[4:8])),
		sp:        int32(binary.LittleEndian.Uint32(buf[8:12])),
		npages:    int32(binary.LittleEndian.Uint32(buf[12:16])),
		ntups:     int32(binary.LittleEndian.Uint32(buf[16:20])),
		c:         int32(binary.LittleEndian.Uint32(buf[20:24])),
		insertion: int32(binary.LittleEndian.Uint32(buf[24:28])),
		splitting: int32(binary.LittleEndian.Uint32(buf[28:32])),
	}
	off := 32
	for i := range d.cv {
		d.cv[i].Att = binary.LittleEndian.Uint32(buf[off : off+4])
		d.cv[i].Bit = binary.LittleEndian.Uint32(buf[off+4 : off+8])
		off += 8
	}
	return d, nil
}
