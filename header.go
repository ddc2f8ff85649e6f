package blocm

import (
	"encoding/binary"
	"io"
)

// location is one packed offset-table word: the payload's first sector
// in the high 24 bits, its whole-sector length in the low 8 bits. The
// zero word marks an empty slot.
type location uint32

func newLocation(sector, count int) location {
	return location(uint32(sector)<<8 | uint32(count)&0xff)
}

func (l location) sector() int { return int(l >> 8) }
func (l location) count() int  { return int(l & 0xff) }

// populated reports whether l addresses stored payload. The header owns
// sectors 0 and 1, so no payload can legally start before sector 2.
func (l location) populated() bool { return l.sector() >= headerSectors }

// --------------------------------------------------------------------

// header mirrors the two fixed tables at the start of a region stream:
// 1024 payload locations followed by 1024 modification stamps, both in
// slot order.
type header struct {
	locs   [NumSlots]location
	stamps [NumSlots]int32
}

// readHeader decodes both header sectors from the start of src. It
// fails with ErrBadHeader when the stream cannot yield the full header
// region; consistency of the decoded fields is left to the caller.
func readHeader(src io.ReaderAt) (*header, error) {
	buf := fetchBuffer(headerSize)
	defer releaseBuffer(buf)

	if _, err := src.ReadAt(buf, 0); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrBadHeader
		}
		return nil, err
	}

	h := new(header)
	for i := 0; i < NumSlots; i++ {
		h.locs[i] = location(binary.BigEndian.Uint32(buf[i*4:]))
		h.stamps[i] = int32(binary.BigEndian.Uint32(buf[SectorSize+i*4:]))
	}
	return h, nil
}

// appendTo appends the binary encoding of both header sectors to dst.
// The encoding is always exactly two sectors long.
func (h *header) appendTo(dst []byte) []byte {
	var tmp [4]byte
	for i := 0; i < NumSlots; i++ {
		binary.BigEndian.PutUint32(tmp[:], uint32(h.locs[i]))
		dst = append(dst, tmp[:]...)
	}
	for i := 0; i < NumSlots; i++ {
		binary.BigEndian.PutUint32(tmp[:], uint32(h.stamps[i]))
		dst = append(dst, tmp[:]...)
	}
	return dst
}
