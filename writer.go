package blocm

import (
	"fmt"
	"io"
)

// zeroSector supplies the padding between an envelope's last byte and
// its sector boundary.
var zeroSector [SectorSize]byte

// WriteTo serializes the region to w in the container's byte-exact
// layout: both header sectors, then every populated chunk's envelope
// padded with zeros to a whole number of sectors. It implements
// io.WriterTo.
//
// The layout is always derived fresh from the current documents. Every
// populated chunk is encoded through the codec, its envelope rounded up
// to whole sectors, and offsets packed contiguously from sector 2 in
// ascending slot order; offsets recorded by a previous open are never
// reused, which is what keeps inserts, removals and resizes safe. A
// zero-byte encoding still occupies its five-byte envelope and one
// sector. Timestamps are written through unchanged.
//
// A chunk that fails to encode, or whose envelope would span more than
// 255 sectors (ErrTooLarge), fails the write before any byte is
// emitted. Errors from w abort the write immediately and may leave a
// partial stream behind; callers needing atomicity should write to a
// temporary stream and swap.
func (r *Region) WriteTo(w io.Writer) (int64, error) {
	if r.disposed {
		return 0, ErrDisposed
	}

	// Plan: encode every document and assign its sector range.
	encs := make([][]byte, NumSlots)
	h := &header{stamps: r.stamps}
	est := headerSize
	cursor := headerSectors

	for i := range r.docs[:] {
		if r.docs[i] == nil {
			continue
		}
		enc, err := r.codec.Encode(r.docs[i], r.o.Compression)
		if err != nil {
			return 0, &SlotError{Pos: posAt(i), Err: err}
		}
		cnt := sectorsNeeded(envelopePrefix + len(enc))
		if cnt > maxSectors {
			return 0, fmt.Errorf("blocm: slot %v spans %d sectors: %w", posAt(i), cnt, ErrTooLarge)
		}
		h.locs[i] = newLocation(cursor, cnt)
		cursor += cnt
		encs[i] = enc

		if sz := envelopePrefix + r.codec.SizeOf(r.docs[i]); sz > est {
			est = sz
		}
	}

	// Emit: header first, then each envelope zero-padded to the end of
	// its sector range.
	var written int64

	buf := make([]byte, 0, est)
	buf = h.appendTo(buf)
	n, err := w.Write(buf)
	written += int64(n)
	if err != nil {
		return written, err
	}

	for i := range r.docs[:] {
		if r.docs[i] == nil {
			continue
		}
		buf = appendEnvelope(buf[:0], r.o.Compression, encs[i])
		if m := len(buf) % SectorSize; m != 0 {
			buf = append(buf, zeroSector[:SectorSize-m]...)
		}
		n, err := w.Write(buf)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}

	return written, nil
}
