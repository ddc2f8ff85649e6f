package blocm

import (
	"errors"
	"io"
	"sync"
)

// OpenRegion parses a region stream and decodes every stored chunk
// through codec, returning the populated in-memory region. A nil codec
// defaults to RawBytes, a nil o to the default options.
//
// The header tables are read first; a short header fails the open with
// ErrBadHeader. Each populated slot's envelope is then extracted
// sequentially before decoding fans out across o.Workers goroutines.
// Every worker owns a fixed contiguous slot range and writes results
// only at its own indices, so chunks land at their own slots regardless
// of completion order.
//
// Failures below the header are confined to their slot: a chunk with a
// corrupt envelope or one that fails to decode reads as empty and
// records its error for Region.SlotErr, while sibling chunks still
// load. Stream errors other than structural truncation abort the open.
func OpenRegion(src io.ReaderAt, codec Codec, o *Options) (*Region, error) {
	h, err := readHeader(src)
	if err != nil {
		return nil, err
	}
	if codec == nil {
		codec = RawBytes
	}

	rg := &Region{codec: codec, o: o.norm()}
	rg.stamps = h.stamps

	// Extract every stored envelope up front; the workers below never
	// touch the stream.
	raws := make([][]byte, NumSlots)
	kinds := make([]Compression, NumSlots)
	slotErrs := make([]error, NumSlots)

	for i := 0; i < NumSlots; i++ {
		if !h.locs[i].populated() {
			continue
		}
		kind, raw, err := readEnvelope(src, byteOffset(h.locs[i].sector()))
		if err != nil {
			if !recoverable(err) {
				return nil, err
			}
			slotErrs[i] = err
			continue
		}
		if envelopePrefix+len(raw) > h.locs[i].count()*SectorSize {
			releaseBuffer(raw)
			slotErrs[i] = errEnvelope
			continue
		}
		raws[i], kinds[i] = raw, kind
	}

	// Static fan-out: worker w decodes the slot range
	// [w*stride, (w+1)*stride). Ranges are disjoint, so the result
	// arrays need no locking.
	stride := NumSlots / rg.o.Workers

	var wg sync.WaitGroup
	wg.Add(rg.o.Workers)
	for w := 0; w < rg.o.Workers; w++ {
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				if raws[i] == nil {
					continue
				}
				doc, err := codec.Decode(raws[i], kinds[i])
				releaseBuffer(raws[i])
				if err != nil {
					slotErrs[i] = err
					continue
				}
				rg.docs[i] = doc
			}
		}(w*stride, (w+1)*stride)
	}
	wg.Wait()

	for i, err := range slotErrs {
		if err != nil {
			rg.fail(i, err)
		} else if rg.docs[i] != nil {
			rg.n++
		}
	}
	return rg, nil
}

// recoverable reports whether an extraction error is confined to its
// slot. A corrupt length word, or an offset running past the end of the
// stream, damages one chunk only; any other stream error is fatal.
func recoverable(err error) bool {
	return err == errEnvelope || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// --------------------------------------------------------------------

var bufPool sync.Pool

func fetchBuffer(sz int) []byte {
	if v := bufPool.Get(); v != nil {
		if p := v.([]byte); sz <= cap(p) {
			return p[:sz]
		}
	}
	return make([]byte, sz)
}

func releaseBuffer(p []byte) {
	if cap(p) != 0 {
		bufPool.Put(p)
	}
}
