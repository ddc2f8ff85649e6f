package blocm

import (
	"fmt"
	"time"
)

// Region is the in-memory form of one region stream: a 32x32 grid of
// optional chunk documents and their modification stamps. Mutations
// touch memory only; nothing reaches storage until WriteTo.
//
// A Region is not safe for concurrent use.
type Region struct {
	codec Codec
	o     *Options

	docs   [NumSlots]Document
	stamps [NumSlots]int32

	errs map[int]*SlotError // per-slot decode failures recorded by OpenRegion

	n        int // populated slots
	disposed bool
}

// NewRegion returns an empty region that encodes chunks through codec.
// A nil codec defaults to RawBytes, a nil o to the default options.
func NewRegion(codec Codec, o *Options) *Region {
	if codec == nil {
		codec = RawBytes
	}
	return &Region{codec: codec, o: o.norm()}
}

// Get returns the document stored at p, or nil when the slot is empty.
func (r *Region) Get(p Pos) (Document, error) {
	if err := r.check(p); err != nil {
		return nil, err
	}
	return r.docs[p.idx()], nil
}

// Populated reports whether a document is stored at p. It returns
// false for positions outside the grid and after Dispose.
func (r *Region) Populated(p Pos) bool {
	return !r.disposed && p.valid() && r.docs[p.idx()] != nil
}

// Set stores doc at p, replacing any previous document. Storing a nil
// document clears the slot. The stored layout is recomputed on the next
// WriteTo; Set has no offset or size side effects.
func (r *Region) Set(p Pos, doc Document) error {
	if err := r.check(p); err != nil {
		return err
	}

	i := p.idx()
	if doc == nil {
		r.clear(i)
		return nil
	}
	if r.docs[i] == nil {
		r.n++
	}
	r.docs[i] = doc
	delete(r.errs, i)
	return nil
}

// Remove clears the slot at p. Removing an empty slot is a no-op.
func (r *Region) Remove(p Pos) error {
	if err := r.check(p); err != nil {
		return err
	}
	r.clear(p.idx())
	return nil
}

// Timestamp returns the modification stamp recorded for p. Stamps are
// tracked independently of slot contents; empty slots may carry stale
// values.
func (r *Region) Timestamp(p Pos) (time.Time, error) {
	if err := r.check(p); err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(r.stamps[p.idx()]), 0), nil
}

// SetTimestamp records t as the modification stamp for p. The table
// stores whole seconds in 32 bits; anything finer or out of range is
// truncated. Set and Remove do not update stamps - callers wanting
// update-on-write semantics record it themselves.
func (r *Region) SetTimestamp(p Pos, t time.Time) error {
	if err := r.check(p); err != nil {
		return err
	}
	r.stamps[p.idx()] = int32(t.Unix())
	return nil
}

// SlotErr returns the decode failure recorded for p when the region was
// opened, or nil. Slots with a recorded failure read as empty until
// they are Set again.
func (r *Region) SlotErr(p Pos) error {
	if err := r.check(p); err != nil {
		return err
	}
	if e, ok := r.errs[p.idx()]; ok {
		return e
	}
	return nil
}

// Len returns the number of populated slots. A disposed region has
// length 0.
func (r *Region) Len() int { return r.n }

// Each calls fn for every populated slot in ascending slot order until
// fn returns false.
func (r *Region) Each(fn func(Pos, Document) bool) error {
	if r.disposed {
		return ErrDisposed
	}
	for i := range r.docs[:] {
		if r.docs[i] == nil {
			continue
		}
		if !fn(posAt(i), r.docs[i]) {
			return nil
		}
	}
	return nil
}

// Dispose releases every held document, invoking Release on those that
// implement Releaser, and invalidates the region. Any operation after
// Dispose - including a second Dispose - fails with ErrDisposed.
func (r *Region) Dispose() error {
	if r.disposed {
		return ErrDisposed
	}
	for i := range r.docs[:] {
		if rel, ok := r.docs[i].(Releaser); ok {
			rel.Release()
		}
		r.docs[i] = nil
	}
	r.errs = nil
	r.n = 0
	r.disposed = true
	return nil
}

func (r *Region) check(p Pos) error {
	if r.disposed {
		return ErrDisposed
	}
	if !p.valid() {
		return fmt.Errorf("%w: %v", ErrOutOfRange, p)
	}
	return nil
}

func (r *Region) clear(i int) {
	if r.docs[i] != nil {
		r.n--
	}
	r.docs[i] = nil
	delete(r.errs, i)
}

// fail marks slot i as undecodable.
func (r *Region) fail(i int, err error) {
	if r.errs == nil {
		r.errs = make(map[int]*SlotError)
	}
	r.errs[i] = &SlotError{Pos: posAt(i), Err: err}
}
