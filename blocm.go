package blocm

import (
	"errors"
	"fmt"
)

const (
	// GridWidth is the edge length of the region grid. A region stores
	// one optional chunk document per grid position.
	GridWidth = 32

	// NumSlots is the number of chunk slots in a region.
	NumSlots = GridWidth * GridWidth

	// SectorSize is the allocation unit of a region stream. The header
	// occupies the first two sectors, chunk payloads are sector-aligned
	// thereafter.
	SectorSize = 4096

	headerSectors = 2
	headerSize    = headerSectors * SectorSize

	// maxSectors is the largest payload length the 8-bit sector count
	// of an offset word can record.
	maxSectors = 255

	// maxPayload is the largest envelope payload that still fits the
	// sector count, excluding the length and compression prefix.
	maxPayload = maxSectors*SectorSize - envelopePrefix

	defaultWorkers = 4
	maxWorkers     = 64
)

// Errors reported by region operations. Chunk-level decode failures are
// wrapped in a SlotError instead and never abort an open.
var (
	// ErrBadHeader is returned by OpenRegion when the stream is too
	// short to hold the two header sectors.
	ErrBadHeader = errors.New("blocm: malformed region header")

	// ErrTooLarge is returned by WriteTo when a chunk envelope would
	// span more than 255 sectors.
	ErrTooLarge = errors.New("blocm: chunk exceeds maximum sector count")

	// ErrDisposed is returned by every region operation after Dispose.
	ErrDisposed = errors.New("blocm: region was disposed")

	// ErrOutOfRange is returned when a position lies outside the grid.
	ErrOutOfRange = errors.New("blocm: position outside region grid")

	// ErrBadCompression is returned by RawBytes for an unknown
	// compression kind.
	ErrBadCompression = errors.New("blocm: bad compression codec")
)

var errEnvelope = errors.New("blocm: malformed chunk envelope")

// SlotError records a chunk that failed to extract or decode during
// OpenRegion, tagged with its grid position. The affected slot reads as
// empty; sibling slots are unaffected.
type SlotError struct {
	Pos Pos
	Err error
}

func (e *SlotError) Error() string { return fmt.Sprintf("blocm: slot %v: %v", e.Pos, e.Err) }

func (e *SlotError) Unwrap() error { return e.Err }

// --------------------------------------------------------------------

// Pos addresses a chunk slot on the region grid. Both coordinates must
// be in [0, GridWidth).
type Pos struct {
	X, Y int
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

func (p Pos) valid() bool {
	return p.X >= 0 && p.X < GridWidth && p.Y >= 0 && p.Y < GridWidth
}

// idx returns the linear slot index of p.
func (p Pos) idx() int { return p.X + p.Y*GridWidth }

// posAt is the inverse of Pos.idx.
func posAt(i int) Pos { return Pos{X: i % GridWidth, Y: i / GridWidth} }

// --------------------------------------------------------------------

// Compression is the chunk envelope compression kind. The container
// treats it as an opaque tag owned by the Codec; the constants below
// are the kinds understood by RawBytes.
type Compression byte

// Compression kinds supported by RawBytes.
const (
	GzipCompression Compression = iota + 1
	ZlibCompression
	NoCompression
	SnappyCompression
)

func (c Compression) isValid() bool {
	return c >= GzipCompression && c <= SnappyCompression
}

// --------------------------------------------------------------------

// Options configure how regions are decoded and written.
type Options struct {
	// Workers is the number of goroutines decoding chunks during
	// OpenRegion. Values are rounded up to a power of two so that the
	// slot ranges assigned to workers divide evenly.
	// Default: 4.
	Workers int

	// Compression is the envelope kind applied to every chunk by
	// WriteTo.
	// Default: ZlibCompression.
	Compression Compression
}

func (o *Options) norm() *Options {
	var oo Options
	if o != nil {
		oo = *o
	}

	switch {
	case oo.Workers < 1:
		oo.Workers = defaultWorkers
	case oo.Workers > maxWorkers:
		oo.Workers = maxWorkers
	default:
		n := 1
		for n < oo.Workers {
			n <<= 1
		}
		oo.Workers = n
	}
	if !oo.Compression.isValid() {
		oo.Compression = ZlibCompression
	}

	return &oo
}

// --------------------------------------------------------------------

// byteOffset returns the byte position of a sector.
func byteOffset(sector int) int64 { return int64(sector) * SectorSize }

// sectorsNeeded returns the number of whole sectors covering n bytes.
// Any non-empty payload occupies at least one sector.
func sectorsNeeded(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + SectorSize - 1) / SectorSize
}
