package blocm

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/golang/snappy"
)

// A Document is an opaque tree-structured chunk payload. The container
// stores and returns documents without inspecting them; their byte form
// is produced and consumed by a Codec.
type Document any

// Releaser is implemented by documents that hold external resources.
// Region.Dispose invokes Release on every held document implementing
// it.
type Releaser interface {
	Release()
}

// Codec converts documents to and from their serialized, compressed
// byte form. The compression kind travels with each chunk envelope and
// is handed to the codec unmodified; the container attaches no meaning
// to it.
//
// Implementations must tolerate concurrent Decode calls: OpenRegion
// decodes chunks from multiple goroutines.
type Codec interface {
	// Encode serializes and compresses d.
	Encode(d Document, c Compression) ([]byte, error)

	// Decode decompresses and deserializes p. The slice is a temporary
	// buffer valid only for the duration of the call and must be
	// copied if retained.
	Decode(p []byte, c Compression) (Document, error)

	// SizeOf estimates the encoded byte length of d, or 0 when no
	// cheap estimate exists. It is a planning hint only.
	SizeOf(d Document) int
}

// --------------------------------------------------------------------

// envelopePrefix is the envelope framing overhead: a big-endian uint32
// length counting the compression byte plus payload, followed by the
// compression kind itself.
const envelopePrefix = 5

// appendEnvelope appends the framed payload to dst.
func appendEnvelope(dst []byte, c Compression, payload []byte) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(payload))+1)
	dst = append(dst, tmp[:]...)
	dst = append(dst, byte(c))
	return append(dst, payload...)
}

// readEnvelope extracts the chunk envelope starting at off, returning
// the compression kind and the raw payload in a pooled buffer. The
// caller owns the buffer and must release it.
func readEnvelope(src io.ReaderAt, off int64) (Compression, []byte, error) {
	var pfx [envelopePrefix]byte
	if _, err := src.ReadAt(pfx[:], off); err != nil {
		return 0, nil, err
	}

	n := binary.BigEndian.Uint32(pfx[:4])
	if n == 0 || n-1 > maxPayload {
		return 0, nil, errEnvelope
	}

	payload := fetchBuffer(int(n - 1))
	if _, err := src.ReadAt(payload, off+envelopePrefix); err != nil {
		releaseBuffer(payload)
		return 0, nil, err
	}
	return Compression(pfx[4]), payload, nil
}

// --------------------------------------------------------------------

// RawBytes is a Codec for pre-serialized chunks: every Document is a
// []byte holding the document's uncompressed encoding. It understands
// the container's native envelope kinds - gzip, zlib and uncompressed -
// plus snappy.
var RawBytes Codec = rawBytes{}

type rawBytes struct{}

func (rawBytes) Encode(d Document, c Compression) ([]byte, error) {
	p, ok := d.([]byte)
	if !ok {
		return nil, fmt.Errorf("blocm: RawBytes cannot encode %T", d)
	}

	switch c {
	case GzipCompression:
		return deflate(p, func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) })
	case ZlibCompression:
		return deflate(p, func(w io.Writer) io.WriteCloser { return zlib.NewWriter(w) })
	case NoCompression:
		return p, nil
	case SnappyCompression:
		return snappy.Encode(nil, p), nil
	}
	return nil, ErrBadCompression
}

func (rawBytes) Decode(p []byte, c Compression) (Document, error) {
	switch c {
	case GzipCompression:
		zr, err := gzip.NewReader(bytes.NewReader(p))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case ZlibCompression:
		zr, err := zlib.NewReader(bytes.NewReader(p))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case NoCompression:
		out := make([]byte, len(p))
		copy(out, p)
		return out, nil
	case SnappyCompression:
		return snappy.Decode(nil, p)
	}
	return nil, ErrBadCompression
}

func (rawBytes) SizeOf(d Document) int {
	if p, ok := d.([]byte); ok {
		return len(p)
	}
	return 0
}

func deflate(p []byte, wrap func(io.Writer) io.WriteCloser) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := wrap(buf)
	if _, err := zw.Write(p); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
