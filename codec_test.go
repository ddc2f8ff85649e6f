package blocm_test

import (
	"bytes"

	"github.com/fooblah18/blocm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("RawBytes", func() {
	doc := bytes.Repeat([]byte("squish factor "), 512)

	It("should round-trip through every compression kind", func() {
		for _, c := range []blocm.Compression{
			blocm.GzipCompression,
			blocm.ZlibCompression,
			blocm.NoCompression,
			blocm.SnappyCompression,
		} {
			enc, err := blocm.RawBytes.Encode(doc, c)
			Expect(err).NotTo(HaveOccurred(), "kind %d", c)
			Expect(blocm.RawBytes.Decode(enc, c)).To(Equal(doc), "kind %d", c)
		}
	})

	It("should shrink repetitive payloads", func() {
		for _, c := range []blocm.Compression{
			blocm.GzipCompression,
			blocm.ZlibCompression,
			blocm.SnappyCompression,
		} {
			enc, err := blocm.RawBytes.Encode(doc, c)
			Expect(err).NotTo(HaveOccurred(), "kind %d", c)
			Expect(len(enc)).To(BeNumerically("<", len(doc)), "kind %d", c)
		}
	})

	It("should not retain uncompressed input buffers", func() {
		buf := []byte("volatile bytes")
		dec, err := blocm.RawBytes.Decode(buf, blocm.NoCompression)
		Expect(err).NotTo(HaveOccurred())

		copy(buf, "XXXXXXXX")
		Expect(dec).To(Equal([]byte("volatile bytes")))
	})

	It("should reject unknown compression kinds", func() {
		_, err := blocm.RawBytes.Encode([]byte("x"), blocm.Compression(9))
		Expect(err).To(MatchError(blocm.ErrBadCompression))

		_, err = blocm.RawBytes.Decode([]byte("x"), blocm.Compression(9))
		Expect(err).To(MatchError(blocm.ErrBadCompression))
	})

	It("should only encode byte slices", func() {
		_, err := blocm.RawBytes.Encode(42, blocm.NoCompression)
		Expect(err).To(HaveOccurred())
	})

	It("should estimate sizes for byte slices only", func() {
		Expect(blocm.RawBytes.SizeOf(doc)).To(Equal(len(doc)))
		Expect(blocm.RawBytes.SizeOf(42)).To(Equal(0))
	})
})
