package blocm_test

import (
	"encoding/binary"
	"time"

	"github.com/fooblah18/blocm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Region", func() {
	var subject *blocm.Region

	BeforeEach(func() {
		subject = blocm.NewRegion(nil, nil)
	})

	It("should get, set and remove chunks", func() {
		p := blocm.Pos{X: 4, Y: 21}
		Expect(subject.Get(p)).To(BeNil())
		Expect(subject.Populated(p)).To(BeFalse())
		Expect(subject.Len()).To(Equal(0))

		Expect(subject.Set(p, []byte("first"))).To(Succeed())
		Expect(subject.Get(p)).To(Equal([]byte("first")))
		Expect(subject.Populated(p)).To(BeTrue())
		Expect(subject.Len()).To(Equal(1))

		Expect(subject.Set(p, []byte("second"))).To(Succeed())
		Expect(subject.Get(p)).To(Equal([]byte("second")))
		Expect(subject.Len()).To(Equal(1))

		Expect(subject.Remove(p)).To(Succeed())
		Expect(subject.Get(p)).To(BeNil())
		Expect(subject.Populated(p)).To(BeFalse())
		Expect(subject.Len()).To(Equal(0))

		Expect(subject.Remove(p)).To(Succeed()) // no-op on empty slots
	})

	It("should clear a slot when set to nil", func() {
		p := blocm.Pos{X: 0, Y: 0}
		Expect(subject.Set(p, []byte("transient"))).To(Succeed())
		Expect(subject.Set(p, nil)).To(Succeed())
		Expect(subject.Get(p)).To(BeNil())
		Expect(subject.Len()).To(Equal(0))
	})

	It("should reject positions outside the grid", func() {
		for _, p := range []blocm.Pos{{X: -1, Y: 0}, {X: 32, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 32}} {
			_, err := subject.Get(p)
			Expect(err).To(MatchError(blocm.ErrOutOfRange), "Get %v", p)
			Expect(subject.Set(p, []byte("x"))).To(MatchError(blocm.ErrOutOfRange), "Set %v", p)
			Expect(subject.Remove(p)).To(MatchError(blocm.ErrOutOfRange), "Remove %v", p)
			_, err = subject.Timestamp(p)
			Expect(err).To(MatchError(blocm.ErrOutOfRange), "Timestamp %v", p)
			Expect(subject.SetTimestamp(p, time.Now())).To(MatchError(blocm.ErrOutOfRange), "SetTimestamp %v", p)
			Expect(subject.SlotErr(p)).To(MatchError(blocm.ErrOutOfRange), "SlotErr %v", p)
		}
	})

	It("should iterate populated slots in ascending order", func() {
		for _, i := range []int{900, 3, 512, 44} {
			Expect(subject.Set(at(i), []byte{byte(i)})).To(Succeed())
		}

		var seen []blocm.Pos
		Expect(subject.Each(func(p blocm.Pos, _ blocm.Document) bool {
			seen = append(seen, p)
			return true
		})).To(Succeed())
		Expect(seen).To(Equal([]blocm.Pos{at(3), at(44), at(512), at(900)}))
	})

	It("should stop iterating when fn returns false", func() {
		for i := 0; i < 10; i++ {
			Expect(subject.Set(at(i), []byte{byte(i)})).To(Succeed())
		}

		var seen int
		Expect(subject.Each(func(blocm.Pos, blocm.Document) bool {
			seen++
			return seen < 4
		})).To(Succeed())
		Expect(seen).To(Equal(4))
	})

	It("should track timestamps per slot", func() {
		p := blocm.Pos{X: 9, Y: 3}
		Expect(subject.Timestamp(p)).To(BeTemporally("==", time.Unix(0, 0)))

		stamp := time.Date(2021, 4, 5, 6, 7, 8, 999, time.UTC)
		Expect(subject.SetTimestamp(p, stamp)).To(Succeed())
		Expect(subject.Timestamp(p)).To(BeTemporally("==", stamp.Truncate(time.Second)))
	})

	It("should clear recorded slot failures on Set and Remove", func() {
		raw := make([]byte, 4*blocm.SectorSize)
		binary.BigEndian.PutUint32(raw[0:], 2<<8|1)
		binary.BigEndian.PutUint32(raw[4:], 3<<8|1)
		// both envelopes carry a zero length word, which is invalid

		rg, err := openRegion(raw, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(rg.SlotErr(at(0))).To(HaveOccurred())
		Expect(rg.SlotErr(at(1))).To(HaveOccurred())

		Expect(rg.Set(at(0), []byte("fresh"))).To(Succeed())
		Expect(rg.SlotErr(at(0))).NotTo(HaveOccurred())
		Expect(rg.Get(at(0))).To(Equal([]byte("fresh")))

		Expect(rg.Remove(at(1))).To(Succeed())
		Expect(rg.SlotErr(at(1))).NotTo(HaveOccurred())
	})

	Describe("Dispose", func() {
		It("should release held documents", func() {
			doc := &releasable{}
			Expect(subject.Set(at(77), doc)).To(Succeed())
			Expect(subject.Dispose()).To(Succeed())
			Expect(doc.released).To(BeTrue())
			Expect(subject.Len()).To(Equal(0))
		})

		It("should invalidate every operation", func() {
			Expect(subject.Dispose()).To(Succeed())
			Expect(subject.Dispose()).To(MatchError(blocm.ErrDisposed))

			p := blocm.Pos{X: 1, Y: 1}
			Expect(subject.Populated(p)).To(BeFalse())
			_, err := subject.Get(p)
			Expect(err).To(MatchError(blocm.ErrDisposed))
			Expect(subject.Set(p, []byte("x"))).To(MatchError(blocm.ErrDisposed))
			Expect(subject.Remove(p)).To(MatchError(blocm.ErrDisposed))
			_, err = subject.Timestamp(p)
			Expect(err).To(MatchError(blocm.ErrDisposed))
			Expect(subject.SetTimestamp(p, time.Now())).To(MatchError(blocm.ErrDisposed))
			Expect(subject.SlotErr(p)).To(MatchError(blocm.ErrDisposed))
			Expect(subject.Each(func(blocm.Pos, blocm.Document) bool { return true })).To(MatchError(blocm.ErrDisposed))
		})
	})
})
