package insts_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gbasim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("ARM format classification", func() {
		// One representative encoding per format. See the ARM7TDMI data
		// sheet instruction set summary for the fixed bits of each row.
		words := map[insts.Format]uint32{
			insts.FormatDataProcessing:         0b00000000000000000000000000000000,
			insts.FormatMultiply:               0b00000000000000000000000010010000,
			insts.FormatMultiplyLong:           0b00000000100000000000000010010000,
			insts.FormatSingleDataSwap:         0b00000001000000000000000010010000,
			insts.FormatBranchExchange:         0b00000001001011111111111100010000,
			insts.FormatHalfwordTransferReg:    0b00000000000000000000000010110000,
			insts.FormatHalfwordTransferImm:    0b00000000010000000000000010010000,
			insts.FormatSingleDataTransfer:     0b00000100000000000000000000000000,
			insts.FormatUndefined:              0b00000110000000000000000000010000,
			insts.FormatBlockDataTransfer:      0b00001000000000000000000000000000,
			insts.FormatBranch:                 0b00001010000000000000000000000000,
			insts.FormatCoprocDataTransfer:     0b00001100000000000000000000000000,
			insts.FormatCoprocDataOperation:    0b00001110000000000000000000000000,
			insts.FormatCoprocRegisterTransfer: 0b00001110000000000000000000010000,
			insts.FormatSoftwareInterrupt:      0b00001111000000000000000000000000,
		}

		It("should treat the all-zero word as data processing", func() {
			inst := decoder.Decode(0)
			Expect(inst.Format).To(Equal(insts.FormatDataProcessing))
			Expect(inst.Cond).To(Equal(insts.CondEQ))
		})

		It("should classify every format", func() {
			for format, word := range words {
				Expect(insts.ClassifyARM(word)).To(Equal(format), "word=0x%08X", word)
			}
		})

		It("should classify the same regardless of order", func() {
			formats := make([]insts.Format, 0, len(words))
			for f := range words {
				formats = append(formats, f)
			}

			r := rand.New(rand.NewSource(42))
			for round := 0; round < 5; round++ {
				r.Shuffle(len(formats), func(i, j int) {
					formats[i], formats[j] = formats[j], formats[i]
				})
				for _, f := range formats {
					Expect(decoder.Decode(words[f]).Format).To(Equal(f))
				}
			}
		})

		It("should not confuse neighbouring formats", func() {
			Expect(insts.ClassifyARM(words[insts.FormatHalfwordTransferReg])).
				NotTo(Equal(insts.FormatBranchExchange))
			Expect(insts.ClassifyARM(words[insts.FormatSingleDataTransfer])).
				NotTo(Equal(insts.FormatMultiply))
			Expect(insts.ClassifyARM(words[insts.FormatBlockDataTransfer])).
				NotTo(Equal(insts.FormatUndefined))
			Expect(insts.ClassifyARM(words[insts.FormatCoprocDataTransfer])).
				NotTo(Equal(insts.FormatDataProcessing))
			Expect(insts.ClassifyARM(words[insts.FormatBranch])).
				NotTo(Equal(insts.FormatBranchExchange))
		})

		It("should ignore the condition field", func() {
			for format, word := range words {
				for cond := uint32(0); cond < 16; cond++ {
					Expect(insts.ClassifyARM(cond<<28 | word)).To(Equal(format))
				}
			}
		})
	})

	Describe("Branch", func() {
		// B +20 -> 0xEA000005
		It("should decode a forward branch", func() {
			inst := decoder.Decode(0xEA000005)

			Expect(inst.Op).To(Equal(insts.OpB))
			Expect(inst.Format).To(Equal(insts.FormatBranch))
			Expect(inst.Cond).To(Equal(insts.CondAL))
			Expect(inst.Link).To(BeFalse())
			Expect(inst.BranchOffset).To(Equal(int32(20)))
		})

		// B -40 -> 0xEAFFFFF6
		It("should sign-extend a backward branch", func() {
			inst := decoder.Decode(0xEAFFFFF6)

			Expect(inst.Op).To(Equal(insts.OpB))
			Expect(inst.BranchOffset).To(Equal(int32(-40)))
		})

		// BL +64 -> 0xEB000010
		It("should decode BL", func() {
			inst := decoder.Decode(0xEB000010)

			Expect(inst.Op).To(Equal(insts.OpBL))
			Expect(inst.Link).To(BeTrue())
			Expect(inst.BranchOffset).To(Equal(int32(64)))
		})

		// BNE with the most negative offset -> 0x1A800000
		It("should decode the most negative offset", func() {
			inst := decoder.Decode(0x1A800000)

			Expect(inst.Cond).To(Equal(insts.CondNE))
			Expect(inst.BranchOffset).To(Equal(int32(-(1 << 25))))
		})
	})

	Describe("Branch and exchange", func() {
		// BXHI r9 -> 0x812FFF19
		It("should decode BXHI r9", func() {
			inst := decoder.Decode(0x812FFF19)

			Expect(inst.Op).To(Equal(insts.OpBX))
			Expect(inst.Format).To(Equal(insts.FormatBranchExchange))
			Expect(inst.Cond).To(Equal(insts.CondHI))
			Expect(inst.Rn).To(Equal(uint8(9)))
		})

		It("should keep register 15 as the operand", func() {
			inst := decoder.Decode(0x812FFF1F)
			Expect(inst.Rn).To(Equal(uint8(15)))
		})
	})

	Describe("Multiply", func() {
		// MULEQ r3, r7, r2 -> 0x00030297
		It("should decode MUL", func() {
			inst := decoder.Decode(0x00030297)

			Expect(inst.Op).To(Equal(insts.OpMUL))
			Expect(inst.Format).To(Equal(insts.FormatMultiply))
			Expect(inst.Rd).To(Equal(uint8(3)))
			Expect(inst.Rm).To(Equal(uint8(7)))
			Expect(inst.Rs).To(Equal(uint8(2)))
			Expect(inst.Accumulate).To(BeFalse())
			Expect(inst.SetFlags).To(BeFalse())
		})

		// MLAEQ r4, r7, r2, r2 -> 0x00242297
		It("should decode MLA", func() {
			inst := decoder.Decode(0x00242297)

			Expect(inst.Op).To(Equal(insts.OpMLA))
			Expect(inst.Rd).To(Equal(uint8(4)))
			Expect(inst.Rn).To(Equal(uint8(2)))
			Expect(inst.Rs).To(Equal(uint8(2)))
			Expect(inst.Rm).To(Equal(uint8(7)))
			Expect(inst.Accumulate).To(BeTrue())
		})

		// MULSEQ r3, r7, r2 -> 0x00130297
		It("should decode the S bit", func() {
			inst := decoder.Decode(0x00130297)
			Expect(inst.SetFlags).To(BeTrue())
		})
	})

	Describe("Multiply long", func() {
		// UMULL r1, r2, r3, r4 -> 0xE0821493
		It("should decode UMULL", func() {
			inst := decoder.Decode(0xE0821493)

			Expect(inst.Op).To(Equal(insts.OpUMULL))
			Expect(inst.Format).To(Equal(insts.FormatMultiplyLong))
			Expect(inst.RdLo).To(Equal(uint8(1)))
			Expect(inst.RdHi).To(Equal(uint8(2)))
			Expect(inst.Rm).To(Equal(uint8(3)))
			Expect(inst.Rs).To(Equal(uint8(4)))
			Expect(inst.Signed).To(BeFalse())
		})

		// SMLALS r1, r2, r3, r4 -> 0xE0F21493
		It("should decode SMLALS", func() {
			inst := decoder.Decode(0xE0F21493)

			Expect(inst.Op).To(Equal(insts.OpSMLAL))
			Expect(inst.Signed).To(BeTrue())
			Expect(inst.Accumulate).To(BeTrue())
			Expect(inst.SetFlags).To(BeTrue())
		})
	})

	Describe("Unhandled formats", func() {
		It("should decode with OpUnknown and generic fields", func() {
			// ADD r1, r2, r3 -> 0xE0821003
			inst := decoder.Decode(0xE0821003)

			Expect(inst.Format).To(Equal(insts.FormatDataProcessing))
			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Rn).To(Equal(uint8(2)))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rm).To(Equal(uint8(3)))
		})

		It("should mark SWI", func() {
			inst := decoder.Decode(0xEF000000)
			Expect(inst.Op).To(Equal(insts.OpSWI))
		})
	})

	Describe("DecodeInto", func() {
		It("should overwrite stale fields", func() {
			inst := decoder.Decode(0xEB000010)
			decoder.DecodeInto(0x00030297, inst)

			Expect(inst.Op).To(Equal(insts.OpMUL))
			Expect(inst.Link).To(BeFalse())
			Expect(inst.BranchOffset).To(BeZero())
		})
	})
})
