package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gbasim/emu"
	"github.com/sarchlab/gbasim/insts"
	"github.com/sarchlab/gbasim/mem"
)

const codeBase = mem.IWRAMStart

var _ = Describe("Emulator", func() {
	var (
		as      *mem.AddressSpace
		e       *emu.Emulator
		decoder *insts.Decoder
	)

	loadARM := func(words ...uint32) {
		for i, w := range words {
			as.Write32(codeBase+uint32(i)*4, w)
		}
	}

	loadThumb := func(addr uint32, halves ...uint16) {
		for i, h := range halves {
			as.Write16(addr+uint32(i)*2, h)
		}
	}

	BeforeEach(func() {
		as = mem.NewAddressSpace(mem.WithLogger(GinkgoLogr))
		e = emu.NewEmulator(
			emu.WithAddressSpace(as),
			emu.WithEntryPoint(codeBase),
			emu.WithLogger(GinkgoLogr),
		)
		decoder = insts.NewDecoder()
	})

	Describe("NewEmulator", func() {
		It("should create a session", func() {
			Expect(e.ID().IsNil()).To(BeFalse())
			Expect(e.Memory()).To(BeIdenticalTo(as))
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase)))
			Expect(e.RegFile().Mode()).To(Equal(emu.ModeUser))
		})

		It("should give each session its own ID", func() {
			Expect(emu.NewEmulator().ID()).NotTo(Equal(e.ID()))
		})

		It("should start at the reset vector by default", func() {
			other := emu.NewEmulator()
			Expect(other.RegFile().PC()).To(BeZero())
			Expect(other.Memory()).NotTo(BeNil())
		})
	})

	Describe("branches", func() {
		It("should branch forward", func() {
			loadARM(0xEA000005)

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Branched).To(BeTrue())
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 20)))
		})

		It("should branch backward", func() {
			e.RegFile().SetPC(100)

			e.Execute(decoder.Decode(0xEAFFFFF6))

			Expect(e.RegFile().PC()).To(Equal(uint32(60)))
		})

		It("should link the next instruction", func() {
			loadARM(0xEB000010)

			e.Step()

			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 64)))
			Expect(e.RegFile().Read(emu.RegLR)).To(Equal(uint32(codeBase + 4)))
		})

		It("should advance past a branch whose condition fails", func() {
			loadARM(0x0A000005) // BEQ with Z clear

			result := e.Step()

			Expect(result.Skipped).To(BeTrue())
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 4)))
			Expect(e.InstructionCount()).To(Equal(uint64(1)))
		})
	})

	Describe("branch and exchange", func() {
		BeforeEach(func() {
			e.RegFile().PSTATE.C = true // HI passes
		})

		It("should select the instruction set from bit 0 of the target", func() {
			e.RegFile().Write(9, 0xBEEFBEEF)
			result := e.Execute(decoder.Decode(0x812FFF19))

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(e.RegFile().PC()).To(Equal(uint32(0xBEEFBEEF)))
			Expect(e.RegFile().Thumb()).To(BeTrue())

			e.RegFile().Write(6, 0xABCDE)
			e.Execute(decoder.Decode(0x812FFF16))

			Expect(e.RegFile().PC()).To(Equal(uint32(0xABCDE)))
			Expect(e.RegFile().Thumb()).To(BeFalse())
		})

		It("should reject R15 without moving the PC", func() {
			e.RegFile().SetPC(0xABCDE)

			result := e.Execute(decoder.Decode(0x812FFF1F))

			Expect(result.Err).To(MatchError(emu.ErrInvalidExchange))
			Expect(e.RegFile().PC()).To(Equal(uint32(0xABCDE)))
			Expect(e.RegFile().Mode()).To(Equal(emu.ModeUndefined))
			Expect(e.RegFile().Thumb()).To(BeFalse())
		})

		It("should not exchange when the condition fails", func() {
			e.RegFile().PSTATE.C = false
			e.RegFile().Write(9, 0xBEEFBEEF)
			loadARM(0x812FFF19)

			result := e.Step()

			Expect(result.Skipped).To(BeTrue())
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 4)))
			Expect(e.RegFile().Thumb()).To(BeFalse())
		})
	})

	Describe("multiply", func() {
		It("should run MUL and MLA", func() {
			e.RegFile().PSTATE.Z = true
			e.RegFile().Write(7, 7)
			e.RegFile().Write(2, 2)
			loadARM(0x00030297, 0x00242297)

			result := e.Step()
			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Multiplier).To(Equal(uint32(2)))
			Expect(e.RegFile().Read(3)).To(Equal(uint32(14)))

			e.Step()
			Expect(e.RegFile().Read(4)).To(Equal(uint32(16)))
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 8)))
		})

		It("should run UMULL", func() {
			e.RegFile().Write(3, 0x80000000)
			e.RegFile().Write(4, 4)
			loadARM(0xE0821493)

			e.Step()

			Expect(e.RegFile().Read(2)).To(Equal(uint32(2)))
			Expect(e.RegFile().Read(1)).To(BeZero())
		})
	})

	Describe("unimplemented formats", func() {
		It("should fault without touching state", func() {
			loadARM(0xE0821003) // ADD r1, r2, r3
			e.RegFile().Write(2, 5)
			e.RegFile().Write(3, 6)

			result := e.Step()

			Expect(result.Err).To(MatchError(emu.ErrUnimplemented))
			Expect(result.Inst.Format).To(Equal(insts.FormatDataProcessing))
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase)))
			Expect(e.RegFile().Read(1)).To(BeZero())
		})

		It("should be idempotent", func() {
			inst := decoder.Decode(0xE5912000) // LDR r2, [r1]
			regs := e.RegFile().R
			flags := e.RegFile().PSTATE

			first := e.Execute(inst)
			second := e.Execute(inst)

			Expect(first.Err).To(MatchError(emu.ErrUnimplemented))
			Expect(second.Err).To(MatchError(emu.ErrUnimplemented))
			Expect(e.RegFile().R).To(Equal(regs))
			Expect(e.RegFile().PSTATE).To(Equal(flags))
			Expect(e.RegFile().Mode()).To(Equal(emu.ModeUser))
		})

		It("should resume after SkipFault", func() {
			loadARM(0xE0821003)

			e.SkipFault(e.Step())

			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 4)))
		})
	})

	Describe("THUMB", func() {
		BeforeEach(func() {
			e.RegFile().Write(1, codeBase+0x101)
			loadARM(0xE12FFF11) // BX r1
			Expect(e.Step().Err).NotTo(HaveOccurred())
			Expect(e.RegFile().Thumb()).To(BeTrue())
		})

		It("should run a long branch with link", func() {
			loadThumb(codeBase+0x100, 0xF000, 0xF802)

			e.Step()
			Expect(e.RegFile().Read(emu.RegLR)).To(Equal(uint32(codeBase + 0x100)))
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 0x102)))

			result := e.Step()
			Expect(result.Branched).To(BeTrue())
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 0x104)))
			Expect(e.RegFile().Read(emu.RegLR)).To(Equal(uint32(codeBase + 0x105)))
		})

		It("should skip a conditional branch that fails", func() {
			loadThumb(codeBase+0x100, 0xD0FE) // BEQ

			result := e.Step()

			Expect(result.Skipped).To(BeTrue())
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 0x102)))
		})

		It("should take an unconditional branch", func() {
			loadThumb(codeBase+0x100, 0xE7FE) // B -4

			e.Step()

			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 0xFC)))
		})

		It("should return to ARM with BX lr", func() {
			e.RegFile().Write(emu.RegLR, codeBase+0x200)
			loadThumb(codeBase+0x100, 0x4770)

			e.Step()

			Expect(e.RegFile().Thumb()).To(BeFalse())
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 0x200)))
		})

		It("should advance by two after a fault", func() {
			loadThumb(codeBase+0x100, 0x2001) // MOV r0, #1

			result := e.Step()
			Expect(result.Err).To(MatchError(emu.ErrUnimplemented))

			e.SkipFault(result)
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 0x102)))
		})
	})

	Describe("Run", func() {
		It("should stop at the instruction limit and skip faults", func() {
			e = emu.NewEmulator(
				emu.WithAddressSpace(as),
				emu.WithEntryPoint(codeBase),
				emu.WithMaxInstructions(3),
				emu.WithLogger(GinkgoLogr),
			)
			loadARM(0xE0821003, 0xE0821003, 0xE0821003)

			err := e.Run()

			Expect(err).To(MatchError(emu.ErrMaxInstructions))
			Expect(e.InstructionCount()).To(Equal(uint64(3)))
			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase + 12)))
		})
	})

	Describe("Reset", func() {
		It("should return to the entry point and keep memory", func() {
			loadARM(0xEA000005)
			e.Step()

			e.Reset()

			Expect(e.RegFile().PC()).To(Equal(uint32(codeBase)))
			Expect(e.InstructionCount()).To(BeZero())
			Expect(as.Read32(codeBase)).To(Equal(uint32(0xEA000005)))
		})
	})
})
