package emu_test

import (
	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gbasim/emu"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		regFile.SetLogger(GinkgoLogr)
	})

	It("should start in User mode executing ARM code", func() {
		Expect(regFile.Mode()).To(Equal(emu.ModeUser))
		Expect(regFile.InstructionSet()).To(Equal(emu.StateARM))
		Expect(regFile.Thumb()).To(BeFalse())
	})

	It("should read back written registers", func() {
		for i := uint8(0); i < 16; i++ {
			regFile.Write(i, uint32(i)*0x11111111)
		}
		for i := uint8(0); i < 16; i++ {
			Expect(regFile.Read(i)).To(Equal(uint32(i) * 0x11111111))
		}
		Expect(regFile.PC()).To(Equal(uint32(0xFFFFFFFF)))
	})

	Describe("flags", func() {
		DescribeTable("set and read",
			func(f emu.Flag) {
				regFile.SetFlag(f, true)
				Expect(regFile.Flag(f)).To(BeTrue())

				regFile.SetFlag(f, false)
				Expect(regFile.Flag(f)).To(BeFalse())
			},
			Entry("N", emu.FlagN),
			Entry("Z", emu.FlagZ),
			Entry("C", emu.FlagC),
			Entry("V", emu.FlagV),
		)

		It("should ignore an unrecognized flag", func() {
			var lines []string
			regFile.SetLogger(funcr.New(func(prefix, args string) {
				lines = append(lines, args)
			}, funcr.Options{}))
			regFile.PSTATE = emu.PSTATE{N: true, C: true}

			regFile.SetFlag(emu.Flag(9), true)

			Expect(regFile.PSTATE).To(Equal(emu.PSTATE{N: true, C: true}))
			Expect(lines).To(HaveLen(1))
			Expect(lines[0]).To(ContainSubstring("write to unrecognized flag ignored"))
			Expect(lines[0]).To(ContainSubstring("Flag(9)"))

			Expect(regFile.Flag(emu.Flag(9))).To(BeFalse())
			Expect(lines).To(HaveLen(2))
			Expect(lines[1]).To(ContainSubstring("read of unrecognized flag"))
		})

		It("should reflect the flags in CPSR", func() {
			regFile.PSTATE = emu.PSTATE{N: true, V: true}
			regFile.SetInstructionSet(emu.StateThumb)

			Expect(regFile.CPSR()).To(Equal(uint32(0x90000030)))
		})
	})

	Describe("mode banking", func() {
		It("should preserve each mode's SP, LR and flags", func() {
			regFile.Write(emu.RegSP, 0x03007F00)
			regFile.Write(emu.RegLR, 0x08000100)
			regFile.PSTATE.Z = true
			regFile.Write(0, 42)

			regFile.SwitchMode(emu.ModeIRQ)
			Expect(regFile.Read(emu.RegSP)).To(BeZero())
			Expect(regFile.PSTATE).To(Equal(emu.PSTATE{}))
			Expect(regFile.Read(0)).To(Equal(uint32(42)))

			regFile.Write(emu.RegSP, 0x03007FA0)
			regFile.Write(emu.RegLR, 0x08000200)
			regFile.PSTATE.N = true

			regFile.SwitchMode(emu.ModeUser)
			Expect(regFile.Read(emu.RegSP)).To(Equal(uint32(0x03007F00)))
			Expect(regFile.Read(emu.RegLR)).To(Equal(uint32(0x08000100)))
			Expect(regFile.PSTATE).To(Equal(emu.PSTATE{Z: true}))

			Expect(regFile.BankedSP(emu.ModeIRQ)).To(Equal(uint32(0x03007FA0)))
			Expect(regFile.BankedLR(emu.ModeIRQ)).To(Equal(uint32(0x08000200)))
			Expect(regFile.BankedSP(emu.ModeUser)).To(Equal(uint32(0x03007F00)))
		})

		It("should enter Undefined for an invalid mode", func() {
			regFile.Write(3, 7)

			regFile.SwitchMode(emu.Mode(42))

			Expect(regFile.Mode()).To(Equal(emu.ModeUndefined))
			Expect(regFile.Read(3)).To(Equal(uint32(7)))
		})

		DescribeTable("mode encodings",
			func(bits uint32, expected emu.Mode, ok bool) {
				m, valid := emu.ModeFromEncoding(bits)
				Expect(valid).To(Equal(ok))
				Expect(m).To(Equal(expected))
				if ok {
					Expect(m.Encoding()).To(Equal(bits))
				}
			},
			Entry("usr", uint32(0x10), emu.ModeUser, true),
			Entry("fiq", uint32(0x11), emu.ModeFIQ, true),
			Entry("irq", uint32(0x12), emu.ModeIRQ, true),
			Entry("svc", uint32(0x13), emu.ModeSupervisor, true),
			Entry("abt", uint32(0x17), emu.ModeAbort, true),
			Entry("und", uint32(0x1B), emu.ModeUndefined, true),
			Entry("sys is not banked here", uint32(0x1F), emu.ModeUndefined, false),
			Entry("reserved", uint32(0x05), emu.ModeUndefined, false),
		)

		It("should switch by encoding", func() {
			regFile.SwitchModeEncoding(0x13)
			Expect(regFile.Mode()).To(Equal(emu.ModeSupervisor))
			Expect(regFile.CPSR() & 0x1F).To(Equal(uint32(0x13)))

			regFile.SwitchModeEncoding(0x00)
			Expect(regFile.Mode()).To(Equal(emu.ModeUndefined))
		})
	})

	It("should reset to the zero state", func() {
		regFile.Write(5, 5)
		regFile.SwitchMode(emu.ModeFIQ)
		regFile.SetInstructionSet(emu.StateThumb)

		regFile.Reset()

		Expect(regFile.Read(5)).To(BeZero())
		Expect(regFile.Mode()).To(Equal(emu.ModeUser))
		Expect(regFile.Thumb()).To(BeFalse())
		Expect(regFile.BankedSP(emu.ModeFIQ)).To(BeZero())
	})
})
