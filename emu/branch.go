package emu

// BranchUnit implements ARM7TDMI branch operations. Branch targets are
// relative to the address of the executing instruction, which R15 holds.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// B performs a PC-relative branch. The offset is in bytes.
func (b *BranchUnit) B(offset int32) {
	b.regFile.SetPC(uint32(int32(b.regFile.PC()) + offset))
}

// BL saves the return point (the instruction after this one, width bytes
// ahead) into the link register, then branches to PC + offset.
func (b *BranchUnit) BL(offset int32, width uint32) {
	pc := b.regFile.PC()
	b.regFile.Write(RegLR, pc+width)
	b.regFile.SetPC(uint32(int32(pc) + offset))
}

// BX branches to the address held in register rn and selects the
// instruction set from bit 0 of that address: odd selects THUMB, even
// selects ARM. Naming R15 is invalid: the processor enters Undefined mode,
// the PC is left unchanged and ErrInvalidExchange is returned.
func (b *BranchUnit) BX(rn uint8) error {
	if rn == RegPC {
		b.regFile.SwitchMode(ModeUndefined)
		return ErrInvalidExchange
	}

	target := b.regFile.Read(rn)
	b.regFile.SetPC(target)

	if target&1 == 1 {
		b.regFile.SetInstructionSet(StateThumb)
	} else {
		b.regFile.SetInstructionSet(StateARM)
	}
	return nil
}

// BLHigh executes the first half of a THUMB long branch with link:
// LR = PC + offset.
func (b *BranchUnit) BLHigh(offset int32) {
	b.regFile.Write(RegLR, uint32(int32(b.regFile.PC())+offset))
}

// BLLow executes the second half of a THUMB long branch with link. It
// branches to LR + offset and leaves the return point, with bit 0 set to
// mark THUMB code, in LR.
func (b *BranchUnit) BLLow(offset int32) {
	next := b.regFile.PC() + 2
	b.regFile.SetPC(uint32(int32(b.regFile.Read(RegLR)) + offset))
	b.regFile.Write(RegLR, next|1)
}
