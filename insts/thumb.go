package insts

// DecodeThumb decodes a 16-bit THUMB halfword.
func (d *Decoder) DecodeThumb(half uint16) *Instruction {
	inst := &Instruction{}
	d.DecodeThumbInto(half, inst)
	return inst
}

// DecodeThumbInto decodes a 16-bit THUMB halfword into inst, overwriting
// every field.
func (d *Decoder) DecodeThumbInto(half uint16, inst *Instruction) {
	word := uint32(half)
	*inst = Instruction{
		Raw:    word,
		Thumb:  true,
		Format: ClassifyThumb(half),
		Cond:   CondAL,
	}

	switch inst.Format {
	case FormatThumbHiRegister:
		d.decodeThumbHiRegister(word, inst)
	case FormatThumbCondBranch:
		inst.Op = OpBCond
		inst.Cond = Cond(ExtractBits(word, 11, 8))
		inst.BranchOffset = SignExtend(ExtractBits(word, 7, 0), 8) * 2
	case FormatThumbBranch:
		inst.Op = OpB
		inst.BranchOffset = SignExtend(ExtractBits(word, 10, 0), 11) * 2
	case FormatThumbLongBranch:
		d.decodeThumbLongBranch(word, inst)
	case FormatThumbSoftwareInterrupt:
		inst.Op = OpSWI
	default:
		// Low register fields shared by most THUMB formats.
		inst.Rd = uint8(ExtractBits(word, 2, 0))
		inst.Rn = uint8(ExtractBits(word, 5, 3))
	}
}

// decodeThumbHiRegister decodes format 5.
// Format: 010001 | Op | H1 | H2 | Rs/Hs | Rd/Hd
func (d *Decoder) decodeThumbHiRegister(word uint32, inst *Instruction) {
	h1 := ExtractBits(word, 7, 7)
	h2 := ExtractBits(word, 6, 6)
	inst.Rd = uint8(h1<<3 | ExtractBits(word, 2, 0))
	inst.Rs = uint8(h2<<3 | ExtractBits(word, 5, 3))

	if ExtractBits(word, 9, 8) == 0b11 {
		inst.Op = OpBX
		inst.Rn = inst.Rs
		return
	}
	inst.Op = OpHiReg
}

// decodeThumbLongBranch decodes one half of format 19.
// Format: 1111 | H | offset11
func (d *Decoder) decodeThumbLongBranch(word uint32, inst *Instruction) {
	offset := ExtractBits(word, 10, 0)
	inst.Link = true

	if Bit(word, 11) {
		inst.Op = OpBLLow
		inst.BranchOffset = int32(offset << 1)
		return
	}
	inst.Op = OpBLHigh
	inst.BranchOffset = SignExtend(offset, 11) << 12
}
