// Package insts provides ARM7TDMI instruction definitions and decoding.
package insts

// Op identifies the operation of a decoded instruction for the formats the
// execution units implement. Every other format decodes to OpUnknown.
type Op uint16

// ARM7TDMI operations.
const (
	OpUnknown Op = iota
	OpB
	OpBL
	OpBX
	OpMUL
	OpMLA
	OpUMULL
	OpUMLAL
	OpSMULL
	OpSMLAL
	OpBCond  // THUMB conditional branch
	OpBLHigh // THUMB long branch, first half
	OpBLLow  // THUMB long branch, second half
	OpHiReg  // THUMB hi register ADD/CMP/MOV
	OpSWI
)

// Instruction represents a decoded ARM or THUMB instruction.
type Instruction struct {
	Raw    uint32 // Raw instruction word (THUMB halfwords are zero-extended)
	Thumb  bool   // true if decoded from a 16-bit THUMB halfword
	Format Format // Encoding format
	Op     Op     // Operation code
	Cond   Cond   // Condition field (CondAL for unconditional THUMB formats)

	// Register fields
	Rd   uint8 // Destination register
	Rn   uint8 // First operand / base / branch target register
	Rs   uint8 // Shift or multiplier register
	Rm   uint8 // Second operand register
	RdHi uint8 // High destination of a long multiply
	RdLo uint8 // Low destination of a long multiply

	// Control bits
	SetFlags   bool // S bit
	Accumulate bool // A bit of the multiply formats
	Signed     bool // U bit of the long multiply format
	Link       bool // L bit of the branch format

	// BranchOffset is the signed branch offset in bytes.
	BranchOffset int32
}

// Size returns the width of the instruction in bytes.
func (i *Instruction) Size() uint32 {
	if i.Thumb {
		return 2
	}
	return 4
}

// armKey builds the 12-bit classification key of an ARM word from bits
// [27:20] and [7:4].
func armKey(word uint32) uint32 {
	return ExtractBits(word, 27, 20)<<4 | ExtractBits(word, 7, 4)
}

// thumbKey builds the 10-bit classification key of a THUMB halfword from
// bits [15:6].
func thumbKey(half uint16) uint32 {
	return ExtractBits(uint32(half), 15, 6)
}

var (
	armFormats   [1 << 12]Format
	thumbFormats [1 << 10]Format
)

func init() {
	for key := uint32(0); key < uint32(len(armFormats)); key++ {
		word := (key>>4)<<20 | (key&0xF)<<4
		armFormats[key] = classifyARM(word)
	}
	for key := uint32(0); key < uint32(len(thumbFormats)); key++ {
		thumbFormats[key] = classifyThumb(uint16(key << 6))
	}
}

// classifyARM maps an ARM word to its format. Only bits [27:20] and [7:4]
// are inspected, which lets the result be cached per key.
func classifyARM(word uint32) Format {
	switch {
	case word&0x0FF000F0 == 0x01200010:
		return FormatBranchExchange
	case word&0x0FC000F0 == 0x00000090:
		return FormatMultiply
	case word&0x0F8000F0 == 0x00800090:
		return FormatMultiplyLong
	case word&0x0FB000F0 == 0x01000090:
		return FormatSingleDataSwap
	case word&0x0E400090 == 0x00000090:
		return FormatHalfwordTransferReg
	case word&0x0E400090 == 0x00400090:
		return FormatHalfwordTransferImm
	case word&0x0E000010 == 0x06000010:
		return FormatUndefined
	case word&0x0C000000 == 0x04000000:
		return FormatSingleDataTransfer
	case word&0x0C000000 == 0x00000000:
		return FormatDataProcessing
	case word&0x0E000000 == 0x08000000:
		return FormatBlockDataTransfer
	case word&0x0E000000 == 0x0A000000:
		return FormatBranch
	case word&0x0E000000 == 0x0C000000:
		return FormatCoprocDataTransfer
	case word&0x0F000010 == 0x0E000000:
		return FormatCoprocDataOperation
	case word&0x0F000010 == 0x0E000010:
		return FormatCoprocRegisterTransfer
	default:
		return FormatSoftwareInterrupt
	}
}

// classifyThumb maps a THUMB halfword to its format. Only bits [15:6] are
// inspected.
func classifyThumb(half uint16) Format {
	switch {
	case half&0xF800 == 0x1800:
		return FormatThumbAddSub
	case half&0xE000 == 0x0000:
		return FormatThumbMoveShifted
	case half&0xE000 == 0x2000:
		return FormatThumbImmediate
	case half&0xFC00 == 0x4000:
		return FormatThumbALU
	case half&0xFC00 == 0x4400:
		return FormatThumbHiRegister
	case half&0xF800 == 0x4800:
		return FormatThumbPCLoad
	case half&0xF200 == 0x5000:
		return FormatThumbLoadStoreReg
	case half&0xF200 == 0x5200:
		return FormatThumbLoadStoreSigned
	case half&0xE000 == 0x6000:
		return FormatThumbLoadStoreImm
	case half&0xF000 == 0x8000:
		return FormatThumbLoadStoreHalf
	case half&0xF000 == 0x9000:
		return FormatThumbSPLoadStore
	case half&0xF000 == 0xA000:
		return FormatThumbLoadAddress
	case half&0xFF00 == 0xB000:
		return FormatThumbAddSP
	case half&0xF600 == 0xB400:
		return FormatThumbPushPop
	case half&0xF000 == 0xC000:
		return FormatThumbMultiple
	case half&0xFF00 == 0xDF00:
		return FormatThumbSoftwareInterrupt
	case half&0xFF00 == 0xDE00:
		return FormatUndefined
	case half&0xF000 == 0xD000:
		return FormatThumbCondBranch
	case half&0xF800 == 0xE000:
		return FormatThumbBranch
	case half&0xF000 == 0xF000:
		return FormatThumbLongBranch
	default:
		// 0xB with bits [10:9] != 10 except ADD SP, and 0xE800 (BLX, ARMv5)
		return FormatUndefined
	}
}

// ClassifyARM returns the format of a 32-bit ARM word.
func ClassifyARM(word uint32) Format {
	return armFormats[armKey(word)]
}

// ClassifyThumb returns the format of a 16-bit THUMB halfword.
func ClassifyThumb(half uint16) Format {
	return thumbFormats[thumbKey(half)]
}

// Decoder decodes ARM7TDMI machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new ARM7TDMI instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit ARM instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{}
	d.DecodeInto(word, inst)
	return inst
}

// DecodeInto decodes a 32-bit ARM instruction word into inst, overwriting
// every field. It does not allocate.
func (d *Decoder) DecodeInto(word uint32, inst *Instruction) {
	*inst = Instruction{
		Raw:    word,
		Format: ClassifyARM(word),
		Cond:   CondOf(word),
	}

	switch inst.Format {
	case FormatBranch:
		d.decodeBranch(word, inst)
	case FormatBranchExchange:
		inst.Op = OpBX
		inst.Rn = uint8(ExtractBits(word, 3, 0))
	case FormatMultiply:
		d.decodeMultiply(word, inst)
	case FormatMultiplyLong:
		d.decodeMultiplyLong(word, inst)
	case FormatSoftwareInterrupt:
		inst.Op = OpSWI
	default:
		// Generic operand fields shared by the data processing and
		// transfer formats.
		inst.Rn = uint8(ExtractBits(word, 19, 16))
		inst.Rd = uint8(ExtractBits(word, 15, 12))
		inst.Rm = uint8(ExtractBits(word, 3, 0))
		inst.SetFlags = Bit(word, 20)
	}
}

// decodeBranch decodes B and BL.
// Format: cond | 101 | L | offset24
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	inst.Link = Bit(word, 24)
	inst.BranchOffset = SignExtend(ExtractBits(word, 23, 0), 24) * 4

	if inst.Link {
		inst.Op = OpBL
	} else {
		inst.Op = OpB
	}
}

// decodeMultiply decodes MUL and MLA.
// Format: cond | 000000 | A | S | Rd | Rn | Rs | 1001 | Rm
func (d *Decoder) decodeMultiply(word uint32, inst *Instruction) {
	inst.Accumulate = Bit(word, 21)
	inst.SetFlags = Bit(word, 20)
	inst.Rd = uint8(ExtractBits(word, 19, 16))
	inst.Rn = uint8(ExtractBits(word, 15, 12))
	inst.Rs = uint8(ExtractBits(word, 11, 8))
	inst.Rm = uint8(ExtractBits(word, 3, 0))

	if inst.Accumulate {
		inst.Op = OpMLA
	} else {
		inst.Op = OpMUL
	}
}

// decodeMultiplyLong decodes UMULL, UMLAL, SMULL and SMLAL.
// Format: cond | 00001 | U | A | S | RdHi | RdLo | Rs | 1001 | Rm
func (d *Decoder) decodeMultiplyLong(word uint32, inst *Instruction) {
	inst.Signed = Bit(word, 22)
	inst.Accumulate = Bit(word, 21)
	inst.SetFlags = Bit(word, 20)
	inst.RdHi = uint8(ExtractBits(word, 19, 16))
	inst.RdLo = uint8(ExtractBits(word, 15, 12))
	inst.Rs = uint8(ExtractBits(word, 11, 8))
	inst.Rm = uint8(ExtractBits(word, 3, 0))

	switch {
	case inst.Signed && inst.Accumulate:
		inst.Op = OpSMLAL
	case inst.Signed:
		inst.Op = OpSMULL
	case inst.Accumulate:
		inst.Op = OpUMLAL
	default:
		inst.Op = OpUMULL
	}
}
