package emu

// MultiplyUnit implements the ARM7TDMI multiply operations. When flags are
// requested only N and Z are written; C and V keep their previous values
// and carry no meaning after a multiply.
type MultiplyUnit struct {
	regFile *RegFile
}

// NewMultiplyUnit creates a new MultiplyUnit connected to the given register file.
func NewMultiplyUnit(regFile *RegFile) *MultiplyUnit {
	return &MultiplyUnit{regFile: regFile}
}

// MUL computes Rd = Rm * Rs.
func (m *MultiplyUnit) MUL(rd, rm, rs uint8, setFlags bool) {
	result := m.regFile.Read(rm) * m.regFile.Read(rs)
	m.regFile.Write(rd, result)

	if setFlags {
		m.setFlags32(result)
	}
}

// MLA computes Rd = Rm * Rs + Rn.
func (m *MultiplyUnit) MLA(rd, rm, rs, rn uint8, setFlags bool) {
	result := m.regFile.Read(rm)*m.regFile.Read(rs) + m.regFile.Read(rn)
	m.regFile.Write(rd, result)

	if setFlags {
		m.setFlags32(result)
	}
}

// MULL computes the 64-bit product RdHi:RdLo = Rm * Rs, signed or unsigned,
// optionally adding the previous RdHi:RdLo.
func (m *MultiplyUnit) MULL(rdHi, rdLo, rm, rs uint8, signed, accumulate, setFlags bool) {
	var result uint64
	if signed {
		result = uint64(int64(int32(m.regFile.Read(rm))) * int64(int32(m.regFile.Read(rs))))
	} else {
		result = uint64(m.regFile.Read(rm)) * uint64(m.regFile.Read(rs))
	}

	if accumulate {
		result += uint64(m.regFile.Read(rdHi))<<32 | uint64(m.regFile.Read(rdLo))
	}

	m.regFile.Write(rdLo, uint32(result))
	m.regFile.Write(rdHi, uint32(result>>32))

	if setFlags {
		m.regFile.PSTATE.N = result>>63 == 1
		m.regFile.PSTATE.Z = result == 0
	}
}

// setFlags32 sets N and Z from a 32-bit result.
func (m *MultiplyUnit) setFlags32(result uint32) {
	m.regFile.PSTATE.N = result>>31 == 1
	m.regFile.PSTATE.Z = result == 0
}
