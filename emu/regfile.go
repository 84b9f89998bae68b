// Package emu provides functional ARM7TDMI emulation.
package emu

import (
	"fmt"

	"github.com/go-logr/logr"
)

// Architectural register roles.
const (
	RegSP = 13 // Stack pointer
	RegLR = 14 // Link register
	RegPC = 15 // Program counter
)

// PSTATE represents the processor condition flags.
type PSTATE struct {
	// N is the negative flag.
	N bool
	// Z is the zero flag.
	Z bool
	// C is the carry flag.
	C bool
	// V is the overflow flag.
	V bool
}

// Flag identifies one of the four condition flags.
type Flag uint8

// Condition flags.
const (
	FlagN Flag = iota
	FlagZ
	FlagC
	FlagV
)

func (f Flag) String() string {
	switch f {
	case FlagN:
		return "N"
	case FlagZ:
		return "Z"
	case FlagC:
		return "C"
	case FlagV:
		return "V"
	default:
		return fmt.Sprintf("Flag(%d)", uint8(f))
	}
}

// InstructionSet selects the instruction encoding width.
type InstructionSet uint8

// Instruction sets.
const (
	StateARM   InstructionSet = iota // 32-bit encoding
	StateThumb                       // 16-bit encoding
)

func (s InstructionSet) String() string {
	if s == StateThumb {
		return "THUMB"
	}
	return "ARM"
}

// Mode is the processor operating mode. Each mode owns a bank holding R13,
// R14 and the flags.
type Mode uint8

// Operating modes.
const (
	ModeUser Mode = iota
	ModeFIQ
	ModeIRQ
	ModeSupervisor
	ModeAbort
	ModeUndefined

	numModes
)

var modeEncodings = [numModes]uint32{
	ModeUser:       0x10,
	ModeFIQ:        0x11,
	ModeIRQ:        0x12,
	ModeSupervisor: 0x13,
	ModeAbort:      0x17,
	ModeUndefined:  0x1B,
}

var modeNames = [numModes]string{"usr", "fiq", "irq", "svc", "abt", "und"}

// Valid reports whether m names one of the six operating modes.
func (m Mode) Valid() bool {
	return m < numModes
}

// Encoding returns the CPSR mode bits of m.
func (m Mode) Encoding() uint32 {
	if !m.Valid() {
		return modeEncodings[ModeUndefined]
	}
	return modeEncodings[m]
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
	return modeNames[m]
}

// ModeFromEncoding maps CPSR mode bits to a Mode. The second result is false
// if the encoding does not name an operating mode.
func ModeFromEncoding(bits uint32) (Mode, bool) {
	for m, enc := range modeEncodings {
		if enc == bits&0x1F {
			return Mode(m), true
		}
	}
	return ModeUndefined, false
}

type bank struct {
	sp    uint32
	lr    uint32
	flags PSTATE
}

// RegFile represents the ARM7TDMI register file and processor state.
// R holds the registers visible in the active mode; R13, R14 and PSTATE are
// swapped with the mode banks on every mode switch. The zero value is a
// register file in User mode executing ARM code.
type RegFile struct {
	// R holds the 16 logical registers.
	R [16]uint32

	// PSTATE holds the condition flags of the active mode.
	PSTATE PSTATE

	state InstructionSet
	mode  Mode
	banks [numModes]bank

	log logr.Logger
}

// SetLogger sets the logger used for diagnostics.
func (r *RegFile) SetLogger(log logr.Logger) {
	r.log = log
}

// Read returns the value of register reg. reg must be in 0..15.
func (r *RegFile) Read(reg uint8) uint32 {
	return r.R[reg]
}

// Write sets register reg to value. reg must be in 0..15.
func (r *RegFile) Write(reg uint8, value uint32) {
	r.R[reg] = value
}

// PC returns the program counter.
func (r *RegFile) PC() uint32 {
	return r.R[RegPC]
}

// SetPC sets the program counter.
func (r *RegFile) SetPC(pc uint32) {
	r.R[RegPC] = pc
}

// Flag returns the value of a condition flag in the active mode.
func (r *RegFile) Flag(f Flag) bool {
	switch f {
	case FlagN:
		return r.PSTATE.N
	case FlagZ:
		return r.PSTATE.Z
	case FlagC:
		return r.PSTATE.C
	case FlagV:
		return r.PSTATE.V
	default:
		r.log.Info("diagnostic: read of unrecognized flag", "flag", f.String())
		return false
	}
}

// SetFlag sets a condition flag in the active mode. An unrecognized flag
// leaves the state unchanged.
func (r *RegFile) SetFlag(f Flag, value bool) {
	switch f {
	case FlagN:
		r.PSTATE.N = value
	case FlagZ:
		r.PSTATE.Z = value
	case FlagC:
		r.PSTATE.C = value
	case FlagV:
		r.PSTATE.V = value
	default:
		r.log.Info("diagnostic: write to unrecognized flag ignored", "flag", f.String())
	}
}

// InstructionSet returns the active instruction set.
func (r *RegFile) InstructionSet() InstructionSet {
	return r.state
}

// Thumb reports whether the processor is executing THUMB code.
func (r *RegFile) Thumb() bool {
	return r.state == StateThumb
}

// SetInstructionSet switches between ARM and THUMB decoding.
func (r *RegFile) SetInstructionSet(s InstructionSet) {
	r.state = s
}

// Mode returns the active operating mode.
func (r *RegFile) Mode() Mode {
	return r.mode
}

// SwitchMode changes the operating mode. The active R13, R14 and flags are
// saved into the outgoing mode's bank and the incoming mode's bank is made
// visible. An invalid mode selects ModeUndefined.
func (r *RegFile) SwitchMode(m Mode) {
	if !m.Valid() {
		r.log.Info("diagnostic: invalid operating mode, entering undefined mode",
			"mode", uint8(m))
		m = ModeUndefined
	}
	if m == r.mode {
		return
	}

	out := &r.banks[r.mode]
	out.sp, out.lr, out.flags = r.R[RegSP], r.R[RegLR], r.PSTATE

	in := r.banks[m]
	r.R[RegSP], r.R[RegLR], r.PSTATE = in.sp, in.lr, in.flags
	r.mode = m
}

// SwitchModeEncoding changes the operating mode from CPSR mode bits.
// Encodings that name no mode select ModeUndefined.
func (r *RegFile) SwitchModeEncoding(bits uint32) {
	m, ok := ModeFromEncoding(bits)
	if !ok {
		r.log.Info("diagnostic: invalid mode encoding, entering undefined mode",
			"encoding", fmt.Sprintf("0x%02X", bits&0x1F))
	}
	r.SwitchMode(m)
}

// BankedSP returns the R13 value held for mode m.
func (r *RegFile) BankedSP(m Mode) uint32 {
	if m == r.mode {
		return r.R[RegSP]
	}
	return r.banks[m].sp
}

// BankedLR returns the R14 value held for mode m.
func (r *RegFile) BankedLR(m Mode) uint32 {
	if m == r.mode {
		return r.R[RegLR]
	}
	return r.banks[m].lr
}

// CPSR returns the status register view of the flags, state and mode.
func (r *RegFile) CPSR() uint32 {
	var cpsr uint32
	if r.PSTATE.N {
		cpsr |= 1 << 31
	}
	if r.PSTATE.Z {
		cpsr |= 1 << 30
	}
	if r.PSTATE.C {
		cpsr |= 1 << 29
	}
	if r.PSTATE.V {
		cpsr |= 1 << 28
	}
	if r.state == StateThumb {
		cpsr |= 1 << 5
	}
	return cpsr | r.mode.Encoding()
}

// Reset returns the register file to User mode, ARM state, all zero.
func (r *RegFile) Reset() {
	log := r.log
	*r = RegFile{log: log}
}
