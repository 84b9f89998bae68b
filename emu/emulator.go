package emu

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/rs/xid"

	"github.com/sarchlab/gbasim/insts"
	"github.com/sarchlab/gbasim/mem"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// PC is the address the instruction was fetched from.
	PC uint32

	// Inst is the decoded instruction. It is owned by the emulator and is
	// valid until the next step. Nil if nothing was fetched.
	Inst *insts.Instruction

	// Skipped is true if the condition failed and the instruction only
	// advanced the PC.
	Skipped bool

	// Branched is true if the instruction wrote the PC.
	Branched bool

	// Multiplier is the Rs operand of a multiply, read before execution.
	Multiplier uint32

	// Err is set if the instruction faulted. A faulting instruction leaves
	// the PC on itself.
	Err error
}

// Emulator executes ARM7TDMI instructions functionally against a GBA
// address space. One Emulator is one session: it owns the register file
// and the address space.
type Emulator struct {
	id      xid.ID
	regFile *RegFile
	memory  *mem.AddressSpace
	decoder *insts.Decoder
	inst    insts.Instruction

	// Execution units
	branchUnit   *BranchUnit
	multiplyUnit *MultiplyUnit

	log logr.Logger

	// Execution state
	entry            uint32
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithLogger sets the logger for the emulator and its register file.
func WithLogger(log logr.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.log = log
	}
}

// WithSessionID sets the session identifier. By default a new one is
// generated.
func WithSessionID(id xid.ID) EmulatorOption {
	return func(e *Emulator) {
		e.id = id
	}
}

// WithAddressSpace sets the address space the emulator fetches from. By
// default an empty one is created.
func WithAddressSpace(as *mem.AddressSpace) EmulatorOption {
	return func(e *Emulator) {
		e.memory = as
	}
}

// WithEntryPoint sets the initial PC. The default is the reset vector, 0.
func WithEntryPoint(pc uint32) EmulatorOption {
	return func(e *Emulator) {
		e.entry = pc
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new ARM7TDMI emulator in User mode, ARM state.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		id:      xid.New(),
		regFile: &RegFile{},
		decoder: insts.NewDecoder(),
		log:     logr.Discard(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.memory == nil {
		e.memory = mem.NewAddressSpace(mem.WithLogger(e.log))
	}

	e.regFile.SetLogger(e.log)
	e.regFile.SetPC(e.entry)

	e.branchUnit = NewBranchUnit(e.regFile)
	e.multiplyUnit = NewMultiplyUnit(e.regFile)

	return e
}

// ID returns the session identifier.
func (e *Emulator) ID() xid.ID {
	return e.id
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's address space.
func (e *Emulator) Memory() *mem.AddressSpace {
	return e.memory
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Reset returns the processor to User mode, ARM state, at the entry point.
// The address space is kept.
func (e *Emulator) Reset() {
	e.regFile.Reset()
	e.regFile.SetPC(e.entry)
	e.instructionCount = 0
}

// Step fetches, decodes and executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{PC: e.regFile.PC(), Err: ErrMaxInstructions}
	}

	pc := e.fetchAddress()
	if e.regFile.Thumb() {
		e.decoder.DecodeThumbInto(e.memory.Read16(pc), &e.inst)
	} else {
		e.decoder.DecodeInto(e.memory.Read32(pc), &e.inst)
	}

	e.instructionCount++

	return e.execute(pc, &e.inst)
}

// Execute runs an already decoded instruction at the current PC. The
// instruction's width must match the active instruction set.
func (e *Emulator) Execute(inst *insts.Instruction) StepResult {
	return e.execute(e.fetchAddress(), inst)
}

// SkipFault moves the PC past the instruction that produced a faulting
// result, so execution resumes with the next one.
func (e *Emulator) SkipFault(result StepResult) {
	if result.Err == nil || result.Inst == nil {
		return
	}
	e.regFile.SetPC(result.PC + result.Inst.Size())
}

// Run executes instructions until the instruction limit is reached and
// returns ErrMaxInstructions. Faulting instructions are logged and skipped.
// Without a limit Run does not return.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Err == nil {
			continue
		}
		if errors.Is(result.Err, ErrMaxInstructions) {
			return result.Err
		}

		e.log.V(1).Info("step fault", "pc", fmt.Sprintf("0x%08X", result.PC),
			"err", result.Err.Error())
		e.SkipFault(result)
	}
}

// fetchAddress returns the PC aligned to the active instruction width.
func (e *Emulator) fetchAddress() uint32 {
	if e.regFile.Thumb() {
		return e.regFile.PC() &^ 1
	}
	return e.regFile.PC() &^ 3
}

// execute checks the condition and dispatches a decoded instruction.
func (e *Emulator) execute(pc uint32, inst *insts.Instruction) StepResult {
	result := StepResult{PC: pc, Inst: inst}

	if !EvalCondition(inst.Cond, e.regFile.PSTATE) {
		result.Skipped = true
		e.regFile.SetPC(pc + inst.Size())
		return result
	}

	switch inst.Op {
	case insts.OpB, insts.OpBCond:
		e.regFile.SetPC(pc)
		e.branchUnit.B(inst.BranchOffset)
		result.Branched = true
	case insts.OpBL:
		e.regFile.SetPC(pc)
		e.branchUnit.BL(inst.BranchOffset, inst.Size())
		result.Branched = true
	case insts.OpBX:
		if err := e.branchUnit.BX(inst.Rn); err != nil {
			result.Err = fmt.Errorf("BX at 0x%08X: %w", pc, err)
			return result
		}
		result.Branched = true
	case insts.OpBLHigh:
		e.regFile.SetPC(pc)
		e.branchUnit.BLHigh(inst.BranchOffset)
	case insts.OpBLLow:
		e.regFile.SetPC(pc)
		e.branchUnit.BLLow(inst.BranchOffset)
		result.Branched = true
	case insts.OpMUL:
		result.Multiplier = e.regFile.Read(inst.Rs)
		e.multiplyUnit.MUL(inst.Rd, inst.Rm, inst.Rs, inst.SetFlags)
	case insts.OpMLA:
		result.Multiplier = e.regFile.Read(inst.Rs)
		e.multiplyUnit.MLA(inst.Rd, inst.Rm, inst.Rs, inst.Rn, inst.SetFlags)
	case insts.OpUMULL, insts.OpUMLAL, insts.OpSMULL, insts.OpSMLAL:
		result.Multiplier = e.regFile.Read(inst.Rs)
		e.multiplyUnit.MULL(inst.RdHi, inst.RdLo, inst.Rm, inst.Rs,
			inst.Signed, inst.Accumulate, inst.SetFlags)
	default:
		result.Err = fmt.Errorf("%w: %s at 0x%08X", ErrUnimplemented, inst.Format, pc)
		return result
	}

	if !result.Branched {
		e.regFile.SetPC(pc + inst.Size())
	}

	return result
}
