// Package latency provides the cycle cost model of the GBA's ARM7TDMI.
//
// Memory access costs depend on the region and, for cartridge ROM, on the
// wait states programmed in WAITCNT. Execution costs cover pipeline refill
// after a taken branch and the internal cycles of the multiplier. All values
// can be configured via TimingConfig.
package latency

import (
	"github.com/sarchlab/gbasim/insts"
	"github.com/sarchlab/gbasim/mem"
)

// Table provides cycle cost lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default GBA timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

// narrowBus reports whether a region sits on a 16-bit bus, so a 32-bit
// access takes two.
func narrowBus(region mem.Region) bool {
	switch region {
	case mem.RegionEWRAM, mem.RegionPalette, mem.RegionVRAM, mem.RegionROM:
		return true
	default:
		return false
	}
}

// AccessCycles returns the cost of a width-byte access to region. ROM costs
// come from the wait states; sequential ROM accesses use the S cost. The
// second half of a 32-bit access on a 16-bit bus is always sequential.
func (t *Table) AccessCycles(region mem.Region, ws mem.WaitStates, sequential bool, width uint32) uint64 {
	if region == mem.RegionROM {
		first := uint64(ws.N)
		if sequential {
			first = uint64(ws.S)
		}
		if width == 4 {
			return first + uint64(ws.S)
		}
		return first
	}

	cycles := t.regionCycles(region)
	if width == 4 && narrowBus(region) {
		cycles *= 2
	}
	return cycles
}

func (t *Table) regionCycles(region mem.Region) uint64 {
	switch region {
	case mem.RegionBIOS:
		return t.config.BIOSCycles
	case mem.RegionEWRAM:
		return t.config.EWRAMCycles
	case mem.RegionIWRAM:
		return t.config.IWRAMCycles
	case mem.RegionIO:
		return t.config.IOCycles
	case mem.RegionPalette:
		return t.config.PaletteCycles
	case mem.RegionVRAM:
		return t.config.VRAMCycles
	case mem.RegionOAM:
		return t.config.OAMCycles
	default:
		return t.config.UnmappedCycles
	}
}

// MultiplierSteps returns the number of 8-bit steps the multiplier takes
// for operand rs. The multiplier stops early once the remaining high bits
// are all zero or, for signed operations, all one.
func MultiplierSteps(rs uint32, signed bool) uint64 {
	for m, mask := range []uint32{0xFFFFFF00, 0xFFFF0000, 0xFF000000} {
		high := rs & mask
		if high == 0 || (signed && high == mask) {
			return uint64(m + 1)
		}
	}
	return 4
}

// ExecuteCycles returns the internal cycles an instruction spends after
// its fetch. multiplier is the Rs operand of a multiply; branched reports
// whether the instruction wrote the PC.
func (t *Table) ExecuteCycles(inst *insts.Instruction, multiplier uint32, branched bool) uint64 {
	if inst == nil {
		return 0
	}

	var cycles uint64
	if branched {
		cycles += t.config.BranchRefillCycles
	}

	switch inst.Op {
	case insts.OpMUL:
		cycles += MultiplierSteps(multiplier, true) * t.config.MultiplyStepCycles
	case insts.OpMLA:
		cycles += MultiplierSteps(multiplier, true)*t.config.MultiplyStepCycles + 1
	case insts.OpUMULL, insts.OpSMULL:
		cycles += MultiplierSteps(multiplier, inst.Signed)*t.config.MultiplyStepCycles + 1
	case insts.OpUMLAL, insts.OpSMLAL:
		cycles += MultiplierSteps(multiplier, inst.Signed)*t.config.MultiplyStepCycles + 2
	}

	return cycles
}

// IsBranchOp returns true if the instruction may write the PC.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	switch inst.Op {
	case insts.OpB, insts.OpBL, insts.OpBX, insts.OpBCond, insts.OpBLLow:
		return true
	default:
		return false
	}
}

// IsMultiplyOp returns true if the instruction uses the multiplier.
func (t *Table) IsMultiplyOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	switch inst.Op {
	case insts.OpMUL, insts.OpMLA, insts.OpUMULL, insts.OpUMLAL, insts.OpSMULL, insts.OpSMLAL:
		return true
	default:
		return false
	}
}
