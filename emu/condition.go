package emu

import "github.com/sarchlab/gbasim/insts"

// ConditionMet reports whether an ARM instruction word executes under the
// given flags. The condition is taken from bits [31:28].
func ConditionMet(word uint32, flags PSTATE) bool {
	return EvalCondition(insts.CondOf(word), flags)
}

// EvalCondition evaluates a condition code against the flags.
func EvalCondition(cond insts.Cond, p PSTATE) bool {
	switch cond & 0xF {
	case insts.CondEQ:
		return p.Z
	case insts.CondNE:
		return !p.Z
	case insts.CondCS:
		return p.C
	case insts.CondCC:
		return !p.C
	case insts.CondMI:
		return p.N
	case insts.CondPL:
		return !p.N
	case insts.CondVS:
		return p.V
	case insts.CondVC:
		return !p.V
	case insts.CondHI:
		return p.C && !p.Z
	case insts.CondLS:
		return !p.C || p.Z
	case insts.CondGE:
		return p.N == p.V
	case insts.CondLT:
		return p.N != p.V
	case insts.CondGT:
		return !p.Z && (p.N == p.V)
	case insts.CondLE:
		return p.Z || (p.N != p.V)
	case insts.CondAL:
		return true
	default:
		// NV is reserved on ARMv4 and never executes.
		return false
	}
}
