package mem

import "github.com/sarchlab/gbasim/display"

// Memory-mapped register addresses.
const (
	RegDISPCNT  = 0x04000000
	RegDISPSTAT = 0x04000004
	RegVCOUNT   = 0x04000006
	RegBG0CNT   = 0x04000008
	RegBG1CNT   = 0x0400000A
	RegBG2CNT   = 0x0400000C
	RegBG3CNT   = 0x0400000E
	RegWAITCNT  = 0x04000204
)

// WaitStates holds the cartridge ROM access costs in cycles.
type WaitStates struct {
	// N is the cost of a non-sequential access.
	N uint8
	// S is the cost of a sequential access.
	S uint8
}

var (
	nonSeqCycles = [4]uint8{4, 3, 2, 8}
	seqCycles    = [2]uint8{2, 1}
)

// DefaultWaitStates returns the costs in effect before WAITCNT is written.
func DefaultWaitStates() WaitStates {
	return WaitStates{N: nonSeqCycles[0], S: seqCycles[0]}
}

// readRegister synthesizes the value of a status register. ok is false for
// addresses that read backing storage.
func (a *AddressSpace) readRegister(addr uint32) (uint8, bool) {
	switch addr {
	case RegDISPSTAT:
		var v uint8
		if a.status.InVBlank {
			v |= 1 << 0
		}
		if a.status.InHBlank {
			v |= 1 << 1
		}
		return v, true
	case RegVCOUNT:
		return a.status.CurrentScanline, true
	default:
		return 0, false
	}
}

// writeRegister applies the side effect of writing a control register. It
// returns false for addresses that are plain storage.
func (a *AddressSpace) writeRegister(addr uint32, value uint8) bool {
	switch addr {
	case RegDISPCNT:
		a.writeDisplayControlLow(value)
	case RegDISPCNT + 1:
		a.writeDisplayControlHigh(value)
	case RegBG0CNT, RegBG1CNT, RegBG2CNT, RegBG3CNT:
		a.writeBackgroundControlLow(&a.status.Backgrounds[(addr-RegBG0CNT)/2], value)
	case RegBG0CNT + 1, RegBG1CNT + 1, RegBG2CNT + 1, RegBG3CNT + 1:
		a.writeBackgroundControlHigh(&a.status.Backgrounds[(addr-RegBG0CNT)/2], value)
	case RegWAITCNT:
		a.wait.N = nonSeqCycles[(value>>2)&0x3]
		a.wait.S = seqCycles[(value>>4)&0x1]
	default:
		return false
	}
	return true
}

func (a *AddressSpace) writeDisplayControlLow(value uint8) {
	c := &a.status.DisplayControl
	c.Mode = value & 0x7
	c.CGBMode = (value >> 3) & 1
	c.PageSelect = (value >> 4) & 1
	c.HBlankFree = (value >> 5) & 1
	c.ObjMapping = (value >> 6) & 1
	c.ForcedBlank = (value >> 7) & 1
}

func (a *AddressSpace) writeDisplayControlHigh(value uint8) {
	for i := range a.status.Backgrounds {
		a.status.Backgrounds[i].Enabled = (value >> i) & 1
	}
	a.status.DisplayControl.ObjEnabled = (value >> 4) & 1
	a.status.DisplayControl.WindowEnabled = (value >> 5) & 0x7
}

func (a *AddressSpace) writeBackgroundControlLow(bg *display.BackgroundControl, value uint8) {
	bg.Priority = value & 0x3
	bg.CharBaseBlock = (value >> 2) & 0x3
	bg.Mosaic = (value >> 6) & 1
	bg.ColorMode = (value >> 7) & 1
}

func (a *AddressSpace) writeBackgroundControlHigh(bg *display.BackgroundControl, value uint8) {
	bg.ScreenBaseBlock = value & 0x1F
	bg.AffineWrap = (value >> 5) & 1
	bg.Size = (value >> 6) & 0x3
}
