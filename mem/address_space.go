package mem

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/gbasim/display"
)

// Stats counts accesses that fell outside normal storage.
type Stats struct {
	// RomWrites counts byte writes that landed in cartridge ROM.
	RomWrites uint64
	// UnmappedReads counts byte reads that returned TrapValue.
	UnmappedReads uint64
	// UnmappedWrites counts byte writes that were dropped.
	UnmappedWrites uint64
}

// AddressSpace is the GBA memory map. Protected accessors follow mirrors and
// ROM aliases and apply the side effects of the memory-mapped registers;
// unprotected accessors touch backing storage directly.
type AddressSpace struct {
	bios    [BIOSSize]byte
	ewram   [EWRAMSize]byte
	iwram   [IWRAMSize]byte
	io      [IOSize]byte
	palette [PaletteSize]byte
	vram    [VRAMSize]byte
	oam     [OAMSize]byte
	rom     []byte

	status *display.Status
	wait   WaitStates
	stats  Stats

	log logr.Logger
}

// Option is a functional option for configuring the AddressSpace.
type Option func(*AddressSpace)

// WithLogger sets the logger used for warnings and diagnostics.
func WithLogger(log logr.Logger) Option {
	return func(a *AddressSpace) {
		a.log = log
	}
}

// WithStatus connects the address space to an existing display status. By
// default a fresh Status is allocated.
func WithStatus(status *display.Status) Option {
	return func(a *AddressSpace) {
		a.status = status
	}
}

// NewAddressSpace creates a zero-filled address space with no cartridge.
func NewAddressSpace(opts ...Option) *AddressSpace {
	a := &AddressSpace{
		wait: DefaultWaitStates(),
		log:  logr.Discard(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.status == nil {
		a.status = display.NewStatus()
	}

	return a
}

// LoadROM installs the cartridge image. The image is copied.
func (a *AddressSpace) LoadROM(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("ROM image is empty")
	}
	if len(image) > ROMMaxSize {
		return fmt.Errorf("ROM image is %d bytes, limit is %d", len(image), ROMMaxSize)
	}

	a.rom = make([]byte, len(image))
	copy(a.rom, image)

	return nil
}

// LoadBIOS copies a BIOS image to the start of the BIOS region.
func (a *AddressSpace) LoadBIOS(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("BIOS image is empty")
	}
	if len(image) > BIOSSize {
		return fmt.Errorf("BIOS image is %d bytes, limit is %d", len(image), BIOSSize)
	}

	copy(a.bios[:], image)

	return nil
}

// ROMSize returns the length of the loaded cartridge image.
func (a *AddressSpace) ROMSize() int {
	return len(a.rom)
}

// Status returns the display status side channel.
func (a *AddressSpace) Status() *display.Status {
	return a.status
}

// Stats returns the anomalous access counters.
func (a *AddressSpace) Stats() Stats {
	return a.stats
}

// WaitStates returns the cartridge access costs last programmed in WAITCNT.
func (a *AddressSpace) WaitStates() WaitStates {
	return a.wait
}

// storage returns the backing slice of a region.
func (a *AddressSpace) storage(region Region) []byte {
	switch region {
	case RegionBIOS:
		return a.bios[:]
	case RegionEWRAM:
		return a.ewram[:]
	case RegionIWRAM:
		return a.iwram[:]
	case RegionIO:
		return a.io[:]
	case RegionPalette:
		return a.palette[:]
	case RegionVRAM:
		return a.vram[:]
	case RegionOAM:
		return a.oam[:]
	case RegionROM:
		return a.rom
	default:
		return nil
	}
}

// locate returns the backing slice and offset for a resolved address, or
// ok == false when no storage is behind it.
func (a *AddressSpace) locate(region Region, off uint32) ([]byte, uint32, bool) {
	buf := a.storage(region)
	if off >= uint32(len(buf)) {
		return nil, 0, false
	}
	return buf, off, true
}

func (a *AddressSpace) unmappedRead(addr uint32) byte {
	a.stats.UnmappedReads++
	a.log.V(1).Info("read of unmapped address", "addr", fmt.Sprintf("0x%08X", addr))
	return TrapValue
}

func (a *AddressSpace) unmappedWrite(addr uint32, value byte) {
	a.stats.UnmappedWrites++
	a.log.V(1).Info("write to unmapped address dropped",
		"addr", fmt.Sprintf("0x%08X", addr), "value", value)
}

// Read8 reads one byte, following mirrors and register read side effects.
func (a *AddressSpace) Read8(addr uint32) uint8 {
	region, off := mirror(addr)

	if region == RegionIO {
		if v, ok := a.readRegister(addr); ok {
			return v
		}
	}

	buf, off, ok := a.locate(region, off)
	if !ok {
		return a.unmappedRead(addr)
	}
	return buf[off]
}

// Read16 reads a little-endian halfword as two byte reads.
func (a *AddressSpace) Read16(addr uint32) uint16 {
	return uint16(a.Read8(addr)) | uint16(a.Read8(addr+1))<<8
}

// Read32 reads a little-endian word as four byte reads.
func (a *AddressSpace) Read32(addr uint32) uint32 {
	return uint32(a.Read8(addr)) |
		uint32(a.Read8(addr+1))<<8 |
		uint32(a.Read8(addr+2))<<16 |
		uint32(a.Read8(addr+3))<<24
}

// Write8 writes one byte, following mirrors. Writes to the display control
// and wait-state registers update the decoded state instead of storage.
func (a *AddressSpace) Write8(addr uint32, value uint8) {
	region, off := mirror(addr)

	if region == RegionIO && a.writeRegister(addr, value) {
		return
	}

	buf, off, ok := a.locate(region, off)
	if !ok && region == RegionROM {
		a.stats.UnmappedWrites++
		a.log.Info("warning: write to cartridge ROM beyond image dropped",
			"addr", fmt.Sprintf("0x%08X", addr), "value", value)
		return
	}
	if !ok {
		a.unmappedWrite(addr, value)
		return
	}

	if region == RegionROM {
		a.stats.RomWrites++
		a.log.Info("warning: write to cartridge ROM",
			"addr", fmt.Sprintf("0x%08X", addr), "value", value)
	}

	buf[off] = value
}

// Write16 writes a little-endian halfword as two byte writes.
func (a *AddressSpace) Write16(addr uint32, value uint16) {
	a.Write8(addr, uint8(value))
	a.Write8(addr+1, uint8(value>>8))
}

// Write32 writes a little-endian word as four byte writes.
func (a *AddressSpace) Write32(addr uint32, value uint32) {
	a.Write8(addr, uint8(value))
	a.Write8(addr+1, uint8(value>>8))
	a.Write8(addr+2, uint8(value>>16))
	a.Write8(addr+3, uint8(value>>24))
}

// Read8Unprotected reads backing storage without mirroring or side effects.
func (a *AddressSpace) Read8Unprotected(addr uint32) uint8 {
	buf, off, ok := a.locate(direct(addr))
	if !ok {
		return a.unmappedRead(addr)
	}
	return buf[off]
}

// Read16Unprotected reads a little-endian halfword from backing storage.
func (a *AddressSpace) Read16Unprotected(addr uint32) uint16 {
	return uint16(a.Read8Unprotected(addr)) | uint16(a.Read8Unprotected(addr+1))<<8
}

// Read32Unprotected reads a little-endian word from backing storage.
func (a *AddressSpace) Read32Unprotected(addr uint32) uint32 {
	return uint32(a.Read8Unprotected(addr)) |
		uint32(a.Read8Unprotected(addr+1))<<8 |
		uint32(a.Read8Unprotected(addr+2))<<16 |
		uint32(a.Read8Unprotected(addr+3))<<24
}

// Write8Unprotected writes backing storage without mirroring or side
// effects.
func (a *AddressSpace) Write8Unprotected(addr uint32, value uint8) {
	buf, off, ok := a.locate(direct(addr))
	if !ok {
		a.unmappedWrite(addr, value)
		return
	}
	buf[off] = value
}

// Write16Unprotected writes a little-endian halfword to backing storage.
func (a *AddressSpace) Write16Unprotected(addr uint32, value uint16) {
	a.Write8Unprotected(addr, uint8(value))
	a.Write8Unprotected(addr+1, uint8(value>>8))
}

// Write32Unprotected writes a little-endian word to backing storage.
func (a *AddressSpace) Write32Unprotected(addr uint32, value uint32) {
	a.Write8Unprotected(addr, uint8(value))
	a.Write8Unprotected(addr+1, uint8(value>>8))
	a.Write8Unprotected(addr+2, uint8(value>>16))
	a.Write8Unprotected(addr+3, uint8(value>>24))
}
