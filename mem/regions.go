// Package mem models the GBA address space: fixed regions with mirroring,
// cartridge ROM aliases, and the memory-mapped display and wait-state
// registers.
package mem

// Region identifies one of the address space regions.
type Region uint8

// Regions of the address space.
const (
	RegionUnmapped Region = iota
	RegionBIOS
	RegionEWRAM
	RegionIWRAM
	RegionIO
	RegionPalette
	RegionVRAM
	RegionOAM
	RegionROM
)

var regionNames = [...]string{
	RegionUnmapped: "unmapped",
	RegionBIOS:     "bios",
	RegionEWRAM:    "ewram",
	RegionIWRAM:    "iwram",
	RegionIO:       "io",
	RegionPalette:  "palette",
	RegionVRAM:     "vram",
	RegionOAM:      "oam",
	RegionROM:      "rom",
}

func (r Region) String() string {
	if int(r) >= len(regionNames) {
		return "unmapped"
	}
	return regionNames[r]
}

// Region bases and declared sizes.
const (
	BIOSStart = 0x00000000
	BIOSSize  = 0x4000

	EWRAMStart = 0x02000000
	EWRAMSize  = 0x40000

	IWRAMStart = 0x03000000
	IWRAMSize  = 0x8000

	IOStart = 0x04000000
	IOSize  = 0x400

	PaletteStart = 0x05000000
	PaletteSize  = 0x400

	VRAMStart = 0x06000000
	VRAMSize  = 0x18000

	OAMStart = 0x07000000
	OAMSize  = 0x400

	ROMStart       = 0x08000000
	ROMMaxSize     = 0x02000000
	ROMAlias1Start = 0x0A000000
	ROMAlias2Start = 0x0C000000
	ROMAliasEnd    = 0x0E000000
)

// vramFoldEnd is the last address of the VRAM window whose upper 32K folds
// back onto the object tiles at 0x06010000.
const (
	vramFoldEnd  = 0x0601FFFF
	vramFoldSize = 0x8000
)

// TrapValue is returned by reads of addresses that map to no storage.
const TrapValue = 0x00

// RegionOf returns the region an address falls in, including mirrors and
// ROM aliases. Addresses with no storage behind them return RegionUnmapped;
// ROM addresses are reported as RegionROM whether or not the loaded image
// reaches them.
func RegionOf(addr uint32) Region {
	switch addr >> 24 {
	case 0x00:
		if addr < BIOSSize {
			return RegionBIOS
		}
	case 0x02:
		return RegionEWRAM
	case 0x03:
		return RegionIWRAM
	case 0x04:
		if addr-IOStart < IOSize {
			return RegionIO
		}
	case 0x05:
		return RegionPalette
	case 0x06:
		return RegionVRAM
	case 0x07:
		return RegionOAM
	case 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D:
		return RegionROM
	}
	return RegionUnmapped
}

// mirror maps an address to its region and the offset into that region's
// storage, folding mirrors and ROM aliases. RAM regions repeat every
// declared size up to the next region's base.
func mirror(addr uint32) (Region, uint32) {
	region := RegionOf(addr)

	switch region {
	case RegionBIOS:
		return region, addr - BIOSStart
	case RegionEWRAM:
		return region, (addr - EWRAMStart) % EWRAMSize
	case RegionIWRAM:
		return region, (addr - IWRAMStart) % IWRAMSize
	case RegionIO:
		return region, addr - IOStart
	case RegionPalette:
		return region, (addr - PaletteStart) % PaletteSize
	case RegionVRAM:
		off := addr - VRAMStart
		if off >= VRAMSize {
			if addr <= vramFoldEnd {
				off -= vramFoldSize
			} else {
				off %= VRAMSize
			}
		}
		return region, off
	case RegionOAM:
		return region, (addr - OAMStart) % OAMSize
	case RegionROM:
		return region, (addr - ROMStart) % ROMMaxSize
	default:
		return RegionUnmapped, 0
	}
}

// direct maps an address to its region and storage offset without
// mirroring: only addresses inside a region's declared storage, and the
// ROM's base alias, resolve.
func direct(addr uint32) (Region, uint32) {
	region := RegionOf(addr)

	var base, size uint32
	switch region {
	case RegionBIOS:
		base, size = BIOSStart, BIOSSize
	case RegionEWRAM:
		base, size = EWRAMStart, EWRAMSize
	case RegionIWRAM:
		base, size = IWRAMStart, IWRAMSize
	case RegionIO:
		base, size = IOStart, IOSize
	case RegionPalette:
		base, size = PaletteStart, PaletteSize
	case RegionVRAM:
		base, size = VRAMStart, VRAMSize
	case RegionOAM:
		base, size = OAMStart, OAMSize
	case RegionROM:
		base, size = ROMStart, ROMMaxSize
	default:
		return RegionUnmapped, 0
	}

	if addr-base >= size {
		return RegionUnmapped, 0
	}
	return region, addr - base
}
