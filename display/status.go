// Package display holds the side channel shared between the memory
// subsystem and the display collaborator, and the clock that advances the
// display's scanline counters.
package display

// DisplayControl holds the fields decoded from DISPCNT.
type DisplayControl struct {
	Mode          uint8 // bits 0-2: video mode
	CGBMode       uint8 // bit 3
	PageSelect    uint8 // bit 4: bitmap frame select
	HBlankFree    uint8 // bit 5: OAM access during hblank
	ObjMapping    uint8 // bit 6: 0 = 2D, 1 = 1D
	ForcedBlank   uint8 // bit 7
	ObjEnabled    uint8 // bit 12
	WindowEnabled uint8 // bits 13-15
}

// BackgroundControl holds the fields decoded from BGxCNT and the background
// enable bit of DISPCNT.
type BackgroundControl struct {
	Enabled         uint8 // DISPCNT bit 8+x
	Priority        uint8 // bits 0-1
	CharBaseBlock   uint8 // bits 2-3
	Mosaic          uint8 // bit 6
	ColorMode       uint8 // bit 7: 0 = 4bpp, 1 = 8bpp
	ScreenBaseBlock uint8 // bits 8-12
	AffineWrap      uint8 // bit 13
	Size            uint8 // bits 14-15
}

// NumBackgrounds is the number of background layers.
const NumBackgrounds = 4

// Status is the live hardware state shared by the memory subsystem and the
// display. Every field has exactly one writer: the timing fields are written
// by Clock, the control fields by the memory subsystem's register writes.
type Status struct {
	// Written by Clock.
	InVBlank        bool
	InHBlank        bool
	CurrentScanline uint8
	ScanlinePixel   uint16

	// Written by the memory subsystem.
	DisplayControl DisplayControl
	Backgrounds    [NumBackgrounds]BackgroundControl
}

// NewStatus returns a zeroed Status.
func NewStatus() *Status {
	return &Status{}
}
