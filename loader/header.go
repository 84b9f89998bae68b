package loader

import "strings"

// Cartridge header layout.
const (
	headerTitle      = 0xA0
	headerGameCode   = 0xAC
	headerMakerCode  = 0xB0
	headerFixed      = 0xB2
	headerVersion    = 0xBC
	headerComplement = 0xBD
	headerSize       = 0xC0

	headerFixedValue = 0x96
)

// Header holds the identifying fields of a cartridge header.
type Header struct {
	Title     string
	GameCode  string
	MakerCode string
	Version   uint8

	// Valid is true if the fixed byte and the header complement check
	// both match.
	Valid bool
}

// ParseHeader reads the cartridge header from the start of a ROM image.
// Images too short to hold a header yield a zero, invalid Header.
func ParseHeader(rom []byte) Header {
	if len(rom) < headerSize {
		return Header{}
	}

	h := Header{
		Title:     field(rom[headerTitle:headerGameCode]),
		GameCode:  field(rom[headerGameCode:headerMakerCode]),
		MakerCode: field(rom[headerMakerCode:headerFixed]),
		Version:   rom[headerVersion],
	}

	h.Valid = rom[headerFixed] == headerFixedValue &&
		rom[headerComplement] == Complement(rom)

	return h
}

// Complement computes the header complement check over bytes 0xA0-0xBC.
func Complement(rom []byte) uint8 {
	var chk uint8
	for _, b := range rom[headerTitle:headerComplement] {
		chk -= b
	}
	return chk - 0x19
}

func field(b []byte) string {
	return strings.TrimRight(string(b), "\x00 ")
}
