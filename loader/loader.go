// Package loader reads GBA cartridge ROM and BIOS images from disk.
package loader

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/gbasim/mem"
)

// Image is the contents of a ROM or BIOS file.
type Image struct {
	// Path is the file the image was read from.
	Path string
	// Data contains the file contents.
	Data []byte
}

// Program is a cartridge, with an optional BIOS, ready to be installed in
// an address space.
type Program struct {
	// ROM is the cartridge image.
	ROM *Image
	// BIOS is the BIOS image, or nil to boot the cartridge directly.
	BIOS *Image
	// Header is the parsed cartridge header.
	Header Header
	// EntryPoint is where execution begins: the reset vector when a BIOS is
	// present, otherwise the start of the cartridge.
	EntryPoint uint32
}

// LoadROM reads a cartridge image.
func LoadROM(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM image: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("ROM image %s is empty", path)
	}
	if len(data) > mem.ROMMaxSize {
		return nil, fmt.Errorf("ROM image %s is %d bytes, limit is %d",
			path, len(data), mem.ROMMaxSize)
	}

	return &Image{Path: path, Data: data}, nil
}

// LoadBIOS reads a BIOS image.
func LoadBIOS(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read BIOS image: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("BIOS image %s is empty", path)
	}
	if len(data) > mem.BIOSSize {
		return nil, fmt.Errorf("BIOS image %s is %d bytes, limit is %d",
			path, len(data), mem.BIOSSize)
	}

	return &Image{Path: path, Data: data}, nil
}

// LoadImages reads the cartridge and, if biosPath is not empty, the BIOS
// concurrently.
func LoadImages(ctx context.Context, romPath, biosPath string) (*Program, error) {
	prog := &Program{EntryPoint: mem.ROMStart}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		img, err := LoadROM(romPath)
		if err != nil {
			return err
		}
		prog.ROM = img
		return ctx.Err()
	})

	if biosPath != "" {
		g.Go(func() error {
			img, err := LoadBIOS(biosPath)
			if err != nil {
				return err
			}
			prog.BIOS = img
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	prog.Header = ParseHeader(prog.ROM.Data)
	if prog.BIOS != nil {
		prog.EntryPoint = mem.BIOSStart
	}

	return prog, nil
}

// Install copies the images into an address space.
func (p *Program) Install(as *mem.AddressSpace) error {
	if p.ROM == nil {
		return fmt.Errorf("program has no ROM image")
	}

	if err := as.LoadROM(p.ROM.Data); err != nil {
		return fmt.Errorf("failed to install ROM: %w", err)
	}

	if p.BIOS != nil {
		if err := as.LoadBIOS(p.BIOS.Data); err != nil {
			return fmt.Errorf("failed to install BIOS: %w", err)
		}
	}

	return nil
}
