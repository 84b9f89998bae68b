// Package cache models the cartridge prefetch buffer using Akita cache
// components.
//
// The buffer tracks which ROM lines have already been streamed in ahead of
// the CPU. Instruction fetches that hit a buffered line cost one cycle
// instead of a full cartridge access. Only tags are tracked: instruction
// bytes always come from the address space.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/gbasim/mem"
)

// Config holds prefetch buffer parameters.
type Config struct {
	// Lines is the number of lines the buffer holds.
	Lines int
	// LineSize in bytes. Must be a power of two.
	LineSize int
	// HitLatency in cycles.
	HitLatency uint64
}

// DefaultConfig returns the default prefetch buffer geometry: eight 16-byte
// lines, fully associative.
func DefaultConfig() Config {
	return Config{
		Lines:      8,
		LineSize:   16,
		HitLatency: 1,
	}
}

// AccessResult contains the result of a prefetch buffer lookup.
type AccessResult struct {
	// Hit indicates whether the fetch was served from the buffer.
	Hit bool
	// Evicted is true if filling the line displaced another one.
	Evicted bool
	// EvictedAddr is the cartridge offset of the displaced line.
	EvictedAddr uint32
}

// Statistics holds prefetch buffer statistics.
type Statistics struct {
	Fetches   uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// PrefetchBuffer is a fully associative, LRU buffer of cartridge lines.
type PrefetchBuffer struct {
	config    Config
	directory *akitacache.DirectoryImpl
	stats     Statistics
}

// New creates a prefetch buffer with the given configuration.
func New(config Config) *PrefetchBuffer {
	return &PrefetchBuffer{
		config: config,
		directory: akitacache.NewDirectory(
			1,
			config.Lines,
			config.LineSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the buffer configuration.
func (p *PrefetchBuffer) Config() Config {
	return p.config
}

// Stats returns buffer statistics.
func (p *PrefetchBuffer) Stats() Statistics {
	return p.stats
}

// ResetStats clears buffer statistics.
func (p *PrefetchBuffer) ResetStats() {
	p.stats = Statistics{}
}

// lineAddr maps a ROM address, through any alias, to the cartridge offset
// of its line.
func (p *PrefetchBuffer) lineAddr(addr uint32) uint64 {
	off := (addr - mem.ROMStart) % mem.ROMMaxSize
	return uint64(off &^ uint32(p.config.LineSize-1))
}

// Contains reports whether the line holding addr is buffered.
func (p *PrefetchBuffer) Contains(addr uint32) bool {
	block := p.directory.Lookup(0, p.lineAddr(addr))
	return block != nil && block.IsValid
}

// Fetch looks up an instruction fetch from ROM. On a miss the line is
// filled and the following line is prefetched, so straight-line code
// streams through the buffer.
func (p *PrefetchBuffer) Fetch(addr uint32) AccessResult {
	p.stats.Fetches++

	line := p.lineAddr(addr)
	block := p.directory.Lookup(0, line)

	if block != nil && block.IsValid {
		p.stats.Hits++
		p.directory.Visit(block)
		p.prefetch(line + uint64(p.config.LineSize))
		return AccessResult{Hit: true}
	}

	p.stats.Misses++
	result := p.fill(line)
	p.prefetch(line + uint64(p.config.LineSize))

	return result
}

// prefetch fills line if it is not already buffered.
func (p *PrefetchBuffer) prefetch(line uint64) {
	if line >= mem.ROMMaxSize {
		return
	}
	block := p.directory.Lookup(0, line)
	if block != nil && block.IsValid {
		return
	}
	p.fill(line)
}

// fill places line in the buffer, evicting the least recently used line.
func (p *PrefetchBuffer) fill(line uint64) AccessResult {
	var result AccessResult

	victim := p.directory.FindVictim(line)
	if victim == nil {
		return result
	}

	if victim.IsValid {
		p.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = uint32(victim.Tag)
	}

	victim.Tag = line
	victim.IsValid = true
	victim.IsDirty = false
	p.directory.Visit(victim)

	return result
}

// Invalidate drops the line holding addr.
func (p *PrefetchBuffer) Invalidate(addr uint32) {
	block := p.directory.Lookup(0, p.lineAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
	}
}

// Flush drops every line. A taken branch out of straight-line code empties
// the buffer.
func (p *PrefetchBuffer) Flush() {
	for _, set := range p.directory.GetSets() {
		for _, block := range set.Blocks {
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all lines and clears statistics.
func (p *PrefetchBuffer) Reset() {
	p.directory.Reset()
	p.stats = Statistics{}
}
