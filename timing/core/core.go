// Package core provides the timed CPU core model.
// It wraps the functional emulator, charges each step its memory and
// execution cycles, and clocks the display by the cycles consumed.
package core

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/gbasim/display"
	"github.com/sarchlab/gbasim/emu"
	"github.com/sarchlab/gbasim/mem"
	"github.com/sarchlab/gbasim/timing/cache"
	"github.com/sarchlab/gbasim/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions stepped, faults included.
	Instructions uint64
	// Skipped is the number of instructions whose condition failed.
	Skipped uint64
	// Branches is the number of instructions that wrote the PC.
	Branches uint64
	// Faults is the number of instructions that faulted and were skipped.
	Faults uint64
	// Frames is the number of display frames completed.
	Frames uint64
	// Prefetch holds the prefetch buffer statistics.
	Prefetch cache.Statistics
}

// Core represents a timed ARM7TDMI core driving the display clock.
type Core struct {
	emulator *emu.Emulator
	table    *latency.Table
	prefetch *cache.PrefetchBuffer
	clock    *display.Clock

	log logr.Logger

	stats      Stats
	sequential bool
	nextFetch  uint32
}

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithTable sets the latency table. By default the GBA defaults are used.
func WithTable(table *latency.Table) Option {
	return func(c *Core) {
		c.table = table
	}
}

// WithLogger sets the logger used to report step faults.
func WithLogger(log logr.Logger) Option {
	return func(c *Core) {
		c.log = log
	}
}

// NewCore creates a new Core around an emulator. The display clock drives
// the status of the emulator's address space.
func NewCore(emulator *emu.Emulator, opts ...Option) *Core {
	c := &Core{
		emulator: emulator,
		table:    latency.NewTable(),
		clock:    display.NewClock(emulator.Memory().Status()),
		log:      logr.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	config := c.table.Config()
	if config.PrefetchEnabled {
		c.prefetch = cache.New(cache.Config{
			Lines:      config.PrefetchLines,
			LineSize:   config.PrefetchLineSize,
			HitLatency: 1,
		})
	}

	return c
}

// Emulator returns the wrapped emulator.
func (c *Core) Emulator() *emu.Emulator {
	return c.emulator
}

// Clock returns the display clock.
func (c *Core) Clock() *display.Clock {
	return c.clock
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	stats := c.stats
	stats.Frames = c.clock.Frames()
	if c.prefetch != nil {
		stats.Prefetch = c.prefetch.Stats()
	}
	return stats
}

// Step executes one instruction, charges its cycles and advances the
// display clock. A skipped instruction is charged its fetch only. A
// faulting instruction is logged and skipped. The result of the emulator
// step is returned unchanged.
func (c *Core) Step() emu.StepResult {
	result := c.emulator.Step()
	if result.Inst == nil {
		return result
	}

	cycles := c.fetchCycles(result.PC, result.Inst.Size())
	if !result.Skipped {
		cycles += c.table.ExecuteCycles(result.Inst, result.Multiplier, result.Branched)
	}

	c.stats.Instructions++
	c.stats.Cycles += cycles

	switch {
	case result.Err != nil:
		c.stats.Faults++
		c.log.V(1).Info("step fault", "pc", fmt.Sprintf("0x%08X", result.PC),
			"err", result.Err.Error())
		c.emulator.SkipFault(result)
	case result.Skipped:
		c.stats.Skipped++
	}

	if result.Branched {
		c.stats.Branches++
		c.sequential = false
		if c.prefetch != nil {
			c.prefetch.Flush()
		}
	} else {
		c.sequential = true
		c.nextFetch = result.PC + result.Inst.Size()
	}

	c.clock.Advance(cycles)

	return result
}

// fetchCycles returns the cost of fetching an instruction of width bytes.
func (c *Core) fetchCycles(pc, width uint32) uint64 {
	region := mem.RegionOf(pc)

	if region == mem.RegionROM && c.prefetch != nil {
		if c.prefetch.Fetch(pc).Hit {
			return c.prefetch.Config().HitLatency
		}
	}

	sequential := c.sequential && pc == c.nextFetch
	return c.table.AccessCycles(region, c.emulator.Memory().WaitStates(), sequential, width)
}

// Run executes until the emulator's instruction limit is reached. Without
// a limit Run does not return.
func (c *Core) Run() error {
	for {
		result := c.Step()
		if errors.Is(result.Err, emu.ErrMaxInstructions) {
			return nil
		}
	}
}

// RunFrames executes until n more display frames have completed. It
// returns emu.ErrMaxInstructions if the instruction limit is reached first.
func (c *Core) RunFrames(n uint64) error {
	target := c.clock.Frames() + n
	for c.clock.Frames() < target {
		result := c.Step()
		if errors.Is(result.Err, emu.ErrMaxInstructions) {
			return fmt.Errorf("stopped after %d of %d frames: %w",
				n-(target-c.clock.Frames()), n, result.Err)
		}
	}
	return nil
}

// Reset resets the emulator, the prefetch buffer and the statistics. The
// display clock keeps running.
func (c *Core) Reset() {
	c.emulator.Reset()
	if c.prefetch != nil {
		c.prefetch.Reset()
	}
	c.stats = Stats{}
	c.sequential = false
	c.nextFetch = 0
}
