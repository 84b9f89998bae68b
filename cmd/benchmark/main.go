// Command benchmark runs the gbasim timing microbenchmarks.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv          Output results in CSV format (default: human-readable)
//	-no-prefetch  Disable the cartridge prefetch buffer
//	-n            Instructions to run per benchmark
//
// Example:
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
// The results can be compared against cycle counts measured on hardware to
// calibrate the timing model.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/gbasim/emu"
	"github.com/sarchlab/gbasim/mem"
	"github.com/sarchlab/gbasim/timing/core"
	"github.com/sarchlab/gbasim/timing/latency"
)

const (
	nopARM = 0x0A000000 // BEQ, never taken with Z clear
	mulARM = 0xE0030297 // MUL r3, r7, r2
	mlaARM = 0xE0242297 // MLA r4, r7, r2, r2
)

// benchmark is a loop of ARM instructions placed at base. A branch back to
// base is appended.
type benchmark struct {
	name string
	base uint32
	body []uint32
	regs map[uint8]uint32
}

// branchTo encodes B from pc to target.
func branchTo(pc, target uint32) uint32 {
	offset := int32(target-pc) / 4
	return 0xEA000000 | uint32(offset)&0x00FFFFFF
}

func repeat(word uint32, n int) []uint32 {
	words := make([]uint32, n)
	for i := range words {
		words[i] = word
	}
	return words
}

func microbenchmarks() []benchmark {
	return []benchmark{
		{name: "iwram_spin", base: mem.IWRAMStart},
		{name: "rom_spin", base: mem.ROMStart},
		{name: "iwram_straight_line", base: mem.IWRAMStart, body: repeat(nopARM, 64)},
		{name: "rom_straight_line", base: mem.ROMStart, body: repeat(nopARM, 64)},
		{name: "ewram_straight_line", base: mem.EWRAMStart, body: repeat(nopARM, 64)},
		{
			name: "multiply_short",
			base: mem.IWRAMStart,
			body: repeat(mulARM, 16),
			regs: map[uint8]uint32{2: 0x12, 7: 3},
		},
		{
			name: "multiply_long_operand",
			base: mem.IWRAMStart,
			body: append(repeat(mulARM, 8), repeat(mlaARM, 8)...),
			regs: map[uint8]uint32{2: 0x12345678, 7: 3},
		},
	}
}

type result struct {
	name         string
	instructions uint64
	cycles       uint64
	prefetchHits uint64
	prefetchMiss uint64
}

func (r result) cpi() float64 {
	if r.instructions == 0 {
		return 0
	}
	return float64(r.cycles) / float64(r.instructions)
}

func runBenchmark(b benchmark, config *latency.TimingConfig, n uint64) (result, error) {
	as := mem.NewAddressSpace()
	if err := as.LoadROM(make([]byte, 0x1000)); err != nil {
		return result{}, err
	}

	program := append(append([]uint32{}, b.body...), 0)
	last := b.base + uint32(len(b.body))*4
	program[len(program)-1] = branchTo(last, b.base)
	for i, w := range program {
		as.Write32Unprotected(b.base+uint32(i)*4, w)
	}

	e := emu.NewEmulator(
		emu.WithAddressSpace(as),
		emu.WithEntryPoint(b.base),
		emu.WithMaxInstructions(n),
	)
	for reg, v := range b.regs {
		e.RegFile().Write(reg, v)
	}

	c := core.NewCore(e, core.WithTable(latency.NewTableWithConfig(config)))
	if err := c.Run(); err != nil && !errors.Is(err, emu.ErrMaxInstructions) {
		return result{}, err
	}

	stats := c.Stats()
	return result{
		name:         b.name,
		instructions: stats.Instructions,
		cycles:       stats.Cycles,
		prefetchHits: stats.Prefetch.Hits,
		prefetchMiss: stats.Prefetch.Misses,
	}, nil
}

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	noPrefetch := flag.Bool("no-prefetch", false, "Disable the cartridge prefetch buffer")
	n := flag.Uint64("n", 100000, "Instructions to run per benchmark")
	flag.Parse()

	config := latency.DefaultTimingConfig()
	config.PrefetchEnabled = !*noPrefetch

	if !*csvOutput {
		fmt.Println("gbasim Timing Benchmark Harness")
		fmt.Println("===============================")
		fmt.Printf("Prefetch buffer: %v\n", config.PrefetchEnabled)
		fmt.Printf("Instructions per benchmark: %d\n", *n)
		fmt.Println("")
	} else {
		fmt.Println("name,instructions,cycles,cpi,prefetch_hits,prefetch_misses")
	}

	for _, b := range microbenchmarks() {
		r, err := runBenchmark(b, config, *n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", b.name, err)
			os.Exit(1)
		}

		if *csvOutput {
			fmt.Printf("%s,%d,%d,%.3f,%d,%d\n",
				r.name, r.instructions, r.cycles, r.cpi(), r.prefetchHits, r.prefetchMiss)
			continue
		}

		fmt.Printf("%-24s %8d insts %10d cycles  CPI %5.2f  prefetch %d/%d\n",
			r.name, r.instructions, r.cycles, r.cpi(), r.prefetchHits, r.prefetchHits+r.prefetchMiss)
	}
}
