// Validate decoder throughput and allocations, and classify a ROM's words.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/sarchlab/gbasim/insts"
	"github.com/sarchlab/gbasim/loader"
)

var armWords = []uint32{
	0xEA000000, // B
	0xEB000010, // BL
	0xE12FFF1E, // BX lr
	0xE0030291, // MUL r3, r1, r2
	0xE0854392, // UMULL r4, r5, r2, r3
	0xE3A00001, // MOV r0, #1
}

var thumbHalves = []uint16{
	0xD0FE, // BEQ
	0xE7FE, // B
	0xF000, // BL high
	0xF802, // BL low
	0x4770, // BX lr
	0x2001, // MOV r0, #1
}

func main() {
	romPath := flag.String("rom", "", "Classify every word of this ROM image")
	flag.Parse()

	decoder := insts.NewDecoder()
	var inst insts.Instruction

	// Warm up
	for i := 0; i < 1000; i++ {
		decoder.DecodeInto(armWords[i%len(armWords)], &inst)
		decoder.DecodeThumbInto(thumbHalves[i%len(thumbHalves)], &inst)
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		for _, w := range armWords {
			decoder.DecodeInto(w, &inst)
		}
		for _, h := range thumbHalves {
			decoder.DecodeThumbInto(h, &inst)
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * (len(armWords) + len(thumbHalves))
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))

	if allocations == 0 {
		fmt.Printf("\nSUCCESS: zero allocations in DecodeInto/DecodeThumbInto\n")
	} else {
		fmt.Printf("\nWARNING: decoder allocated on the hot path\n")
	}

	if *romPath == "" {
		return
	}

	image, err := loader.LoadROM(*romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printHistogram("ARM", armHistogram(image.Data))
	printHistogram("THUMB", thumbHistogram(image.Data))
}

func armHistogram(data []byte) map[insts.Format]int {
	counts := make(map[insts.Format]int)
	for i := 0; i+4 <= len(data); i += 4 {
		w := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16 | uint32(data[i+3])<<24
		counts[insts.ClassifyARM(w)]++
	}
	return counts
}

func thumbHistogram(data []byte) map[insts.Format]int {
	counts := make(map[insts.Format]int)
	for i := 0; i+2 <= len(data); i += 2 {
		counts[insts.ClassifyThumb(uint16(data[i])|uint16(data[i+1])<<8)]++
	}
	return counts
}

func printHistogram(name string, counts map[insts.Format]int) {
	formats := make([]insts.Format, 0, len(counts))
	for f := range counts {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool {
		return counts[formats[i]] > counts[formats[j]]
	})

	fmt.Printf("\n%s format histogram:\n", name)
	for _, f := range formats {
		fmt.Printf("  %-24s %d\n", f, counts[f])
	}
}
