// Package main provides the entry point for gbasim.
// gbasim is a GBA ARM7TDMI decode/dispatch core with an optional timing
// model built on Akita.
//
// For the full CLI, use: go run ./cmd/gbasim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("gbasim - GBA ARM7TDMI Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: gbasim [options] <rom.gba>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -bios              Path to a BIOS image")
	fmt.Println("  -timing            Enable timing simulation mode")
	fmt.Println("  -config            Path to timing configuration JSON or YAML file")
	fmt.Println("  -max-instructions  Instruction limit")
	fmt.Println("  -frames            Frames to run in timing mode")
	fmt.Println("  -v                 Log verbosity")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/gbasim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/gbasim' instead.")
	}
}
