// Package insts provides ARM7TDMI instruction definitions and decoding.
//
// This package classifies raw ARM (32-bit) and THUMB (16-bit) machine words
// into their architectural instruction formats and extracts the operand
// fields the execution units need. It supports:
//   - Bit range extraction with order-insensitive bounds
//   - The 16 ARM condition codes
//   - All ARM formats (data processing through software interrupt)
//   - All 19 THUMB formats
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0xEA000005) // B +20
//	fmt.Printf("Format: %v, Offset: %d\n", inst.Format, inst.BranchOffset)
package insts
