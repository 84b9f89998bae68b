// Package main provides the entry point for gbasim.
// gbasim runs GBA cartridge code on a functional ARM7TDMI model, optionally
// with cycle accounting that drives the display's scanline clock.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/rs/xid"

	"github.com/sarchlab/gbasim/emu"
	"github.com/sarchlab/gbasim/loader"
	"github.com/sarchlab/gbasim/mem"
	"github.com/sarchlab/gbasim/timing/core"
	"github.com/sarchlab/gbasim/timing/latency"
)

var (
	biosPath        = flag.String("bios", "", "Path to a BIOS image; boots the cartridge directly if empty")
	configPath      = flag.String("config", "", "Path to timing configuration file (JSON or YAML)")
	maxInstructions = flag.Uint64("max-instructions", 1000000, "Stop after this many instructions (0 means no limit)")
	frames          = flag.Uint64("frames", 1, "Number of display frames to run in timing mode")
	timing          = flag.Bool("timing", false, "Enable timing simulation mode")
	verbose         = flag.Int("v", 0, "Log verbosity")
)

// options collects the command line settings of one run.
type options struct {
	romPath         string
	biosPath        string
	configPath      string
	maxInstructions uint64
	frames          uint64
	timing          bool
	verbosity       int
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: gbasim [options] <rom.gba>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	opts := options{
		romPath:         flag.Arg(0),
		biosPath:        *biosPath,
		configPath:      *configPath,
		maxInstructions: *maxInstructions,
		frames:          *frames,
		timing:          *timing,
		verbosity:       *verbose,
	}

	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the text logger used by every component of a session.
func newLogger(w io.Writer, verbosity int, session xid.ID) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity}).WithValues("session", session.String())
}

// run loads the program and executes one session.
func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	session := xid.New()
	log := newLogger(stderr, opts.verbosity, session)

	prog, err := loader.LoadImages(ctx, opts.romPath, opts.biosPath)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	as := mem.NewAddressSpace(mem.WithLogger(log.WithName("mem")))
	if err := prog.Install(as); err != nil {
		return err
	}

	log.V(1).Info("loaded",
		"rom", prog.ROM.Path,
		"title", prog.Header.Title,
		"game", prog.Header.GameCode,
		"entry", fmt.Sprintf("0x%08X", prog.EntryPoint))
	if !prog.Header.Valid {
		log.Info("warning: cartridge header check failed", "rom", prog.ROM.Path)
	}

	emulator := emu.NewEmulator(
		emu.WithSessionID(session),
		emu.WithAddressSpace(as),
		emu.WithEntryPoint(prog.EntryPoint),
		emu.WithMaxInstructions(opts.maxInstructions),
		emu.WithLogger(log.WithName("emu")),
	)

	if opts.timing {
		return runTiming(emulator, opts, log, stdout)
	}
	return runEmulation(emulator, opts, stdout)
}

// runEmulation runs the program in functional emulation mode.
func runEmulation(emulator *emu.Emulator, opts options, stdout io.Writer) error {
	if opts.maxInstructions == 0 {
		return fmt.Errorf("functional mode needs an instruction limit")
	}

	if err := emulator.Run(); !errors.Is(err, emu.ErrMaxInstructions) {
		return err
	}

	regFile := emulator.RegFile()
	stats := emulator.Memory().Stats()

	fmt.Fprintf(stdout, "\nSession: %s\n", emulator.ID())
	fmt.Fprintf(stdout, "ROM: %s\n", opts.romPath)
	fmt.Fprintf(stdout, "Instructions executed: %d\n", emulator.InstructionCount())
	fmt.Fprintf(stdout, "PC: 0x%08X (%s, %s)\n", regFile.PC(), regFile.InstructionSet(), regFile.Mode())
	fmt.Fprintf(stdout, "Unmapped reads/writes: %d/%d\n", stats.UnmappedReads, stats.UnmappedWrites)
	fmt.Fprintf(stdout, "ROM writes: %d\n", stats.RomWrites)

	return nil
}

// runTiming runs the program in timing simulation mode.
func runTiming(emulator *emu.Emulator, opts options, log logr.Logger, stdout io.Writer) error {
	timingConfig := latency.DefaultTimingConfig()
	if opts.configPath != "" {
		var err error
		timingConfig, err = latency.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
	}
	if err := timingConfig.Validate(); err != nil {
		return fmt.Errorf("invalid timing config: %w", err)
	}

	c := core.NewCore(emulator,
		core.WithTable(latency.NewTableWithConfig(timingConfig)),
		core.WithLogger(log.WithName("core")),
	)

	err := c.RunFrames(opts.frames)
	if err != nil && !errors.Is(err, emu.ErrMaxInstructions) {
		return err
	}
	if err != nil {
		log.Info("instruction limit reached", "limit", opts.maxInstructions)
	}

	stats := c.Stats()
	cpi := 0.0
	if stats.Instructions > 0 {
		cpi = float64(stats.Cycles) / float64(stats.Instructions)
	}

	fmt.Fprintf(stdout, "\n")
	fmt.Fprintf(stdout, "Session: %s\n", emulator.ID())
	fmt.Fprintf(stdout, "ROM: %s\n", opts.romPath)
	fmt.Fprintf(stdout, "Total Instructions: %d\n", stats.Instructions)
	fmt.Fprintf(stdout, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(stdout, "CPI: %.2f\n", cpi)
	fmt.Fprintf(stdout, "Frames: %d\n", stats.Frames)
	fmt.Fprintf(stdout, "\n")
	fmt.Fprintf(stdout, "Events:\n")
	fmt.Fprintf(stdout, "  Skipped:  %d\n", stats.Skipped)
	fmt.Fprintf(stdout, "  Branches: %d\n", stats.Branches)
	fmt.Fprintf(stdout, "  Faults:   %d\n", stats.Faults)
	fmt.Fprintf(stdout, "\n")
	fmt.Fprintf(stdout, "Prefetch buffer:\n")
	fmt.Fprintf(stdout, "  Hits:   %d\n", stats.Prefetch.Hits)
	fmt.Fprintf(stdout, "  Misses: %d\n", stats.Prefetch.Misses)

	return nil
}
