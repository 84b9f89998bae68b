package latency

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// TimingConfig holds the cycle costs of memory accesses and instruction
// execution. Values are based on the GBA's ARM7TDMI at 16.78 MHz.
type TimingConfig struct {
	// BIOSCycles is the cost of one BIOS access. Default: 1 cycle.
	BIOSCycles uint64 `json:"bios_cycles" yaml:"bios_cycles"`

	// EWRAMCycles is the cost of one 16-bit EWRAM access, including its two
	// wait states. Default: 3 cycles.
	EWRAMCycles uint64 `json:"ewram_cycles" yaml:"ewram_cycles"`

	// IWRAMCycles is the cost of one IWRAM access. Default: 1 cycle.
	IWRAMCycles uint64 `json:"iwram_cycles" yaml:"iwram_cycles"`

	// IOCycles is the cost of one I/O register access. Default: 1 cycle.
	IOCycles uint64 `json:"io_cycles" yaml:"io_cycles"`

	// PaletteCycles is the cost of one 16-bit palette access. Default: 1 cycle.
	PaletteCycles uint64 `json:"palette_cycles" yaml:"palette_cycles"`

	// VRAMCycles is the cost of one 16-bit VRAM access. Default: 1 cycle.
	VRAMCycles uint64 `json:"vram_cycles" yaml:"vram_cycles"`

	// OAMCycles is the cost of one OAM access. Default: 1 cycle.
	OAMCycles uint64 `json:"oam_cycles" yaml:"oam_cycles"`

	// UnmappedCycles is the cost of an access that hits no storage.
	// Default: 1 cycle.
	UnmappedCycles uint64 `json:"unmapped_cycles" yaml:"unmapped_cycles"`

	// BranchRefillCycles is the extra cost of refilling the pipeline after
	// a taken branch. Default: 2 cycles.
	BranchRefillCycles uint64 `json:"branch_refill_cycles" yaml:"branch_refill_cycles"`

	// MultiplyStepCycles is the internal cost of each 8-bit step of the
	// multiplier. Default: 1 cycle.
	MultiplyStepCycles uint64 `json:"multiply_step_cycles" yaml:"multiply_step_cycles"`

	// PrefetchEnabled turns on the cartridge prefetch buffer.
	// Default: true.
	PrefetchEnabled bool `json:"prefetch_enabled" yaml:"prefetch_enabled"`

	// PrefetchLines is the number of lines the prefetch buffer holds.
	// Default: 8.
	PrefetchLines int `json:"prefetch_lines" yaml:"prefetch_lines"`

	// PrefetchLineSize is the size of a prefetch line in bytes. Must be a
	// power of two. Default: 16.
	PrefetchLineSize int `json:"prefetch_line_size" yaml:"prefetch_line_size"`
}

// DefaultTimingConfig returns a TimingConfig with GBA default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		BIOSCycles:         1,
		EWRAMCycles:        3,
		IWRAMCycles:        1,
		IOCycles:           1,
		PaletteCycles:      1,
		VRAMCycles:         1,
		OAMCycles:          1,
		UnmappedCycles:     1,
		BranchRefillCycles: 2,
		MultiplyStepCycles: 1,
		PrefetchEnabled:    true,
		PrefetchLines:      8,
		PrefetchLineSize:   16,
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// LoadConfig loads a TimingConfig from a JSON file, or a YAML file when the
// extension is .yaml or .yml. Fields missing from the file keep their
// defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a file, as YAML when the extension
// is .yaml or .yml and as JSON otherwise.
func (c *TimingConfig) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all cycle costs are valid (> 0) and that the
// prefetch buffer geometry is usable.
func (c *TimingConfig) Validate() error {
	costs := []struct {
		name  string
		value uint64
	}{
		{"bios_cycles", c.BIOSCycles},
		{"ewram_cycles", c.EWRAMCycles},
		{"iwram_cycles", c.IWRAMCycles},
		{"io_cycles", c.IOCycles},
		{"palette_cycles", c.PaletteCycles},
		{"vram_cycles", c.VRAMCycles},
		{"oam_cycles", c.OAMCycles},
		{"unmapped_cycles", c.UnmappedCycles},
		{"multiply_step_cycles", c.MultiplyStepCycles},
	}
	for _, cost := range costs {
		if cost.value == 0 {
			return fmt.Errorf("%s must be > 0", cost.name)
		}
	}

	if !c.PrefetchEnabled {
		return nil
	}
	if c.PrefetchLines <= 0 {
		return fmt.Errorf("prefetch_lines must be > 0")
	}
	if c.PrefetchLineSize < 2 || c.PrefetchLineSize&(c.PrefetchLineSize-1) != 0 {
		return fmt.Errorf("prefetch_line_size must be a power of two >= 2")
	}

	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
