package display

// Display timing in CPU cycles.
const (
	ScreenWidth    = 240
	ScreenHeight   = 160
	CyclesPerPixel = 4
	ScanlineCycles = 1232
	NumScanlines   = 228
	RefreshCycles  = ScanlineCycles * NumScanlines // 280896
)

// Clock advances the display's scanline and blanking counters, one CPU
// cycle per Tick. It is the only writer of the timing fields of Status.
type Clock struct {
	status *Status
	cycles uint32
	frames uint64
}

// NewClock creates a Clock driving the timing fields of status.
func NewClock(status *Status) *Clock {
	return &Clock{status: status}
}

// Tick advances the display by one cycle. It returns true when the cycle
// completed a frame.
func (c *Clock) Tick() bool {
	s := c.status
	c.cycles++

	if c.cycles%CyclesPerPixel == 0 {
		s.ScanlinePixel++
	}

	if s.ScanlinePixel == ScreenWidth {
		s.InHBlank = true
	}

	if c.cycles%ScanlineCycles == 0 {
		s.CurrentScanline++
		if s.CurrentScanline == NumScanlines {
			s.CurrentScanline = 0
		}
		s.InHBlank = false
		s.ScanlinePixel = 0
	}

	if s.CurrentScanline == ScreenHeight {
		s.InVBlank = true
	}

	if c.cycles == RefreshCycles {
		c.cycles = 0
		c.frames++
		s.CurrentScanline = 0
		s.ScanlinePixel = 0
		s.InHBlank = false
		s.InVBlank = false
		return true
	}
	return false
}

// Advance ticks the clock n times and returns the number of frames
// completed.
func (c *Clock) Advance(n uint64) int {
	frames := 0
	for i := uint64(0); i < n; i++ {
		if c.Tick() {
			frames++
		}
	}
	return frames
}

// Frames returns the number of completed frames.
func (c *Clock) Frames() uint64 {
	return c.frames
}

// Cycle returns the cycle position within the current frame.
func (c *Clock) Cycle() uint32 {
	return c.cycles
}
