package engine

// DefaultTouchBreakpoint is the widest screen still treated as touch
const DefaultTouchBreakpoint = 767

// DeviceMode classifies the input environment
type DeviceMode int

const (
	ModePointer DeviceMode = iota
	ModeTouch
)

// String returns the name of the mode
func (m DeviceMode) String() string {
	if m == ModeTouch {
		return "touch"
	}
	return "pointer"
}

// DeviceDetector classifies environments as touch or pointer driven
type DeviceDetector struct {
	Breakpoint float64
}

// Detect returns the mode for env. Small screens are always touch, touch
// capable devices are touch unless they also hover with a fine pointer.
func (d DeviceDetector) Detect(env Environment) DeviceMode {
	breakpoint := d.Breakpoint
	if breakpoint <= 0 {
		breakpoint = DefaultTouchBreakpoint
	}
	touchCapable := env.HasTouchEvents || env.MaxTouchPoints > 0
	small := env.ScreenWidth <= breakpoint
	if (touchCapable && (small || !env.Hover || !env.FinePointer)) || small {
		return ModeTouch
	}
	return ModePointer
}
