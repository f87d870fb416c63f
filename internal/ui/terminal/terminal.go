package terminal

import (
	"github.com/BourgeoisBear/rasterm"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/scrollbook/internal/config"
	"github.com/justyntemme/scrollbook/internal/engine"
)

// TermImageMode represents the terminal's image display capability
type TermImageMode int

const (
	// TermModeNone indicates no image support
	TermModeNone TermImageMode = iota
	// TermModeKitty indicates Kitty graphics protocol support
	TermModeKitty
	// TermModeIterm indicates iTerm2 graphics protocol support
	TermModeIterm
	// TermModeSixel indicates Sixel graphics protocol support
	TermModeSixel
)

// String returns a human-readable name for the terminal mode
func (m TermImageMode) String() string {
	switch m {
	case TermModeKitty:
		return "Kitty"
	case TermModeIterm:
		return "iTerm2"
	case TermModeSixel:
		return "Sixel"
	default:
		return "None"
	}
}

// DetectTerminalMode checks which image protocol the terminal supports. It
// may query the terminal, so call it before the program takes over the tty.
func DetectTerminalMode() TermImageMode {
	if rasterm.IsKittyCapable() {
		return TermModeKitty
	}
	if rasterm.IsItermCapable() {
		return TermModeIterm
	}
	if capable, _ := rasterm.IsSixelCapable(); capable {
		return TermModeSixel
	}
	return TermModeNone
}

// ResolveMouse turns the auto mouse mode into a concrete one. Terminals that
// speak a graphics protocol are recent enough to report plain motion.
func ResolveMouse(mouse string, graphics TermImageMode) string {
	if mouse != config.MouseAuto {
		return mouse
	}
	if graphics != TermModeNone {
		return config.MouseAll
	}
	return config.MouseCell
}

// Environment describes the terminal's input to the engine. The screen width
// is filled in by the host.
func Environment(mouse string, touch bool) engine.Environment {
	env := engine.Environment{HasTouchEvents: touch}
	if touch {
		env.MaxTouchPoints = 1
	}
	switch mouse {
	case config.MouseAll:
		env.Hover = true
		env.FinePointer = true
	case config.MouseCell:
		// buttons and drags only, no hover
		env.FinePointer = true
	}
	return env
}

// ProgramOptions returns the bubbletea options for a resolved mouse mode
func ProgramOptions(mouse string) []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	switch mouse {
	case config.MouseAll:
		opts = append(opts, tea.WithMouseAllMotion())
	case config.MouseCell:
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return opts
}
