package styles

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/scrollbook/internal/engine"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Page holds the terminal styles of one document theme
type Page struct {
	Name string

	// Text paints document rows on the theme background
	Text lipgloss.Style
	// Label draws indicator labels in the theme's text color
	Label lipgloss.Style

	Fill      lipgloss.Color // indicator progress
	Empty     lipgloss.Color // indicator track
	Collapsed lipgloss.Color // indicator at rest
}

var (
	pagesMu sync.Mutex
	pages   = map[string]Page{}
)

// PageFor returns the styles of an engine theme. The default theme leaves
// the terminal's own colors alone.
func PageFor(t engine.Theme) Page {
	pagesMu.Lock()
	defer pagesMu.Unlock()
	if p, ok := pages[t.Name]; ok {
		return p
	}

	p := Page{
		Name:      t.Name,
		Text:      lipgloss.NewStyle(),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.Palette.Text)).Bold(true),
		Fill:      lipgloss.Color(t.Palette.Fill),
		Empty:     lipgloss.Color(t.Palette.Empty),
		Collapsed: lipgloss.Color(Blend(t.Palette.Fill, t.Palette.Empty, 0.5)),
	}
	if t.Name != engine.Themes[0].Name {
		p.Text = p.Text.
			Background(lipgloss.Color(t.Reference)).
			Foreground(lipgloss.Color(t.Palette.Text))
	}
	pages[t.Name] = p
	return p
}

// Blend mixes two hex colors in Lab space, t=0 is a and t=1 is b. Unparsable
// input returns a unchanged.
func Blend(a, b string, t float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return a
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	return ca.BlendLab(cb, t).Clamped().Hex()
}
