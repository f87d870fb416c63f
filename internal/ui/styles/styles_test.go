package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/scrollbook/internal/engine"
)

func TestTruncateText(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"Chapter", 20, "Chapter"},
		{"A long chapter title", 8, "A long …"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateText(tt.s, tt.width); got != tt.want {
			t.Errorf("TruncateText(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}

func TestBlend(t *testing.T) {
	tests := []struct {
		a, b string
		t    float64
		want string
	}{
		{"#000000", "#ffffff", 0, "#000000"},
		{"#000000", "#ffffff", 1, "#ffffff"},
		{"#123456", "#123456", 0.5, "#123456"},
		{"nope", "#ffffff", 0.5, "nope"},
		{"#000000", "nope", 0.5, "#000000"},
	}
	for _, tt := range tests {
		if got := Blend(tt.a, tt.b, tt.t); got != tt.want {
			t.Errorf("Blend(%q, %q, %v) = %q, want %q", tt.a, tt.b, tt.t, got, tt.want)
		}
	}
}

func TestPageFor(t *testing.T) {
	blue, _ := engine.ThemeByName("blue")
	p := PageFor(blue)
	if p.Name != "blue" {
		t.Errorf("Name = %q, want blue", p.Name)
	}
	if p.Fill != lipgloss.Color(blue.Palette.Fill) || p.Empty != lipgloss.Color(blue.Palette.Empty) {
		t.Errorf("Fill/Empty = %v/%v, want the palette colors", p.Fill, p.Empty)
	}
	if p.Collapsed == p.Fill || p.Collapsed == p.Empty {
		t.Errorf("Collapsed = %v, want a blend of fill and track", p.Collapsed)
	}
	if got := p.Text.GetBackground(); got != lipgloss.Color(blue.Reference) {
		t.Errorf("Text background = %v, want %v", got, blue.Reference)
	}

	def := PageFor(engine.Themes[0])
	if _, ok := def.Text.GetBackground().(lipgloss.NoColor); !ok {
		t.Errorf("default Text background = %v, want none", def.Text.GetBackground())
	}
}
