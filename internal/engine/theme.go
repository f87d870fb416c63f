package engine

import (
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
)

// Palette holds the colors derived from a theme
type Palette struct {
	Fill  string // filled part of the indicator
	Empty string // remaining part of the indicator
	Text  string // labels drawn over the theme
}

// Theme is one entry of the closed theme enumeration
type Theme struct {
	Name      string
	Reference string // background color that selects the theme, lowercase hex
	Palette   Palette
	Active    bool
}

// Themes is the closed enumeration. The first entry is the default.
var Themes = []Theme{
	{
		Name:      "white",
		Reference: "#ffffff",
		Palette:   Palette{Fill: "#1f2937", Empty: "#d1d5db", Text: "#111827"},
	},
	{
		Name:      "gray",
		Reference: "#e5e7eb",
		Palette:   Palette{Fill: "#374151", Empty: "#f9fafb", Text: "#1f2937"},
	},
	{
		Name:      "blue",
		Reference: "#1e3a8a",
		Palette:   Palette{Fill: "#bfdbfe", Empty: "#3b82f6", Text: "#eff6ff"},
	},
	{
		Name:      "black",
		Reference: "#000000",
		Palette:   Palette{Fill: "#f9fafb", Empty: "#4b5563", Text: "#f3f4f6"},
	},
}

// ThemeByName returns the enumerated theme with the given name
func ThemeByName(name string) (Theme, bool) {
	for _, t := range Themes {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Theme{}, false
}

// NormalizeColor turns #rgb, #rrggbb, rgb() and rgba() notations into
// lowercase #rrggbb. Fully transparent and unparsable colors yield false.
func NormalizeColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "transparent":
		return "", false
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return "", false
		}
		return c.Hex(), true
	case strings.HasPrefix(s, "rgb"):
		open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
		if open < 0 || end < open {
			return "", false
		}
		parts := strings.FieldsFunc(s[open+1:end], func(r rune) bool {
			return r == ',' || r == ' ' || r == '/'
		})
		if len(parts) < 3 || len(parts) > 4 {
			return "", false
		}
		var rgb [3]float64
		for i := range 3 {
			v, err := strconv.ParseFloat(parts[i], 64)
			if err != nil {
				return "", false
			}
			rgb[i] = min(max(v, 0), 255) / 255
		}
		if len(parts) == 4 {
			if a, err := strconv.ParseFloat(strings.TrimSuffix(parts[3], "%"), 64); err != nil || a == 0 {
				return "", false
			}
		}
		return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}.Hex(), true
	default:
		return "", false
	}
}

// ThemeSampler picks the active theme from the background under a fixed
// probe point near the top-right corner of the viewport
type ThemeSampler struct {
	vp     ViewportContext
	log    *zap.Logger
	themes []Theme
	active int
}

// NewThemeSampler creates a sampler with the default theme active
func NewThemeSampler(vp ViewportContext, log *zap.Logger) *ThemeSampler {
	if log == nil {
		log = zap.NewNop()
	}
	themes := append([]Theme(nil), Themes...)
	themes[0].Active = true
	return &ThemeSampler{vp: vp, log: log, themes: themes}
}

// SampleAt probes the element at (viewport width - right, top) and makes the
// matching theme the only active one
func (s *ThemeSampler) SampleAt(top, right float64) Theme {
	idx := 0
	x := s.vp.ClientWidth() - right
	if el, ok := s.vp.ElementAt(x, top); ok && el != nil {
		if hex, ok := NormalizeColor(el.Background()); ok {
			idx = s.match(hex)
		}
	}
	if idx != s.active {
		s.log.Debug("Theme changed", zap.String("from", s.themes[s.active].Name), zap.String("to", s.themes[idx].Name))
	}
	s.setActive(idx)
	return s.themes[idx]
}

func (s *ThemeSampler) match(hex string) int {
	for i, t := range s.themes {
		if strings.EqualFold(t.Reference, hex) {
			return i
		}
	}
	return 0
}

func (s *ThemeSampler) setActive(idx int) {
	for i := range s.themes {
		s.themes[i].Active = i == idx
	}
	s.active = idx
}

// Active returns the active theme
func (s *ThemeSampler) Active() Theme {
	return s.themes[s.active]
}

// Themes returns a copy of the enumeration with the active flags
func (s *ThemeSampler) Themes() []Theme {
	return append([]Theme(nil), s.themes...)
}
