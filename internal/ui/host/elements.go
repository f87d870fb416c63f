package host

import (
	"github.com/justyntemme/scrollbook/internal/document"
	"github.com/justyntemme/scrollbook/internal/engine"
)

// themeOf returns the first enumerated theme among names, the default theme
// when none matches
func themeOf(names ...string) engine.Theme {
	for _, n := range names {
		if n == "" {
			continue
		}
		if t, ok := engine.ThemeByName(n); ok {
			return t
		}
	}
	return engine.Themes[0]
}

// rootElement is the whole document
type rootElement struct {
	h *Host
}

func (r *rootElement) Attr(string) string { return "" }

func (r *rootElement) OffsetHeight() float64 {
	return r.h.ScrollHeight()
}

func (r *rootElement) BoundingRect() engine.Rect {
	return engine.Rect{Top: -r.h.offset, Width: r.h.ClientWidth(), Height: r.h.ScrollHeight()}
}

func (r *rootElement) Background() string {
	return engine.Themes[0].Reference
}

func (r *rootElement) Sections(kind engine.SectionKind) []engine.Element {
	switch kind {
	case engine.SectionChapter:
		return append([]engine.Element(nil), r.h.chapters...)
	case engine.SectionSubchapter:
		return append([]engine.Element(nil), r.h.sections...)
	case engine.SectionSnapMarker:
		return append([]engine.Element(nil), r.h.markers...)
	default:
		return nil
	}
}

// boxElement is a chapter, section or snap marker of the layout
type boxElement struct {
	h      *Host
	kind   engine.SectionKind
	box    document.Box
	parent string // theme of the enclosing chapter
}

func (b *boxElement) Attr(name string) string {
	switch name {
	case engine.AttrChapter:
		if b.kind == engine.SectionChapter {
			return b.box.Title
		}
	case engine.AttrSubchapter:
		if b.kind == engine.SectionSubchapter {
			return b.box.Title
		}
	case engine.AttrTheme:
		return b.box.Theme
	case engine.AttrID:
		return b.box.Anchor
	}
	return ""
}

func (b *boxElement) OffsetHeight() float64 {
	return float64(b.box.Rows.Height())
}

func (b *boxElement) BoundingRect() engine.Rect {
	return engine.Rect{
		Top:    float64(b.box.Rows.Start) - b.h.offset,
		Width:  b.h.ClientWidth(),
		Height: float64(b.box.Rows.Height()),
	}
}

func (b *boxElement) Background() string {
	if b.kind == engine.SectionSnapMarker {
		return "transparent"
	}
	return themeOf(b.box.Theme, b.parent).Reference
}

// indicatorElement is the rightmost column of the viewport
type indicatorElement struct {
	h *Host
}

func (i *indicatorElement) Attr(string) string { return "" }

func (i *indicatorElement) OffsetHeight() float64 {
	return i.BoundingRect().Height
}

func (i *indicatorElement) BoundingRect() engine.Rect {
	return engine.Rect{
		Left:   i.h.ClientWidth() - i.h.cell,
		Width:  i.h.cell,
		Height: float64(max(i.h.rows-1, 1)),
	}
}

func (i *indicatorElement) Background() string { return "transparent" }
