// Package engine tracks a reader's position inside a chapter-structured
// document and turns gestures on a compact indicator into scroll commands.
//
// The engine never touches a rendering surface directly. Everything it needs
// from the host (scroll state, element geometry, element-at-point lookups,
// resize and visibility notifications, timers) arrives through ViewportContext
// and the interfaces next to it.
package engine

// ScrollBehavior selects how the host applies a scroll write
type ScrollBehavior int

const (
	// ScrollImmediate jumps to the target offset
	ScrollImmediate ScrollBehavior = iota
	// ScrollSmooth animates to the target offset
	ScrollSmooth
)

// String returns the name of the behavior
func (b ScrollBehavior) String() string {
	if b == ScrollSmooth {
		return "smooth"
	}
	return "auto"
}

// SectionKind identifies a family of range containers inside the document
type SectionKind int

const (
	SectionChapter SectionKind = iota
	SectionSubchapter
	SectionSnapMarker
)

// String returns the name of the section kind
func (k SectionKind) String() string {
	switch k {
	case SectionChapter:
		return "chapter"
	case SectionSubchapter:
		return "subchapter"
	case SectionSnapMarker:
		return "snap"
	default:
		return "unknown"
	}
}

// Attribute names read from range containers
const (
	AttrChapter    = "chapter"
	AttrSubchapter = "subchapter"
	AttrTheme      = "theme"
	AttrID         = "id"
)

// Rect is a box relative to the viewport's top-left corner
type Rect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// Bottom returns the lower edge of the box
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Right returns the right edge of the box
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// Element is a rendered node of the document
type Element interface {
	// Attr returns an attribute value, empty when unset
	Attr(name string) string
	// OffsetHeight is the rendered height of the element
	OffsetHeight() float64
	// BoundingRect is the element box relative to the viewport
	BoundingRect() Rect
	// Background is the resolved background color in any CSS-like notation
	Background() string
}

// Root is the document container holding the ordered range containers
type Root interface {
	Element
	// Sections returns containers of the given kind in document order
	Sections(kind SectionKind) []Element
}

// Environment describes input capabilities of the host
type Environment struct {
	HasTouchEvents bool
	MaxTouchPoints int
	ScreenWidth    float64
	Hover          bool
	FinePointer    bool
}

// ViewportContext is the host surface the engine reads from and writes to.
// The scroll position is the only shared mutable state, written only through
// ScrollTo.
type ViewportContext interface {
	ScrollOffset() float64
	ScrollHeight() float64
	ClientHeight() float64
	ClientWidth() float64
	ScrollTo(offset float64, behavior ScrollBehavior)
	ElementAt(x, y float64) (Element, bool)
	// Root returns the document root, false when it is not mounted
	Root() (Root, bool)
	Environment() Environment
}

// MaxScroll returns the largest reachable scroll offset
func MaxScroll(vp ViewportContext) float64 {
	return max(0, vp.ScrollHeight()-vp.ClientHeight())
}
