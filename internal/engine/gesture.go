package engine

import "go.uber.org/zap"

// DefaultPreviewScale is the document scale shown while dragging
const DefaultPreviewScale = 0.28

// PreviewTransform is the transient scale-down applied to the document
// while the indicator is dragged (or pinned in touch mode)
type PreviewTransform struct {
	Active     bool
	Scale      float64
	Anchor     float64 // document offset under the pointer
	TranslateY float64
}

// GestureController turns pointer input on the indicator into scroll writes
type GestureController struct {
	vp    ViewportContext
	log   *zap.Logger
	scale float64

	dragging   bool
	suppressed bool // a drag just ended, swallow the trailing click
	pinned     bool
	fraction   float64
	preview    PreviewTransform

	onScroll func(target float64)
}

// NewGestureController creates a controller writing to vp
func NewGestureController(vp ViewportContext, scale float64, log *zap.Logger) *GestureController {
	if scale <= 0 || scale > 1 {
		scale = DefaultPreviewScale
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GestureController{vp: vp, log: log, scale: scale}
}

// Fraction maps a pointer position onto the indicator box
func Fraction(pointerY float64, bar Rect) float64 {
	if bar.Height <= 0 {
		return 0
	}
	y := min(max(pointerY-bar.Top, 0), bar.Height)
	return y / bar.Height
}

// PointerDown starts a drag at pointerY
func (g *GestureController) PointerDown(pointerY float64, bar Rect) {
	g.dragging = true
	g.suppressed = false
	g.fraction = Fraction(pointerY, bar)
	g.updatePreview()
	g.scrollTo(ScrollImmediate)
	g.log.Debug("Drag started", zap.Float64("fraction", g.fraction))
}

// PointerMove follows the pointer while dragging
func (g *GestureController) PointerMove(pointerY float64, bar Rect) {
	if !g.dragging {
		return
	}
	g.fraction = Fraction(pointerY, bar)
	g.updatePreview()
	g.scrollTo(ScrollImmediate)
}

// PointerUp ends a drag with one smooth scroll to the release position. It
// reports false when no drag was in progress.
func (g *GestureController) PointerUp(pointerY float64, bar Rect) bool {
	if !g.dragging {
		return false
	}
	g.dragging = false
	g.suppressed = true
	g.fraction = Fraction(pointerY, bar)
	if g.pinned {
		g.updatePreview()
	} else {
		g.preview = PreviewTransform{}
	}
	g.scrollTo(ScrollSmooth)
	g.log.Debug("Drag ended", zap.Float64("fraction", g.fraction))
	return true
}

// Click scrolls smoothly to pointerY unless it belongs to a drag. It reports
// whether a scroll was issued.
func (g *GestureController) Click(pointerY float64, bar Rect) bool {
	if g.dragging || g.suppressed {
		g.suppressed = false
		return false
	}
	g.fraction = Fraction(pointerY, bar)
	g.scrollTo(ScrollSmooth)
	return true
}

// Cancel abandons a drag without a final scroll
func (g *GestureController) Cancel() {
	g.dragging = false
	g.suppressed = false
	if !g.pinned {
		g.preview = PreviewTransform{}
	}
}

// Pin keeps the preview transform up outside of drags, anchored at the
// current reading position
func (g *GestureController) Pin(on bool) {
	g.pinned = on
	if on {
		g.fraction = ClampProgress(Sample(g.vp.ScrollOffset(), g.vp.ScrollHeight(), g.vp.ClientHeight())) / 100
		g.updatePreview()
		return
	}
	if !g.dragging {
		g.preview = PreviewTransform{}
	}
}

// Dragging reports whether a drag is in progress
func (g *GestureController) Dragging() bool {
	return g.dragging
}

// Preview returns the current preview transform
func (g *GestureController) Preview() PreviewTransform {
	return g.preview
}

func (g *GestureController) updatePreview() {
	total := g.vp.ScrollHeight()
	g.preview = PreviewTransform{
		Active:     true,
		Scale:      g.scale,
		Anchor:     g.fraction * total,
		TranslateY: -g.fraction * (total*g.scale - g.vp.ClientHeight()),
	}
}

func (g *GestureController) scrollTo(behavior ScrollBehavior) {
	target := g.fraction * MaxScroll(g.vp)
	if g.onScroll != nil {
		g.onScroll(target)
	}
	g.vp.ScrollTo(target, behavior)
}
