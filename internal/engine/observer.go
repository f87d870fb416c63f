package engine

// Subscription is a live observer registration
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a plain function to Subscription
type SubscriptionFunc func()

// Unsubscribe implements Subscription
func (f SubscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}

// ResizeEntry reports a new size of an observed element
type ResizeEntry struct {
	Target Element
	Width  float64
	Height float64
}

// ResizeObserver delivers size changes of a set of elements. One change of
// the layout is reported as one call carrying an entry per target.
type ResizeObserver interface {
	ObserveResize(targets []Element, fn func([]ResizeEntry)) Subscription
}

// IntersectionEntry reports how much of a target is visible inside the
// (margin-adjusted) viewport
type IntersectionEntry struct {
	Target       Element
	Ratio        float64
	Intersecting bool
}

// IntersectionOptions shapes the observed root box and the reporting steps
type IntersectionOptions struct {
	// MarginTop and MarginBottom shrink (negative) or grow (positive) the
	// root box, as fractions of the viewport height
	MarginTop    float64
	MarginBottom float64
	Thresholds   []float64
}

// IntersectionObserver delivers visibility changes for a set of targets
type IntersectionObserver interface {
	ObserveIntersection(targets []Element, opts IntersectionOptions, fn func([]IntersectionEntry)) Subscription
}

// DefaultChapterIntersection watches the middle 60% of the viewport
var DefaultChapterIntersection = IntersectionOptions{
	MarginTop:    -0.2,
	MarginBottom: -0.2,
	Thresholds:   []float64{0, 0.1, 0.25, 0.5, 0.75, 1.0},
}

// IntersectionTracker computes intersection entries for hosts. It remembers
// the last threshold step of every target and only reports targets whose
// step changed, the first evaluation reports all of them.
type IntersectionTracker struct {
	targets []Element
	opts    IntersectionOptions
	steps   []int
	primed  bool
}

// NewIntersectionTracker creates a tracker for targets
func NewIntersectionTracker(targets []Element, opts IntersectionOptions) *IntersectionTracker {
	steps := make([]int, len(targets))
	return &IntersectionTracker{targets: targets, opts: opts, steps: steps}
}

// Evaluate returns changed entries for a viewport of the given height
func (t *IntersectionTracker) Evaluate(viewportHeight float64) []IntersectionEntry {
	top := -t.opts.MarginTop * viewportHeight
	bottom := viewportHeight + t.opts.MarginBottom*viewportHeight

	var changed []IntersectionEntry
	for i, target := range t.targets {
		rect := target.BoundingRect()
		ratio, intersecting := intersectionRatio(rect, top, bottom)
		step := t.step(ratio, intersecting)
		if t.primed && step == t.steps[i] {
			continue
		}
		t.steps[i] = step
		changed = append(changed, IntersectionEntry{Target: target, Ratio: ratio, Intersecting: intersecting})
	}
	t.primed = true
	return changed
}

func (t *IntersectionTracker) step(ratio float64, intersecting bool) int {
	if !intersecting {
		return -1
	}
	step := 0
	for i, th := range t.opts.Thresholds {
		if ratio >= th {
			step = i + 1
		}
	}
	return step
}

func intersectionRatio(rect Rect, top, bottom float64) (float64, bool) {
	if bottom <= top {
		return 0, false
	}
	lo := max(rect.Top, top)
	hi := min(rect.Bottom(), bottom)
	if hi < lo || (hi == lo && rect.Height > 0) {
		return 0, false
	}
	if rect.Height <= 0 {
		return 1, true
	}
	return (hi - lo) / rect.Height, true
}
