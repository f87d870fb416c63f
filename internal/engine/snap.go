package engine

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// Default timings of the snap coordinator
const (
	DefaultSettleDelay = 150 * time.Millisecond
	DefaultSnapGuard   = 200 * time.Millisecond
)

// alignTolerance is the distance below which a marker counts as aligned
const alignTolerance = 0.5

// SnapState is a state of the snap coordinator
type SnapState int

const (
	SnapIdle SnapState = iota
	SnapScrollSettling
	SnapSnapping
)

// String returns the name of the state
func (s SnapState) String() string {
	switch s {
	case SnapIdle:
		return "Idle"
	case SnapScrollSettling:
		return "ScrollSettling"
	case SnapSnapping:
		return "Snapping"
	default:
		return "Unknown"
	}
}

var snapTransitions = map[SnapState][]SnapState{
	SnapIdle:           {SnapScrollSettling},
	SnapScrollSettling: {SnapSnapping, SnapIdle},
	SnapSnapping:       {SnapIdle},
}

// canTransition reports whether the machine may move from one state to another
func canTransition(from, to SnapState) bool {
	for _, s := range snapTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Direction is the vertical direction of travel
type Direction int

const (
	DirectionNone Direction = 0
	DirectionDown Direction = 1
	DirectionUp   Direction = -1
)

// SnapCoordinator waits for scrolling to settle and then issues a single
// corrective scroll onto the nearest snap marker in the direction of travel
type SnapCoordinator struct {
	vp    ViewportContext
	log   *zap.Logger
	state SnapState

	settle *deferred
	guard  *deferred

	origin     float64
	lastOffset float64
	lastDir    Direction
	target     float64

	// OnSettled runs after settling resolved, whether or not a snap followed
	OnSettled func(snapped bool)
	// OnReleased runs when the snap guard expires and input is live again
	OnReleased func()
}

// NewSnapCoordinator creates an idle coordinator
func NewSnapCoordinator(vp ViewportContext, sched Scheduler, settle, guard time.Duration, log *zap.Logger) *SnapCoordinator {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	if guard <= 0 {
		guard = DefaultSnapGuard
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &SnapCoordinator{vp: vp, log: log, lastOffset: vp.ScrollOffset()}
	c.settle = newDeferred("settle", sched, settle, c.settled)
	c.guard = newDeferred("snap-guard", sched, guard, c.released)
	return c
}

// State returns the current state
func (c *SnapCoordinator) State() SnapState {
	return c.state
}

// Snapping reports whether a corrective scroll is in flight
func (c *SnapCoordinator) Snapping() bool {
	return c.state == SnapSnapping
}

// Target returns the offset of the last corrective scroll
func (c *SnapCoordinator) Target() float64 {
	return c.target
}

// Note records a scroll offset without driving the machine
func (c *SnapCoordinator) Note(offset float64) {
	c.track(offset)
}

// Observe feeds a user scroll event into the machine. It reports false when
// the event arrived during a corrective scroll and must be ignored.
func (c *SnapCoordinator) Observe(offset float64) bool {
	if c.state == SnapSnapping {
		return false
	}
	if c.state == SnapIdle {
		c.origin = c.lastOffset
		c.transition(SnapScrollSettling)
	}
	c.track(offset)
	c.settle.Reset()
	return true
}

// Cancel abandons settling or snapping and returns to Idle
func (c *SnapCoordinator) Cancel() {
	c.settle.Cancel()
	c.guard.Cancel()
	if c.state != SnapIdle {
		c.transition(SnapIdle)
	}
}

func (c *SnapCoordinator) track(offset float64) {
	switch {
	case offset > c.lastOffset:
		c.lastDir = DirectionDown
	case offset < c.lastOffset:
		c.lastDir = DirectionUp
	}
	c.lastOffset = offset
}

func (c *SnapCoordinator) direction() Direction {
	d := c.vp.ScrollOffset() - c.origin
	switch {
	case d > 0:
		return DirectionDown
	case d < 0:
		return DirectionUp
	case c.lastDir != DirectionNone:
		return c.lastDir
	default:
		return DirectionDown
	}
}

func (c *SnapCoordinator) settled() {
	if c.state != SnapScrollSettling {
		return
	}
	dir := c.direction()
	target, ok := c.findTarget(dir)
	if !ok {
		c.transition(SnapIdle)
		c.notifySettled(false)
		return
	}

	c.transition(SnapSnapping)
	c.target = target
	c.log.Debug("Snapping", zap.Int("direction", int(dir)), zap.Float64("target", target))
	c.vp.ScrollTo(target, ScrollSmooth)
	c.guard.Reset()
	c.notifySettled(true)
}

func (c *SnapCoordinator) released() {
	if c.state != SnapSnapping {
		return
	}
	c.transition(SnapIdle)
	c.lastOffset = c.vp.ScrollOffset()
	if c.OnReleased != nil {
		c.OnReleased()
	}
}

func (c *SnapCoordinator) notifySettled(snapped bool) {
	if c.OnSettled != nil {
		c.OnSettled(snapped)
	}
}

// findTarget picks the marker closest to the leading edge of the viewport.
// Moving down the marker top is aligned with the viewport top, moving up its
// bottom is aligned with the viewport bottom.
func (c *SnapCoordinator) findTarget(dir Direction) (float64, bool) {
	root, ok := c.vp.Root()
	if !ok || root == nil {
		return 0, false
	}
	offset := c.vp.ScrollOffset()
	height := c.vp.ClientHeight()

	best := math.Inf(1)
	var delta float64
	found := false
	for _, m := range root.Sections(SectionSnapMarker) {
		rect := m.BoundingRect()
		if rect.Bottom() <= 0 || rect.Top >= height {
			continue
		}
		d := rect.Top
		if dir == DirectionUp {
			d = rect.Bottom() - height
		}
		if math.Abs(d) < best {
			best = math.Abs(d)
			delta = d
			found = true
		}
	}
	if !found {
		return 0, false
	}
	target := min(max(offset+delta, 0), MaxScroll(c.vp))
	if math.Abs(target-offset) < alignTolerance {
		return 0, false
	}
	return target, true
}

func (c *SnapCoordinator) transition(to SnapState) {
	if !canTransition(c.state, to) {
		c.log.Warn("Illegal snap transition", zap.Stringer("from", c.state), zap.Stringer("to", to))
		return
	}
	c.log.Debug("Snap transition", zap.Stringer("from", c.state), zap.Stringer("to", to))
	c.state = to
}
