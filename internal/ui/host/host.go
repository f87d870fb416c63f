// Package host presents a laid out book to the reading position engine. One
// terminal row counts as one pixel vertically and one column as CellWidth
// pixels horizontally.
package host

import (
	"math"
	"slices"
	"time"

	"github.com/justyntemme/scrollbook/internal/document"
	"github.com/justyntemme/scrollbook/internal/engine"
	"go.uber.org/zap"
)

// DefaultCellWidth is the pixel width assumed for one terminal column
const DefaultCellWidth = 10

const (
	frameInterval = 16 * time.Millisecond
	// notification rounds per event
	maxFlushRounds = 8
)

// Options configures a Host
type Options struct {
	Scheduler      engine.Scheduler
	Logger         *zap.Logger
	CellWidth      float64
	SmoothDuration time.Duration
	Environment    engine.Environment
}

// Host is the terminal viewport over a layout. It implements
// engine.ViewportContext, engine.ResizeObserver, engine.IntersectionObserver
// and engine.Scheduler.
//
// Scroll notifications are never delivered while another host event is
// running. They are queued and handed to the scroll handler once the
// outermost Do returns.
type Host struct {
	log    *zap.Logger
	sched  engine.Scheduler
	smooth time.Duration
	env    engine.Environment
	cell   float64

	layout *document.Layout
	cols   int
	rows   int
	offset float64
	anim   *animation

	onScroll func()
	depth    int
	scrolled bool
	dirty    bool // intersections need evaluation

	root      *rootElement
	indicator *indicatorElement
	chapters  []engine.Element
	sections  []engine.Element
	markers   []engine.Element

	seq       int
	resize    map[int]resizeWatch
	intersect map[int]*intersectWatch
}

type resizeWatch struct {
	targets []engine.Element
	fn      func([]engine.ResizeEntry)
}

type intersectWatch struct {
	tracker *engine.IntersectionTracker
	fn      func([]engine.IntersectionEntry)
}

type animation struct {
	from, to float64
	step     int
	steps    int
}

// New creates a host showing layout in a viewport of cols x rows cells
func New(layout *document.Layout, cols, rows int, opts Options) *Host {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = engine.NewManualScheduler()
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = DefaultCellWidth
	}
	h := &Host{
		log:       opts.Logger.Named("host"),
		sched:     opts.Scheduler,
		smooth:    opts.SmoothDuration,
		env:       opts.Environment,
		cell:      opts.CellWidth,
		layout:    layout,
		cols:      max(cols, 1),
		rows:      max(rows, 1),
		resize:    map[int]resizeWatch{},
		intersect: map[int]*intersectWatch{},
	}
	h.root = &rootElement{h: h}
	h.indicator = &indicatorElement{h: h}
	h.build()
	return h
}

// OnScroll sets the handler for scroll notifications
func (h *Host) OnScroll(fn func()) {
	h.onScroll = fn
}

// Do runs fn as one host event. Scroll and visibility notifications raised
// while it runs are delivered after it returns.
func (h *Host) Do(fn func()) {
	h.depth++
	if fn != nil {
		fn()
	}
	h.depth--
	if h.depth == 0 {
		h.flush()
	}
}

// Flush delivers queued notifications
func (h *Host) Flush() {
	h.Do(nil)
}

func (h *Host) flush() {
	for i := 0; i < maxFlushRounds && (h.scrolled || h.dirty); i++ {
		h.depth++
		if h.scrolled {
			h.scrolled = false
			if h.onScroll != nil {
				h.onScroll()
			}
		}
		h.dirty = false
		h.evaluateIntersections()
		h.depth--
	}
}

// AfterFunc implements engine.Scheduler. Callbacks run as host events.
func (h *Host) AfterFunc(d time.Duration, fn func()) engine.Task {
	return h.sched.AfterFunc(d, func() { h.Do(fn) })
}

// Layout returns the displayed layout
func (h *Host) Layout() *document.Layout {
	return h.layout
}

// Size returns the viewport size in cells
func (h *Host) Size() (cols, rows int) {
	return h.cols, h.rows
}

// TopRow returns the first layout row inside the viewport
func (h *Host) TopRow() int {
	return int(math.Round(h.offset))
}

// Animating reports whether a smooth scroll is in progress
func (h *Host) Animating() bool {
	return h.anim != nil
}

// Resize replaces the layout and viewport size. The reading position is kept
// as a fraction of the scrollable range and resize observers are notified.
func (h *Host) Resize(layout *document.Layout, cols, rows int) {
	h.Do(func() {
		fraction := 0.0
		if m := engine.MaxScroll(h); m > 0 {
			fraction = h.offset / m
		}
		h.stopAnimation()
		h.layout = layout
		h.cols = max(cols, 1)
		h.rows = max(rows, 1)
		h.build()
		h.setOffset(math.Round(fraction * engine.MaxScroll(h)))
		h.dirty = true

		h.log.Debug("Viewport resized", zap.Int("cols", h.cols), zap.Int("rows", h.rows), zap.Float64("height", h.ScrollHeight()))
		for _, id := range sortedKeys(h.resize) {
			w, ok := h.resize[id]
			if !ok {
				continue
			}
			entries := make([]engine.ResizeEntry, 0, len(w.targets))
			for _, target := range w.targets {
				rect := target.BoundingRect()
				entries = append(entries, engine.ResizeEntry{Target: target, Width: rect.Width, Height: rect.Height})
			}
			w.fn(entries)
		}
	})
}

// ScrollBy scrolls immediately by delta rows
func (h *Host) ScrollBy(delta float64) {
	h.ScrollTo(h.offset+delta, engine.ScrollImmediate)
}

// ScrollTo implements engine.ViewportContext
func (h *Host) ScrollTo(offset float64, behavior engine.ScrollBehavior) {
	target := min(max(offset, 0), engine.MaxScroll(h))
	h.stopAnimation()
	if behavior == engine.ScrollImmediate || h.smooth < frameInterval || target == h.offset {
		h.setOffset(target)
		return
	}
	a := &animation{from: h.offset, to: target, steps: max(1, int(h.smooth/frameInterval))}
	h.anim = a
	h.nextFrame(a)
}

func (h *Host) nextFrame(a *animation) {
	h.AfterFunc(frameInterval, func() {
		if h.anim != a {
			return
		}
		a.step++
		if a.step >= a.steps {
			h.anim = nil
			h.setOffset(a.to)
			return
		}
		t := float64(a.step) / float64(a.steps)
		h.setOffset(a.from + (a.to-a.from)*easeOutCubic(t))
		h.nextFrame(a)
	})
}

func (h *Host) stopAnimation() {
	h.anim = nil
}

func easeOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

func (h *Host) setOffset(v float64) {
	if v == h.offset {
		return
	}
	h.offset = v
	h.scrolled = true
	if h.depth == 0 {
		h.flush()
	}
}

// ScrollOffset implements engine.ViewportContext
func (h *Host) ScrollOffset() float64 {
	return h.offset
}

// ScrollHeight implements engine.ViewportContext
func (h *Host) ScrollHeight() float64 {
	return float64(max(h.layoutHeight(), h.rows))
}

// ClientHeight implements engine.ViewportContext
func (h *Host) ClientHeight() float64 {
	return float64(h.rows)
}

// ClientWidth implements engine.ViewportContext
func (h *Host) ClientWidth() float64 {
	return float64(h.cols) * h.cell
}

// Environment implements engine.ViewportContext. The terminal is the whole
// screen, so its width doubles as the screen width.
func (h *Host) Environment() engine.Environment {
	env := h.env
	env.ScreenWidth = h.ClientWidth()
	return env
}

// Root implements engine.ViewportContext
func (h *Host) Root() (engine.Root, bool) {
	if h.layout == nil {
		return nil, false
	}
	return h.root, true
}

// ElementAt implements engine.ViewportContext. It returns the innermost
// section or chapter under the point, the root below the last chapter.
func (h *Host) ElementAt(x, y float64) (engine.Element, bool) {
	if h.layout == nil || x < 0 || y < 0 || x >= h.ClientWidth() || y >= h.ClientHeight() {
		return nil, false
	}
	row := int(math.Floor(h.offset + y))
	for i, b := range h.layout.Sections {
		if b.Rows.Contains(row) {
			return h.sections[i], true
		}
	}
	for i, b := range h.layout.Chapters {
		if b.Rows.Contains(row) {
			return h.chapters[i], true
		}
	}
	return h.root, true
}

// Indicator returns the element standing for the indicator column
func (h *Host) Indicator() engine.Element {
	return h.indicator
}

// Bar returns the indicator box gestures are mapped onto. Its height spans
// the first to the last row so both ends of the column are reachable.
func (h *Host) Bar() engine.Rect {
	return h.indicator.BoundingRect()
}

// RowTheme returns the theme painted behind a layout row: the section's, the
// chapter's or the default
func (h *Host) RowTheme(row int) engine.Theme {
	if h.layout != nil {
		if s, ok := h.layout.SectionAt(row); ok {
			return themeOf(s.Theme, h.chapterTheme(s.Chapter))
		}
		if c, ok := h.layout.ChapterAt(row); ok {
			return themeOf(c.Theme)
		}
	}
	return engine.Themes[0]
}

func (h *Host) chapterTheme(index int) string {
	if h.layout == nil || index < 0 || index >= len(h.layout.Chapters) {
		return ""
	}
	return h.layout.Chapters[index].Theme
}

// ObserveResize implements engine.ResizeObserver
func (h *Host) ObserveResize(targets []engine.Element, fn func([]engine.ResizeEntry)) engine.Subscription {
	h.seq++
	id := h.seq
	h.resize[id] = resizeWatch{targets: targets, fn: fn}
	return engine.SubscriptionFunc(func() { delete(h.resize, id) })
}

// ObserveIntersection implements engine.IntersectionObserver. The first
// report for every target arrives with the next flush.
func (h *Host) ObserveIntersection(targets []engine.Element, opts engine.IntersectionOptions, fn func([]engine.IntersectionEntry)) engine.Subscription {
	h.seq++
	id := h.seq
	h.intersect[id] = &intersectWatch{tracker: engine.NewIntersectionTracker(targets, opts), fn: fn}
	h.dirty = true
	return engine.SubscriptionFunc(func() { delete(h.intersect, id) })
}

func (h *Host) evaluateIntersections() {
	for _, id := range sortedKeys(h.intersect) {
		w, ok := h.intersect[id]
		if !ok {
			continue
		}
		if entries := w.tracker.Evaluate(h.ClientHeight()); len(entries) > 0 {
			w.fn(entries)
		}
	}
}

// Observers returns the number of live resize and intersection subscriptions
func (h *Host) Observers() (resize, intersect int) {
	return len(h.resize), len(h.intersect)
}

func (h *Host) layoutHeight() int {
	if h.layout == nil {
		return 0
	}
	return h.layout.Height()
}

// build creates the elements of the current layout
func (h *Host) build() {
	h.chapters, h.sections, h.markers = nil, nil, nil
	if h.layout == nil {
		return
	}
	for _, b := range h.layout.Chapters {
		h.chapters = append(h.chapters, &boxElement{h: h, kind: engine.SectionChapter, box: b})
	}
	for _, b := range h.layout.Sections {
		h.sections = append(h.sections, &boxElement{h: h, kind: engine.SectionSubchapter, box: b, parent: h.chapterTheme(b.Chapter)})
	}
	for _, m := range h.layout.Markers {
		h.markers = append(h.markers, &boxElement{h: h, kind: engine.SectionSnapMarker, box: document.Box{Rows: m, Section: -1}})
	}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
