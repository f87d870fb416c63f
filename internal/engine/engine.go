package engine

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Default timings of indicator visibility and theme sampling
const (
	DefaultHideDelay    = 700 * time.Millisecond
	DefaultThemeRecheck = 300 * time.Millisecond
)

// Probe is the theme sample point, measured from the viewport's top and
// right edges
type Probe struct {
	Top   float64
	Right float64
}

// Options configures an Engine
type Options struct {
	Scheduler Scheduler
	Logger    *zap.Logger

	// Resize and Intersection are optional notification sources
	Resize       ResizeObserver
	Intersection IntersectionObserver
	// Indicator is the indicator element, watched for size changes
	Indicator Element

	SettleDelay     time.Duration
	SnapGuard       time.Duration
	HideDelay       time.Duration
	ThemeRecheck    time.Duration
	PreviewScale    float64
	ChapterOffset   float64
	TouchBreakpoint float64
	ThemeProbe      Probe
}

// Interaction holds the transient flags that gate input handling
type Interaction struct {
	Dragging        bool
	SnapScrolling   bool
	TouchModeActive bool
}

// Engine keeps the reading position of one document view. All methods must
// be called from the host's event loop.
type Engine struct {
	id   string
	vp   ViewportContext
	log  *zap.Logger
	opts Options

	geometry   *GeometryStore
	sampler    *PositionSampler
	themes     *ThemeSampler
	visibility VisibilityResolver
	gestures   *GestureController
	snap       *SnapCoordinator
	detector   DeviceDetector

	mode        DeviceMode
	progress    float64
	touchActive bool
	visible     bool
	closed      bool

	// destination of a scroll issued by a gesture or command, its scroll
	// events never start settling
	steering    bool
	steerTarget float64
	steerDist   float64

	hide    *deferred
	recheck *deferred

	subs        []Subscription
	chapterSubs Subscription
}

// New binds an engine to a viewport, measures the document and subscribes to
// the host's notifications
func New(vp ViewportContext, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewManualScheduler()
	}
	if opts.HideDelay <= 0 {
		opts.HideDelay = DefaultHideDelay
	}
	if opts.ThemeRecheck <= 0 {
		opts.ThemeRecheck = DefaultThemeRecheck
	}

	id := uuid.NewString()
	log := opts.Logger.With(zap.String("view", id))

	e := &Engine{
		id:       id,
		vp:       vp,
		log:      log,
		opts:     opts,
		geometry: NewGeometryStore(log),
		sampler:  NewPositionSampler(vp),
		themes:   NewThemeSampler(vp, log),
		gestures: NewGestureController(vp, opts.PreviewScale, log),
		snap:     NewSnapCoordinator(vp, opts.Scheduler, opts.SettleDelay, opts.SnapGuard, log),
		detector: DeviceDetector{Breakpoint: opts.TouchBreakpoint},
	}
	e.gestures.onScroll = e.steer
	e.hide = newDeferred("hide", opts.Scheduler, opts.HideDelay, e.hideIndicator)
	e.recheck = newDeferred("theme-recheck", opts.Scheduler, opts.ThemeRecheck, e.resampleTheme)
	e.snap.OnSettled = func(bool) { e.sampleTheme() }
	e.snap.OnReleased = func() {
		e.recalculate()
		e.sampleTheme()
	}

	e.mode = e.detector.Detect(vp.Environment())
	e.geometry.Measure(vp)
	e.observe()
	e.recalculate()
	e.resampleTheme()

	log.Debug("Engine mounted", zap.Stringer("mode", e.mode), zap.Float64("progress", e.progress))
	return e
}

// ID returns the view id used in logs
func (e *Engine) ID() string {
	return e.id
}

func (e *Engine) observe() {
	if e.opts.Resize != nil {
		var targets []Element
		if root, ok := e.vp.Root(); ok && root != nil {
			targets = append(targets, root)
		}
		if e.opts.Indicator != nil {
			targets = append(targets, e.opts.Indicator)
		}
		if len(targets) > 0 {
			e.subs = append(e.subs, e.opts.Resize.ObserveResize(targets, func([]ResizeEntry) { e.HandleResize() }))
		}
	}
	e.observeChapters()
}

// observeChapters (re)subscribes to visibility changes of the current
// chapter containers
func (e *Engine) observeChapters() {
	if e.chapterSubs != nil {
		e.chapterSubs.Unsubscribe()
		e.chapterSubs = nil
	}
	if e.opts.Intersection == nil {
		return
	}
	root, ok := e.vp.Root()
	if !ok || root == nil {
		return
	}
	e.chapterSubs = e.opts.Intersection.ObserveIntersection(root.Sections(SectionChapter), DefaultChapterIntersection, e.onIntersect)
}

func (e *Engine) onIntersect(entries []IntersectionEntry) {
	if e.closed {
		return
	}
	if e.visibility.Apply(entries) {
		e.log.Debug("Current chapter", zap.String("chapter", e.visibility.Current()))
	}
}

// HandleScroll processes a scroll event of the host viewport
func (e *Engine) HandleScroll() {
	if e.closed || e.snap.Snapping() {
		return
	}
	offset := e.vp.ScrollOffset()
	e.progress = e.sampler.Read()
	steered := e.steered(offset)
	if e.mode == ModeTouch || e.gestures.Dragging() || steered {
		e.snap.Note(offset)
	} else {
		e.snap.Observe(offset)
	}
	e.geometry.resolve(e.progress)
	if e.mode == ModeTouch {
		e.recheck.Reset()
	}
	e.showIndicator()
}

// HandleWheel processes a wheel event, the scroll event that follows drives
// settling
func (e *Engine) HandleWheel() {
	if e.closed {
		return
	}
	e.steering = false
	if e.snap.Snapping() {
		return
	}
	e.recalculate()
	e.showIndicator()
}

// HandleKeyScroll marks the scroll events that follow as the reader's own,
// so they drive settling even while a commanded scroll is under way
func (e *Engine) HandleKeyScroll() {
	if e.closed {
		return
	}
	e.steering = false
	e.showIndicator()
}

// steer records target as the destination of a scroll the engine issues
func (e *Engine) steer(target float64) {
	e.steering = true
	e.steerTarget = target
	e.steerDist = math.Abs(e.vp.ScrollOffset() - target)
}

// steered reports whether offset belongs to the commanded scroll. Reaching
// the target ends it, moving away from the target means someone else took
// over.
func (e *Engine) steered(offset float64) bool {
	if !e.steering {
		return false
	}
	dist := math.Abs(offset - e.steerTarget)
	if dist > e.steerDist+alignTolerance {
		e.steering = false
		return false
	}
	e.steerDist = dist
	if dist <= alignTolerance {
		e.steering = false
	}
	return true
}

// HandleResize re-measures the document and re-evaluates the device mode
func (e *Engine) HandleResize() {
	if e.closed {
		return
	}
	e.steering = false
	e.updateMode()
	e.Remeasure()
}

// Remeasure forces a new geometry measurement
func (e *Engine) Remeasure() {
	if e.closed {
		return
	}
	if e.geometry.Measure(e.vp) {
		e.observeChapters()
	}
	e.recalculate()
}

func (e *Engine) recalculate() {
	e.progress = e.sampler.Read()
	e.geometry.resolve(e.progress)
}

func (e *Engine) updateMode() {
	mode := e.detector.Detect(e.vp.Environment())
	if mode == e.mode {
		return
	}
	e.log.Debug("Device mode changed", zap.Stringer("from", e.mode), zap.Stringer("to", mode))
	e.mode = mode
	e.snap.Cancel()
	e.gestures.Cancel()
	e.gestures.Pin(false)
	e.touchActive = false
	e.hide.Cancel()
	e.visible = false
}

// PointerDown starts a drag on the indicator. It reports false when the
// indicator is not interactive.
func (e *Engine) PointerDown(pointerY float64, bar Rect) bool {
	if e.closed || !e.IndicatorEnabled() {
		return false
	}
	// a drag and a corrective scroll never overlap
	e.snap.Cancel()
	e.steering = false
	e.hide.Cancel()
	e.visible = true
	e.gestures.PointerDown(pointerY, bar)
	return true
}

// PointerMove follows a drag
func (e *Engine) PointerMove(pointerY float64, bar Rect) {
	if e.closed {
		return
	}
	e.gestures.PointerMove(pointerY, bar)
}

// PointerUp ends a drag
func (e *Engine) PointerUp(pointerY float64, bar Rect) {
	if e.closed {
		return
	}
	if e.gestures.PointerUp(pointerY, bar) {
		e.sampleTheme()
		e.showIndicator()
	}
}

// Click scrolls to the clicked indicator position unless a drag consumed it
func (e *Engine) Click(pointerY float64, bar Rect) {
	if e.closed || !e.IndicatorEnabled() {
		return
	}
	if e.gestures.Click(pointerY, bar) {
		e.showIndicator()
	}
}

// ScrollToChapter smoothly scrolls so the named chapter starts just below
// the viewport top. Unknown chapters are ignored.
func (e *Engine) ScrollToChapter(name string) bool {
	if e.closed {
		return false
	}
	r, ok := e.geometry.Chapter(name)
	if !ok {
		e.log.Debug("Unknown chapter", zap.String("chapter", name))
		return false
	}
	target := min(max(r.Start-e.opts.ChapterOffset, 0), MaxScroll(e.vp))
	e.snap.Cancel()
	e.steer(target)
	e.vp.ScrollTo(target, ScrollSmooth)
	return true
}

// TogglePreview pins or unpins the preview mode on touch devices and reports
// the new state
func (e *Engine) TogglePreview() bool {
	if e.closed || e.mode != ModeTouch {
		return false
	}
	e.touchActive = !e.touchActive
	e.gestures.Pin(e.touchActive)
	e.visible = e.touchActive
	e.hide.Cancel()
	if !e.touchActive {
		e.gestures.Cancel()
	}
	return e.touchActive
}

func (e *Engine) showIndicator() {
	e.visible = true
	if e.gestures.Dragging() || e.touchActive {
		e.hide.Cancel()
		return
	}
	e.hide.Reset()
}

func (e *Engine) hideIndicator() {
	if e.gestures.Dragging() || e.touchActive {
		return
	}
	e.visible = false
}

func (e *Engine) sampleTheme() {
	e.resampleTheme()
	e.recheck.Reset()
}

func (e *Engine) resampleTheme() {
	e.themes.SampleAt(e.opts.ThemeProbe.Top, e.opts.ThemeProbe.Right)
}

// Close detaches every observer and cancels every pending task. The engine
// is inert afterwards.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	for _, s := range e.subs {
		s.Unsubscribe()
	}
	e.subs = nil
	if e.chapterSubs != nil {
		e.chapterSubs.Unsubscribe()
		e.chapterSubs = nil
	}
	e.snap.Cancel()
	e.hide.Cancel()
	e.recheck.Cancel()
	e.gestures.Cancel()
	e.log.Debug("Engine released")
}

// Progress returns the reading progress in percent
func (e *Engine) Progress() float64 {
	return e.progress
}

// Chapters returns the chapter ranges with their active flags
func (e *Engine) Chapters() []Range {
	return e.geometry.Chapters()
}

// Subchapters returns the subchapter ranges with their active flags
func (e *Engine) Subchapters() []Range {
	return e.geometry.Subchapters()
}

// ActiveChapter returns the first active chapter
func (e *Engine) ActiveChapter() (Range, bool) {
	return FirstActive(e.geometry.chapters)
}

// ActiveSubchapter returns the first active subchapter
func (e *Engine) ActiveSubchapter() (Range, bool) {
	return FirstActive(e.geometry.subchapters)
}

// Chapter returns the stored range of a chapter, a zero inactive range when
// it is unknown
func (e *Engine) Chapter(name string) Range {
	r, _ := e.geometry.Chapter(name)
	return r
}

// CurrentChapter returns the label of the most visible chapter
func (e *Engine) CurrentChapter() string {
	return e.visibility.Current()
}

// Theme returns the active theme
func (e *Engine) Theme() Theme {
	return e.themes.Active()
}

// Themes returns the theme enumeration with active flags
func (e *Engine) Themes() []Theme {
	return e.themes.Themes()
}

// Mode returns the detected device mode
func (e *Engine) Mode() DeviceMode {
	return e.mode
}

// Interaction returns the transient input flags
func (e *Engine) Interaction() Interaction {
	return Interaction{
		Dragging:        e.gestures.Dragging(),
		SnapScrolling:   e.snap.Snapping(),
		TouchModeActive: e.touchActive,
	}
}

// SnapState returns the state of the snap coordinator
func (e *Engine) SnapState() SnapState {
	return e.snap.State()
}

// Preview returns the preview transform to apply to the document
func (e *Engine) Preview() PreviewTransform {
	return e.gestures.Preview()
}

// IndicatorEnabled reports whether the indicator is on screen and accepts
// input. Touch devices only show it while the preview mode is pinned.
func (e *Engine) IndicatorEnabled() bool {
	return e.mode == ModePointer || e.touchActive
}

// IndicatorVisible reports whether the indicator is in its expanded state
// after recent activity
func (e *Engine) IndicatorVisible() bool {
	return e.visible
}
