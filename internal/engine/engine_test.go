package engine

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type engineFixture struct {
	vp    *fakeViewport
	sched *ManualScheduler
	obs   *fakeObservers
	e     *Engine
}

func newEngineFixture(t *testing.T, setup func(vp *fakeViewport)) *engineFixture {
	t.Helper()
	vp := newFakeViewport(10000, 1000)
	vp.addChapters(3000, 3000, 4000)
	vp.addSubchapter("A.1", "blue", 500, 1000)
	vp.paint(0, 10000, "#ffffff")
	if setup != nil {
		setup(vp)
	}
	f := &engineFixture{vp: vp, sched: NewManualScheduler(), obs: newFakeObservers()}
	f.e = New(vp, Options{
		Scheduler:     f.sched,
		Logger:        zaptest.NewLogger(t),
		Resize:        f.obs,
		Intersection:  f.obs,
		ChapterOffset: 2,
	})
	t.Cleanup(f.e.Close)
	return f
}

func (f *engineFixture) scroll(offset float64) {
	f.vp.offset = offset
	f.e.HandleScroll()
}

func TestEngineResolvesChapterFromProgress(t *testing.T) {
	f := newEngineFixture(t, nil)

	tests := []struct {
		offset     float64
		progress   float64
		chapter    string
		subchapter string
	}{
		{0, 0, "A", ""},
		{900, 10, "A", "A.1"},
		{2699, 29.99, "A", ""},
		{2700, 30, "B", ""},
		{2999, 33.32, "B", ""},
		{9000, 100, "C", ""},
	}
	for _, tt := range tests {
		f.scroll(tt.offset)
		if math.Abs(f.e.Progress()-tt.progress) > 0.01 {
			t.Errorf("offset %v: Progress() = %v, want %v", tt.offset, f.e.Progress(), tt.progress)
		}
		r, ok := f.e.ActiveChapter()
		if !ok || r.Name != tt.chapter {
			t.Errorf("offset %v: ActiveChapter() = %q, %v, want %q", tt.offset, r.Name, ok, tt.chapter)
		}
		s, _ := f.e.ActiveSubchapter()
		if s.Name != tt.subchapter {
			t.Errorf("offset %v: ActiveSubchapter() = %q, want %q", tt.offset, s.Name, tt.subchapter)
		}
	}
}

func TestEngineIndicatorAutoHide(t *testing.T) {
	f := newEngineFixture(t, nil)

	if f.e.IndicatorVisible() {
		t.Fatal("indicator visible before any scroll")
	}
	f.scroll(100)
	if !f.e.IndicatorVisible() {
		t.Fatal("indicator hidden after scroll")
	}
	f.sched.Advance(DefaultHideDelay - time.Millisecond)
	if !f.e.IndicatorVisible() {
		t.Error("indicator hidden before the delay elapsed")
	}
	f.sched.Advance(time.Millisecond)
	if f.e.IndicatorVisible() {
		t.Error("indicator still visible after the delay")
	}
}

func TestEngineScrollToChapter(t *testing.T) {
	f := newEngineFixture(t, nil)

	if !f.e.ScrollToChapter("B") {
		t.Fatal("ScrollToChapter(B) = false")
	}
	if c, _ := f.vp.lastScroll(); c.offset != 2998 || c.behavior != ScrollSmooth {
		t.Errorf("scroll = %+v, want 2998 smooth", c)
	}

	if !f.e.ScrollToChapter("chapter-3") {
		t.Fatal("ScrollToChapter(chapter-3) = false")
	}
	if c, _ := f.vp.lastScroll(); c.offset != 5998 {
		t.Errorf("scroll = %+v, want 5998", c)
	}

	n := len(f.vp.scrolls)
	if f.e.ScrollToChapter("Epilogue") {
		t.Error("ScrollToChapter(Epilogue) = true for unknown chapter")
	}
	if len(f.vp.scrolls) != n {
		t.Error("unknown chapter issued a scroll")
	}
	if r := f.e.Chapter("Epilogue"); r.Active || r.Start != 0 || r.End != 0 {
		t.Errorf("Chapter(Epilogue) = %+v, want zero range", r)
	}
}

func TestEngineDragCancelsSnap(t *testing.T) {
	f := newEngineFixture(t, func(vp *fakeViewport) { vp.addMarker(1000, 500) })

	f.scroll(900)
	if f.e.SnapState() != SnapScrollSettling {
		t.Fatalf("SnapState() = %v, want ScrollSettling", f.e.SnapState())
	}

	if !f.e.PointerDown(300, testBar) {
		t.Fatal("PointerDown() = false in pointer mode")
	}
	in := f.e.Interaction()
	if !in.Dragging || in.SnapScrolling {
		t.Errorf("Interaction() = %+v, want dragging only", in)
	}
	if f.e.SnapState() != SnapIdle {
		t.Errorf("SnapState() = %v, want Idle", f.e.SnapState())
	}

	f.e.HandleScroll()
	f.sched.Advance(time.Second)
	for _, c := range f.vp.scrolls {
		if c.behavior == ScrollSmooth {
			t.Errorf("smooth scroll %+v issued while dragging", c)
		}
	}
	if !f.e.IndicatorVisible() {
		t.Error("indicator hidden while dragging")
	}

	f.e.PointerUp(300, testBar)
	if c, _ := f.vp.lastScroll(); c.behavior != ScrollSmooth || c.offset != 4500 {
		t.Errorf("release scroll = %+v, want 4500 smooth", c)
	}
	n := len(f.vp.scrolls)
	f.e.Click(300, testBar)
	if len(f.vp.scrolls) != n {
		t.Error("click after drag issued a scroll")
	}
}

func TestEngineSnapSuppressesScrollEvents(t *testing.T) {
	f := newEngineFixture(t, func(vp *fakeViewport) { vp.addMarker(1000, 500) })

	f.scroll(900)
	f.sched.Advance(DefaultSettleDelay)
	if !f.e.Interaction().SnapScrolling {
		t.Fatal("not snapping after settle")
	}
	if f.vp.offset != 1000 {
		t.Fatalf("offset = %v after snap, want 1000", f.vp.offset)
	}

	before := f.e.Progress()
	f.e.HandleScroll()
	if f.e.Progress() != before {
		t.Errorf("Progress() changed during snap: %v -> %v", before, f.e.Progress())
	}

	f.sched.Advance(DefaultSnapGuard)
	if f.e.Interaction().SnapScrolling {
		t.Error("still snapping after guard")
	}
	if math.Abs(f.e.Progress()-100.0/9) > 0.01 {
		t.Errorf("Progress() = %v after release, want %v", f.e.Progress(), 100.0/9)
	}
}

func TestEngineTouchMode(t *testing.T) {
	f := newEngineFixture(t, func(vp *fakeViewport) {
		vp.env = Environment{HasTouchEvents: true, MaxTouchPoints: 5, ScreenWidth: 400}
		vp.addMarker(1000, 500)
	})

	if f.e.Mode() != ModeTouch {
		t.Fatalf("Mode() = %v, want touch", f.e.Mode())
	}
	if f.e.IndicatorEnabled() || f.e.PointerDown(300, testBar) {
		t.Error("indicator interactive before preview toggle")
	}

	f.scroll(900)
	f.sched.Advance(time.Second)
	if f.e.SnapState() != SnapIdle || len(f.vp.scrolls) != 0 {
		t.Errorf("touch scroll snapped: state %v scrolls %d", f.e.SnapState(), len(f.vp.scrolls))
	}

	if !f.e.TogglePreview() {
		t.Fatal("TogglePreview() = false, want true")
	}
	if !f.e.Preview().Active || !f.e.Interaction().TouchModeActive {
		t.Error("preview not pinned after toggle")
	}
	if !f.e.PointerDown(300, testBar) {
		t.Error("PointerDown() = false with preview pinned")
	}
	f.e.PointerUp(300, testBar)
	f.sched.Advance(time.Second)
	if !f.e.IndicatorVisible() {
		t.Error("pinned indicator auto-hid")
	}

	if f.e.TogglePreview() {
		t.Fatal("second TogglePreview() = true, want false")
	}
	if f.e.Preview().Active || f.e.IndicatorEnabled() {
		t.Error("preview still up after toggling off")
	}
}

func TestEngineTogglePreviewNeedsTouch(t *testing.T) {
	f := newEngineFixture(t, nil)
	if f.e.TogglePreview() {
		t.Error("TogglePreview() = true in pointer mode")
	}
	if f.e.Preview().Active {
		t.Error("preview active in pointer mode")
	}
}

func TestEngineModeChangeOnResize(t *testing.T) {
	f := newEngineFixture(t, func(vp *fakeViewport) { vp.addMarker(1000, 500) })

	f.scroll(900)
	f.vp.env = Environment{ScreenWidth: 500}
	f.obs.fireResize()

	if f.e.Mode() != ModeTouch {
		t.Fatalf("Mode() = %v after resize, want touch", f.e.Mode())
	}
	if f.e.SnapState() != SnapIdle {
		t.Errorf("SnapState() = %v after mode change, want Idle", f.e.SnapState())
	}
	f.sched.Advance(time.Second)
	if len(f.vp.scrolls) != 0 {
		t.Errorf("scrolls = %d after mode change, want 0", len(f.vp.scrolls))
	}
}

func TestEngineRemeasure(t *testing.T) {
	f := newEngineFixture(t, nil)

	f.vp.height = 12000
	f.vp.addChapters(2000)
	f.e.Remeasure()

	chapters := f.e.Chapters()
	if len(chapters) != 4 {
		t.Fatalf("len(Chapters()) = %d, want 4", len(chapters))
	}
	if chapters[1].PercentStart != 25 {
		t.Errorf("B start = %v%%, want 25", chapters[1].PercentStart)
	}
	if len(f.obs.intersect) != 1 {
		t.Errorf("intersection subscriptions = %d, want 1", len(f.obs.intersect))
	}
	if len(f.obs.targets) != 4 {
		t.Errorf("observed chapter containers = %d, want 4", len(f.obs.targets))
	}
}

func TestEngineThemeFollowsSettle(t *testing.T) {
	f := newEngineFixture(t, func(vp *fakeViewport) { vp.paint(2000, 1000, "rgb(30, 58, 138)") })

	if f.e.Theme().Name != "white" {
		t.Fatalf("initial Theme() = %q, want white", f.e.Theme().Name)
	}
	f.scroll(2000)
	if f.e.Theme().Name != "white" {
		t.Errorf("Theme() = %q before settling, want white", f.e.Theme().Name)
	}
	f.sched.Advance(DefaultSettleDelay)
	if f.e.Theme().Name != "blue" {
		t.Errorf("Theme() = %q after settling, want blue", f.e.Theme().Name)
	}
	active := activeThemes(f.e.Themes())
	if len(active) != 1 {
		t.Errorf("active themes = %v, want exactly one", active)
	}
}

func TestEngineThemeInTouchMode(t *testing.T) {
	f := newEngineFixture(t, func(vp *fakeViewport) {
		vp.env = Environment{ScreenWidth: 400}
		vp.paint(2000, 1000, "#000")
	})

	f.scroll(2000)
	f.sched.Advance(DefaultThemeRecheck)
	if f.e.Theme().Name != "black" {
		t.Errorf("Theme() = %q, want black", f.e.Theme().Name)
	}
}

func TestEngineCurrentChapter(t *testing.T) {
	f := newEngineFixture(t, nil)

	targets := f.obs.targets
	if len(targets) != 3 {
		t.Fatalf("observed chapter containers = %d, want 3", len(targets))
	}
	f.obs.fireIntersect([]IntersectionEntry{
		{Target: targets[0], Ratio: 0.2, Intersecting: true},
		{Target: targets[1], Ratio: 0.6, Intersecting: true},
	})
	if got := f.e.CurrentChapter(); got != "B" {
		t.Errorf("CurrentChapter() = %q, want B", got)
	}
	f.obs.fireIntersect([]IntersectionEntry{{Target: targets[2], Ratio: 0.05, Intersecting: true}})
	if got := f.e.CurrentChapter(); got != "B" {
		t.Errorf("CurrentChapter() = %q after weak entry, want B", got)
	}
}

func TestEngineMissingRoot(t *testing.T) {
	f := newEngineFixture(t, func(vp *fakeViewport) { vp.root = nil })

	if n := len(f.e.Chapters()); n != 0 {
		t.Errorf("len(Chapters()) = %d, want 0", n)
	}
	if f.e.ScrollToChapter("A") {
		t.Error("ScrollToChapter() = true without geometry")
	}
	f.scroll(4500)
	if f.e.Progress() != 50 {
		t.Errorf("Progress() = %v, want 50", f.e.Progress())
	}
	if _, ok := f.e.ActiveChapter(); ok {
		t.Error("ActiveChapter() found without geometry")
	}
}

func TestEngineClose(t *testing.T) {
	f := newEngineFixture(t, func(vp *fakeViewport) { vp.addMarker(1000, 500) })

	f.scroll(900)
	if f.sched.Pending() == 0 {
		t.Fatal("no pending tasks after scroll")
	}
	f.e.Close()

	if f.obs.active() != 0 {
		t.Errorf("active subscriptions = %d after Close, want 0", f.obs.active())
	}
	if f.sched.Pending() != 0 {
		t.Errorf("Pending() = %d after Close, want 0", f.sched.Pending())
	}

	before := f.e.Progress()
	f.scroll(5000)
	f.sched.Advance(time.Second)
	if f.e.Progress() != before || len(f.vp.scrolls) != 0 {
		t.Error("closed engine still reacts to scrolling")
	}
	f.e.Close()
}

func TestEngineReleaseScrollIsNotSnapped(t *testing.T) {
	f := newEngineFixture(t, func(vp *fakeViewport) { vp.addMarker(4600, 200) })

	f.e.PointerDown(140, testBar)
	f.e.HandleScroll()
	f.e.PointerUp(300, testBar)
	f.e.HandleScroll()
	f.sched.Advance(time.Second)

	if f.vp.offset != 4500 {
		t.Errorf("offset = %v after release, want 4500", f.vp.offset)
	}
	if c, _ := f.vp.lastScroll(); c.offset != 4500 || c.behavior != ScrollSmooth {
		t.Errorf("last scroll = %+v, want 4500 smooth", c)
	}
	if f.e.SnapState() != SnapIdle {
		t.Errorf("SnapState() = %v, want Idle", f.e.SnapState())
	}

	// the reader's own scroll afterwards still snaps
	f.scroll(4550)
	f.sched.Advance(DefaultSettleDelay)
	if f.vp.offset != 4600 {
		t.Errorf("offset = %v after user scroll, want snapped 4600", f.vp.offset)
	}
}

func TestEngineChapterJumpIsNotSnapped(t *testing.T) {
	f := newEngineFixture(t, func(vp *fakeViewport) { vp.addMarker(3000, 200) })

	f.e.ScrollToChapter("B")
	f.scroll(2000)
	f.scroll(2998)
	f.sched.Advance(time.Second)

	if f.vp.offset != 2998 {
		t.Errorf("offset = %v after jump, want 2998", f.vp.offset)
	}
	if n := len(f.vp.scrolls); n != 1 {
		t.Errorf("scrolls = %d, want only the jump", n)
	}
}

func TestEngineKeyScrollEndsCommandedScroll(t *testing.T) {
	f := newEngineFixture(t, func(vp *fakeViewport) { vp.addMarker(3000, 200) })

	f.e.ScrollToChapter("B")
	f.e.HandleKeyScroll()
	f.scroll(3050)
	if f.e.SnapState() != SnapScrollSettling {
		t.Fatalf("SnapState() = %v after key scroll, want ScrollSettling", f.e.SnapState())
	}
	f.sched.Advance(DefaultSettleDelay)
	if f.vp.offset != 3000 {
		t.Errorf("offset = %v, want snapped 3000", f.vp.offset)
	}
}

func TestEngineScrollAwayEndsCommandedScroll(t *testing.T) {
	f := newEngineFixture(t, nil)

	f.e.ScrollToChapter("C")
	f.scroll(3000)
	if f.e.SnapState() != SnapIdle {
		t.Fatalf("SnapState() = %v on the way to the chapter, want Idle", f.e.SnapState())
	}
	f.scroll(2900)
	if f.e.SnapState() != SnapScrollSettling {
		t.Errorf("SnapState() = %v after scrolling back, want ScrollSettling", f.e.SnapState())
	}
}

func TestEngineResizeMeasuresOnce(t *testing.T) {
	vp := newFakeViewport(10000, 1000)
	vp.addChapters(5000, 5000)
	obs := newFakeObservers()
	e := New(vp, Options{
		Scheduler:    NewManualScheduler(),
		Logger:       zaptest.NewLogger(t),
		Resize:       obs,
		Intersection: obs,
		Indicator:    &fakeElement{vp: vp, height: 400},
	})
	t.Cleanup(e.Close)

	if n := len(obs.resize); n != 1 {
		t.Fatalf("resize subscriptions = %d, want 1 for root and indicator", n)
	}
	before := obs.next
	obs.fireResize()
	if n := obs.next - before; n != 1 {
		t.Errorf("measurements after one resize = %d, want 1", n)
	}
}

func TestEngineID(t *testing.T) {
	a := newEngineFixture(t, nil)
	b := newEngineFixture(t, nil)

	if a.e.ID() == "" {
		t.Fatal("ID() is empty")
	}
	if a.e.ID() == b.e.ID() {
		t.Errorf("two engines share ID %q", a.e.ID())
	}
}
