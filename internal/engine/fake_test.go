package engine

import "fmt"

type fakeElement struct {
	vp     *fakeViewport
	attrs  map[string]string
	top    float64 // document coordinate
	height float64
	bg     string
}

func (e *fakeElement) Attr(name string) string {
	return e.attrs[name]
}

func (e *fakeElement) OffsetHeight() float64 {
	return e.height
}

func (e *fakeElement) BoundingRect() Rect {
	offset, width := 0.0, 0.0
	if e.vp != nil {
		offset, width = e.vp.offset, e.vp.width
	}
	return Rect{Top: e.top - offset, Width: width, Height: e.height}
}

func (e *fakeElement) Background() string {
	return e.bg
}

type fakeRoot struct {
	fakeElement
	sections map[SectionKind][]Element
}

func (r *fakeRoot) Sections(kind SectionKind) []Element {
	return r.sections[kind]
}

type scrollCall struct {
	offset   float64
	behavior ScrollBehavior
}

type fakeViewport struct {
	offset float64
	height float64
	client float64
	width  float64
	env    Environment

	root    *fakeRoot
	painted []*fakeElement
	scrolls []scrollCall
}

func newFakeViewport(height, client float64) *fakeViewport {
	vp := &fakeViewport{
		height: height,
		client: client,
		width:  1200,
		env:    Environment{ScreenWidth: 1200, Hover: true, FinePointer: true},
	}
	vp.root = &fakeRoot{
		fakeElement: fakeElement{vp: vp, attrs: map[string]string{}, height: height},
		sections:    map[SectionKind][]Element{},
	}
	return vp
}

func (vp *fakeViewport) ScrollOffset() float64 { return vp.offset }
func (vp *fakeViewport) ScrollHeight() float64 { return vp.height }
func (vp *fakeViewport) ClientHeight() float64 { return vp.client }
func (vp *fakeViewport) ClientWidth() float64  { return vp.width }

func (vp *fakeViewport) ScrollTo(offset float64, behavior ScrollBehavior) {
	vp.scrolls = append(vp.scrolls, scrollCall{offset: offset, behavior: behavior})
	vp.offset = min(max(offset, 0), MaxScroll(vp))
}

func (vp *fakeViewport) ElementAt(x, y float64) (Element, bool) {
	doc := y + vp.offset
	for i := len(vp.painted) - 1; i >= 0; i-- {
		el := vp.painted[i]
		if doc >= el.top && doc < el.top+el.height {
			return el, true
		}
	}
	return nil, false
}

func (vp *fakeViewport) Root() (Root, bool) {
	if vp.root == nil {
		return nil, false
	}
	return vp.root, true
}

func (vp *fakeViewport) Environment() Environment { return vp.env }

func (vp *fakeViewport) lastScroll() (scrollCall, bool) {
	if len(vp.scrolls) == 0 {
		return scrollCall{}, false
	}
	return vp.scrolls[len(vp.scrolls)-1], true
}

// addChapters lays chapters named A, B, C, ... end to end from the top
func (vp *fakeViewport) addChapters(heights ...float64) []*fakeElement {
	var out []*fakeElement
	top := 0.0
	for i, h := range heights {
		name := string(rune('A' + i))
		el := &fakeElement{
			vp:     vp,
			attrs:  map[string]string{AttrChapter: name, AttrID: fmt.Sprintf("chapter-%d", i+1)},
			top:    top,
			height: h,
		}
		vp.root.sections[SectionChapter] = append(vp.root.sections[SectionChapter], el)
		out = append(out, el)
		top += h
	}
	return out
}

func (vp *fakeViewport) addSubchapter(name, theme string, top, height float64) *fakeElement {
	el := &fakeElement{
		vp:     vp,
		attrs:  map[string]string{AttrSubchapter: name, AttrTheme: theme},
		top:    top,
		height: height,
	}
	vp.root.sections[SectionSubchapter] = append(vp.root.sections[SectionSubchapter], el)
	return el
}

func (vp *fakeViewport) addMarker(top, height float64) *fakeElement {
	el := &fakeElement{vp: vp, attrs: map[string]string{}, top: top, height: height}
	vp.root.sections[SectionSnapMarker] = append(vp.root.sections[SectionSnapMarker], el)
	return el
}

func (vp *fakeViewport) paint(top, height float64, bg string) *fakeElement {
	el := &fakeElement{vp: vp, attrs: map[string]string{}, top: top, height: height, bg: bg}
	vp.painted = append(vp.painted, el)
	return el
}

type fakeObservers struct {
	next      int
	resize    map[int]func([]ResizeEntry)
	intersect map[int]func([]IntersectionEntry)
	targets   []Element
}

func newFakeObservers() *fakeObservers {
	return &fakeObservers{
		resize:    map[int]func([]ResizeEntry){},
		intersect: map[int]func([]IntersectionEntry){},
	}
}

func (o *fakeObservers) ObserveResize(targets []Element, fn func([]ResizeEntry)) Subscription {
	o.next++
	id := o.next
	o.resize[id] = fn
	return SubscriptionFunc(func() { delete(o.resize, id) })
}

func (o *fakeObservers) ObserveIntersection(targets []Element, opts IntersectionOptions, fn func([]IntersectionEntry)) Subscription {
	o.next++
	id := o.next
	o.intersect[id] = fn
	o.targets = targets
	return SubscriptionFunc(func() { delete(o.intersect, id) })
}

func (o *fakeObservers) fireResize() {
	for _, fn := range o.resize {
		fn([]ResizeEntry{{}})
	}
}

func (o *fakeObservers) fireIntersect(entries []IntersectionEntry) {
	for _, fn := range o.intersect {
		fn(entries)
	}
}

func (o *fakeObservers) active() int {
	return len(o.resize) + len(o.intersect)
}
