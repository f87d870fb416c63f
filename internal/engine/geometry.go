package engine

import (
	"strings"

	"go.uber.org/zap"
)

// Range is the measured extent of a chapter or subchapter
type Range struct {
	Kind         SectionKind
	Name         string
	ID           int // 1-based ordinal within its kind
	Anchor       string
	Theme        string
	Start        float64
	End          float64
	PercentStart float64
	PercentEnd   float64
	Active       bool
}

// Height returns the pixel extent of the range
func (r Range) Height() float64 {
	return r.End - r.Start
}

// GeometryStore holds the latest measurement of the document
type GeometryStore struct {
	log         *zap.Logger
	chapters    []Range
	subchapters []Range
	totalHeight float64
	measured    bool
}

// NewGeometryStore creates an empty store
func NewGeometryStore(log *zap.Logger) *GeometryStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &GeometryStore{log: log}
}

// Measure scans the document and replaces every stored range. Chapters are
// laid end to end by summing offset heights, subchapters take their own
// bounding box shifted by the scroll offset since they may sit apart from one
// another. It reports false and keeps the previous ranges when the document
// root is missing.
func (g *GeometryStore) Measure(vp ViewportContext) bool {
	root, ok := vp.Root()
	if !ok || root == nil {
		g.log.Warn("Document root missing, keeping previous geometry", zap.Int("chapters", len(g.chapters)))
		return false
	}

	total := vp.ScrollHeight()
	scrollTop := vp.ScrollOffset()

	containers := root.Sections(SectionChapter)
	chapters := make([]Range, 0, len(containers))
	cursor := 0.0
	for i, el := range containers {
		start := cursor
		cursor += el.OffsetHeight()
		chapters = append(chapters, newRange(SectionChapter, i, el, AttrChapter, start, cursor, total))
	}

	containers = root.Sections(SectionSubchapter)
	subchapters := make([]Range, 0, len(containers))
	for i, el := range containers {
		rect := el.BoundingRect()
		start := rect.Top + scrollTop
		r := newRange(SectionSubchapter, i, el, AttrSubchapter, start, start+rect.Height, total)
		r.Theme = strings.TrimSpace(el.Attr(AttrTheme))
		subchapters = append(subchapters, r)
	}

	g.chapters = chapters
	g.subchapters = subchapters
	g.totalHeight = total
	g.measured = true

	g.log.Debug("Geometry measured",
		zap.Int("chapters", len(chapters)),
		zap.Int("subchapters", len(subchapters)),
		zap.Float64("total", total))
	return true
}

func newRange(kind SectionKind, index int, el Element, attr string, start, end, total float64) Range {
	return Range{
		Kind:         kind,
		Name:         strings.TrimSpace(el.Attr(attr)),
		ID:           index + 1,
		Anchor:       el.Attr(AttrID),
		Start:        start,
		End:          end,
		PercentStart: percentOf(start, total),
		PercentEnd:   percentOf(end, total),
	}
}

func percentOf(px, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return Round10(100 * px / total)
}

// Measured reports whether at least one measurement succeeded
func (g *GeometryStore) Measured() bool {
	return g.measured
}

// TotalHeight returns the document height seen by the last measurement
func (g *GeometryStore) TotalHeight() float64 {
	return g.totalHeight
}

// Chapters returns a copy of the chapter ranges
func (g *GeometryStore) Chapters() []Range {
	return append([]Range(nil), g.chapters...)
}

// Subchapters returns a copy of the subchapter ranges
func (g *GeometryStore) Subchapters() []Range {
	return append([]Range(nil), g.subchapters...)
}

// Chapter looks a chapter up by name or anchor. A missing chapter yields a
// zero, inactive range.
func (g *GeometryStore) Chapter(name string) (Range, bool) {
	return lookup(g.chapters, name)
}

// Subchapter looks a subchapter up by name or anchor
func (g *GeometryStore) Subchapter(name string) (Range, bool) {
	return lookup(g.subchapters, name)
}

func lookup(ranges []Range, name string) (Range, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Range{}, false
	}
	for _, r := range ranges {
		if r.Name == name || (r.Anchor != "" && r.Anchor == name) {
			return r, true
		}
	}
	for _, r := range ranges {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Range{}, false
}

// resolve applies the active flags for progress p to both range families
func (g *GeometryStore) resolve(p float64) (chapters, subchapters int) {
	return Resolve(p, g.chapters), Resolve(p, g.subchapters)
}
