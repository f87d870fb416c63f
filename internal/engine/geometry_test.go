package engine

import (
	"math"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestMeasureChapters(t *testing.T) {
	vp := newFakeViewport(9000, 1000)
	vp.addChapters(3000, 3000, 3000)

	g := NewGeometryStore(zaptest.NewLogger(t))
	if !g.Measure(vp) {
		t.Fatal("Measure() = false, want true")
	}

	tests := []struct {
		name         string
		start, end   float64
		pStart, pEnd float64
	}{
		{"A", 0, 3000, 0, 33.3},
		{"B", 3000, 6000, 33.3, 66.7},
		{"C", 6000, 9000, 66.7, 100},
	}
	chapters := g.Chapters()
	if len(chapters) != len(tests) {
		t.Fatalf("len(Chapters()) = %d, want %d", len(chapters), len(tests))
	}
	for i, tt := range tests {
		r := chapters[i]
		if r.Name != tt.name || r.ID != i+1 {
			t.Errorf("chapter %d = %q id %d, want %q id %d", i, r.Name, r.ID, tt.name, i+1)
		}
		if r.Start != tt.start || r.End != tt.end {
			t.Errorf("chapter %s px = [%v,%v), want [%v,%v)", r.Name, r.Start, r.End, tt.start, tt.end)
		}
		if r.PercentStart != tt.pStart || r.PercentEnd != tt.pEnd {
			t.Errorf("chapter %s %% = [%v,%v), want [%v,%v)", r.Name, r.PercentStart, r.PercentEnd, tt.pStart, tt.pEnd)
		}
	}
	if g.TotalHeight() != 9000 {
		t.Errorf("TotalHeight() = %v, want 9000", g.TotalHeight())
	}
}

func TestMeasureSubchaptersUseScrollOffset(t *testing.T) {
	vp := newFakeViewport(10000, 1000)
	vp.addChapters(10000)
	vp.addSubchapter("Intro", "blue", 1000, 500)
	vp.addSubchapter("Gap", "", 4000, 1000)
	vp.offset = 700

	g := NewGeometryStore(zaptest.NewLogger(t))
	g.Measure(vp)

	subs := g.Subchapters()
	if len(subs) != 2 {
		t.Fatalf("len(Subchapters()) = %d, want 2", len(subs))
	}
	if subs[0].Start != 1000 || subs[0].End != 1500 {
		t.Errorf("Intro px = [%v,%v), want [1000,1500)", subs[0].Start, subs[0].End)
	}
	if subs[0].Theme != "blue" {
		t.Errorf("Intro theme = %q, want blue", subs[0].Theme)
	}
	if subs[1].PercentStart != 40 || subs[1].PercentEnd != 50 {
		t.Errorf("Gap %% = [%v,%v), want [40,50)", subs[1].PercentStart, subs[1].PercentEnd)
	}
}

func TestMeasureMissingRootKeepsRanges(t *testing.T) {
	vp := newFakeViewport(9000, 1000)
	vp.addChapters(4500, 4500)

	g := NewGeometryStore(zaptest.NewLogger(t))
	g.Measure(vp)

	vp.root = nil
	if g.Measure(vp) {
		t.Fatal("Measure() without root = true, want false")
	}
	if n := len(g.Chapters()); n != 2 {
		t.Errorf("len(Chapters()) = %d after failed measure, want 2", n)
	}
}

func TestMeasureIdempotent(t *testing.T) {
	vp := newFakeViewport(10000, 1000)
	vp.addChapters(3000, 3000, 4000)
	vp.addSubchapter("A.1", "blue", 500, 1000)
	vp.addSubchapter("C.1", "", 7000, 2000)

	g := NewGeometryStore(zaptest.NewLogger(t))
	if g.Measured() {
		t.Fatal("Measured() = true before Measure")
	}
	g.Measure(vp)
	if !g.Measured() {
		t.Fatal("Measured() = false after Measure")
	}
	first := append(g.Chapters(), g.Subchapters()...)

	g.resolve(10)
	if _, ok := FirstActive(g.Chapters()); !ok {
		t.Fatal("no active chapter at 10%")
	}
	vp.offset = 777
	g.Measure(vp)
	second := append(g.Chapters(), g.Subchapters()...)

	if len(second) != len(first) {
		t.Fatalf("ranges = %d after remeasure, want %d", len(second), len(first))
	}
	near := func(a, b float64) bool { return math.Abs(a-b) <= 1 }
	for i, r := range second {
		w := first[i]
		if r.Name != w.Name || !near(r.Start, w.Start) || !near(r.End, w.End) ||
			!near(r.PercentStart, w.PercentStart) || !near(r.PercentEnd, w.PercentEnd) {
			t.Errorf("range %d = %+v after remeasure, want %+v", i, r, w)
		}
		if r.Active {
			t.Errorf("range %s kept its active flag across Measure", r.Name)
		}
	}

	s, ok := g.Subchapter("A.1")
	if !ok || s.Start != 500 || s.End != 1500 || s.PercentStart != 5 || s.PercentEnd != 15 {
		t.Errorf("Subchapter(A.1) = %+v, %v, want [500,1500) 5%%-15%%", s, ok)
	}
	if s, ok := g.Subchapter("missing"); ok || s.Active || s.End != 0 {
		t.Errorf("Subchapter(missing) = %+v, %v, want zero range", s, ok)
	}
}

func TestMeasureZeroHeight(t *testing.T) {
	vp := newFakeViewport(0, 0)
	vp.addChapters(0)

	g := NewGeometryStore(zaptest.NewLogger(t))
	g.Measure(vp)

	r := g.Chapters()[0]
	if r.PercentStart != 0 || r.PercentEnd != 0 {
		t.Errorf("zero height chapter %% = [%v,%v), want [0,0)", r.PercentStart, r.PercentEnd)
	}
}

func TestChapterLookup(t *testing.T) {
	vp := newFakeViewport(9000, 1000)
	vp.addChapters(3000, 3000, 3000)

	g := NewGeometryStore(zaptest.NewLogger(t))
	g.Measure(vp)

	tests := []struct {
		query string
		want  string
		found bool
	}{
		{"B", "B", true},
		{"chapter-3", "C", true},
		{"  a ", "A", true},
		{"Z", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r, ok := g.Chapter(tt.query)
			if ok != tt.found || r.Name != tt.want {
				t.Errorf("Chapter(%q) = %q, %v, want %q, %v", tt.query, r.Name, ok, tt.want, tt.found)
			}
			if !ok && (r.Active || r.Start != 0 || r.End != 0) {
				t.Errorf("Chapter(%q) missing range = %+v, want zero", tt.query, r)
			}
		})
	}
}
