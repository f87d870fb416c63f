package engine

import "strings"

// minVisibleRatio is the share of a chapter that must be visible before it
// takes over the chapter label
const minVisibleRatio = 0.1

// VisibilityResolver keeps the chapter label of the most visible chapter
// container. It runs apart from the percentage resolver and only drives the
// fixed chapter title.
type VisibilityResolver struct {
	current string
}

// Apply folds a batch of intersection entries into the label. It reports
// whether the label changed.
func (v *VisibilityResolver) Apply(entries []IntersectionEntry) bool {
	if len(entries) == 0 {
		return false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.Ratio > best.Ratio {
			best = e
		}
	}
	if best.Ratio <= minVisibleRatio || best.Target == nil {
		return false
	}
	label := strings.TrimSpace(best.Target.Attr(AttrChapter))
	if label == v.current {
		return false
	}
	v.current = label
	return true
}

// Current returns the chapter label, empty before any chapter became visible
func (v *VisibilityResolver) Current() string {
	return v.current
}

// Reset clears the label
func (v *VisibilityResolver) Reset() {
	v.current = ""
}
