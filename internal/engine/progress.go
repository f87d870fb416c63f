package engine

import "math"

// Sample converts a scroll offset into reading progress in percent. A
// document that fits the viewport has no progress. The result is not
// clamped, use ClampProgress on it.
func Sample(scrollOffset, totalHeight, viewportHeight float64) float64 {
	if totalHeight <= viewportHeight {
		return 0
	}
	return 100 * scrollOffset / (totalHeight - viewportHeight)
}

// ClampProgress folds overshoot back into [0,100]
func ClampProgress(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// PositionSampler reads the current progress from a viewport
type PositionSampler struct {
	vp ViewportContext
}

// NewPositionSampler binds a sampler to a viewport
func NewPositionSampler(vp ViewportContext) *PositionSampler {
	return &PositionSampler{vp: vp}
}

// Read returns the clamped progress for the current scroll offset
func (s *PositionSampler) Read() float64 {
	return ClampProgress(Sample(s.vp.ScrollOffset(), s.vp.ScrollHeight(), s.vp.ClientHeight()))
}

// OffsetFor returns the scroll offset matching a fraction in [0,1]
func (s *PositionSampler) OffsetFor(fraction float64) float64 {
	return fraction * MaxScroll(s.vp)
}
