package engine

import "math"

// Round10 rounds a percentage to one decimal place. Range boundaries are
// compared in this rounded form, not in pixels.
func Round10(p float64) float64 {
	return math.Round(p*10) / 10
}

// Resolve sets the active flag of every range for progress p and returns how
// many ended up active. Ranges are half-open, except at p == 100 where the
// upper bound is inclusive so the final range still resolves. Gapped or
// overlapping ranges may leave zero or several active.
func Resolve(p float64, ranges []Range) int {
	n := 0
	for i := range ranges {
		r := &ranges[i]
		if p == 100 {
			r.Active = p >= r.PercentStart && p <= r.PercentEnd
		} else {
			r.Active = p >= r.PercentStart && p < r.PercentEnd
		}
		if r.Active {
			n++
		}
	}
	return n
}

// FirstActive returns the first active range
func FirstActive(ranges []Range) (Range, bool) {
	for _, r := range ranges {
		if r.Active {
			return r, true
		}
	}
	return Range{}, false
}
