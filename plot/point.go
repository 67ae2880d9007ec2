// Package plot contains the pure data-to-pixels pipeline shared by the
// detail chart and the overview: span filtering, decimation, coordinate
// scaling, and the nearest-timestamp index used for hover lookups. It
// performs no drawing and holds no UI state, which keeps every stage
// testable without a window.
package plot

import "sort"

// Point is one sample of a series: a nanosecond timestamp and a value.
type Point struct {
	TimestampNS int64
	Value       float64
}

// Span is a time-domain window. Start and End are inclusive nanosecond
// timestamps with Start <= End for any span produced by this package.
type Span struct {
	Start, End int64
}

// Valid reports whether the span is well-formed and non-empty.
func (s Span) Valid() bool {
	return s.Start < s.End
}

// Duration returns the width of the span in nanoseconds.
func (s Span) Duration() int64 {
	return s.End - s.Start
}

// Contains reports whether ts falls within the span, bounds included.
func (s Span) Contains(ts int64) bool {
	return ts >= s.Start && ts <= s.End
}

// Clip constrains s to lie within bounds.
func (s Span) Clip(bounds Span) Span {
	if s.Start < bounds.Start {
		s.Start = bounds.Start
	}
	if s.End > bounds.End {
		s.End = bounds.End
	}
	return s
}

// Filter returns the points of pts that fall within the span, bounds
// included. The input must be sorted by timestamp; the result aliases
// the input slice.
func (s Span) Filter(pts []Point) []Point {
	lo := sort.Search(len(pts), func(i int) bool {
		return pts[i].TimestampNS >= s.Start
	})
	hi := sort.Search(len(pts), func(i int) bool {
		return pts[i].TimestampNS > s.End
	})
	if hi < lo {
		hi = lo
	}
	return pts[lo:hi]
}
