package plot

// Headroom is the fraction of extra value-domain padded above the
// observed maximum so that peaks are not clipped at the top edge.
const Headroom = 0.075

// LinearScale maps a continuous domain interval onto a pixel interval.
// Apply and Invert are exact inverses up to float64 arithmetic, which
// pointer-driven lookups rely on.
type LinearScale struct {
	DomainMin, DomainMax float64
	RangeMin, RangeMax   float64
}

// TimeScale maps timestamps within span onto [0, width] pixels.
func TimeScale(span Span, width float64) LinearScale {
	return LinearScale{
		DomainMin: float64(span.Start),
		DomainMax: float64(span.End),
		RangeMin:  0,
		RangeMax:  width,
	}
}

// ValueScale maps values within [0, maxValue] plus headroom onto
// [height, 0] pixels, so that zero sits on the bottom edge.
func ValueScale(maxValue, height float64) LinearScale {
	return LinearScale{
		DomainMin: 0,
		DomainMax: maxValue * (1 + Headroom),
		RangeMin:  height,
		RangeMax:  0,
	}
}

// Apply maps a domain value to its pixel coordinate.
func (s LinearScale) Apply(v float64) float64 {
	domain := s.DomainMax - s.DomainMin
	if domain == 0 {
		domain = 1
	}
	return s.RangeMin + (v-s.DomainMin)/domain*(s.RangeMax-s.RangeMin)
}

// Invert maps a pixel coordinate back to its domain value.
func (s LinearScale) Invert(px float64) float64 {
	span := s.RangeMax - s.RangeMin
	if span == 0 {
		span = 1
	}
	return s.DomainMin + (px-s.RangeMin)/span*(s.DomainMax-s.DomainMin)
}
