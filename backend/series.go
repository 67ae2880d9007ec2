package backend

import (
	"math"
	"slices"
	"sync"

	"git.sr.ht/~whereswaldon/vibe-viewer/plot"
)

// Series is one named, time-ordered sequence of sentiment values. The
// ingestion goroutine writes while the UI reads, so access is guarded.
type Series struct {
	lock        sync.RWMutex
	timestamps  []int64
	values      []float64
	rangeMin    float64
	rangeMax    float64
	initialized bool
	name        string
}

func NewSeries(name string) *Series {
	return &Series{name: name}
}

func (s *Series) Name() string {
	return s.name
}

func (s *Series) Initialized() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.initialized
}

func (s *Series) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.timestamps)
}

// Insert adds a value at a given timestamp to the series, keeping the
// series sorted regardless of source order. Non-finite values and
// duplicate timestamps are rejected and the method returns false.
func (s *Series) Insert(timestamp int64, value float64) (inserted bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	index, found := slices.BinarySearch(s.timestamps, timestamp)
	if found {
		return false
	}
	if !s.initialized {
		s.rangeMin = value
		s.rangeMax = value
		s.initialized = true
	}
	s.timestamps = slices.Insert(s.timestamps, index, timestamp)
	s.values = slices.Insert(s.values, index, value)
	s.rangeMax = max(s.rangeMax, value)
	s.rangeMin = min(s.rangeMin, value)
	return true
}

// Domain returns the time extent covered by the series. ok is false for
// a series with no valid points.
func (s *Series) Domain() (min, max int64, ok bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if len(s.timestamps) == 0 {
		return 0, 0, false
	}
	return s.timestamps[0], s.timestamps[len(s.timestamps)-1], true
}

// ValueRange returns the minimum and maximum values ever inserted.
func (s *Series) ValueRange() (min, max float64) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.rangeMin, s.rangeMax
}

// Points returns a copy of the points falling within span, bounds
// included, in chronological order.
func (s *Series) Points(span plot.Span) []plot.Point {
	s.lock.RLock()
	defer s.lock.RUnlock()
	lo, _ := slices.BinarySearch(s.timestamps, span.Start)
	hi, exact := slices.BinarySearch(s.timestamps, span.End)
	if exact {
		hi++
	}
	if hi <= lo {
		return nil
	}
	out := make([]plot.Point, hi-lo)
	for i := range out {
		out[i] = plot.Point{TimestampNS: s.timestamps[lo+i], Value: s.values[lo+i]}
	}
	return out
}

// At returns the value recorded at exactly the given timestamp.
func (s *Series) At(timestamp int64) (float64, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	index, found := slices.BinarySearch(s.timestamps, timestamp)
	if !found {
		return 0, false
	}
	return s.values[index], true
}

// Stats summarizes the values within span, bounds included. ok is false
// when the span contains no samples.
func (s *Series) Stats(span plot.Span) (minimum, mean, maximum float64, count int, ok bool) {
	pts := s.Points(span)
	if len(pts) == 0 {
		return 0, 0, 0, 0, false
	}
	minimum = pts[0].Value
	maximum = pts[0].Value
	for _, p := range pts {
		mean += p.Value
		maximum = max(maximum, p.Value)
		minimum = min(minimum, p.Value)
	}
	mean /= float64(len(pts))
	return minimum, mean, maximum, len(pts), true
}
