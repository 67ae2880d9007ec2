package plot

// Decimate reduces a time-ordered point sequence to at most maxPoints
// representatives. The first and last input points are always kept, and
// the interior indices are partitioned into maxPoints-2 contiguous
// buckets of size len(points)/maxPoints, keeping the maximum-value point
// of each bucket. Keeping bucket maxima rather than fitting a line
// preserves spikes, which matter more than curve shape when the values
// being drawn are activity levels.
//
// Integer division can leave interior indices unassigned, so the final
// bucket extends to cover everything up to the last point. The result
// preserves chronological order. When len(points) <= maxPoints the input
// is returned unchanged.
func Decimate(points []Point, maxPoints int) []Point {
	if len(points) <= maxPoints {
		return points
	}
	if maxPoints <= 2 {
		return []Point{points[0], points[len(points)-1]}
	}
	bucketSize := len(points) / maxPoints
	buckets := maxPoints - 2
	out := make([]Point, 0, maxPoints)
	out = append(out, points[0])
	for b := 0; b < buckets; b++ {
		start := 1 + b*bucketSize
		end := start + bucketSize
		if b == buckets-1 {
			end = len(points) - 1
		}
		best := points[start]
		for _, p := range points[start+1 : end] {
			if p.Value > best.Value {
				best = p
			}
		}
		out = append(out, best)
	}
	return append(out, points[len(points)-1])
}
