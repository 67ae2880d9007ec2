package plot

import (
	"math/rand"
	"testing"
)

func rampPoints(n int) []Point {
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{TimestampNS: int64(i) * 1000, Value: float64(i % 7)}
	}
	return pts
}

func TestDecimateIdentity(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 50} {
		pts := rampPoints(n)
		got := Decimate(pts, 50)
		if len(got) != n {
			t.Errorf("decimating %d points with budget 50 should be the identity, got %d points", n, len(got))
		}
		for i := range got {
			if got[i] != pts[i] {
				t.Errorf("identity decimation altered point %d: %v != %v", i, got[i], pts[i])
			}
		}
	}
}

func TestDecimateEndpointsAndBound(t *testing.T) {
	for _, tc := range []struct {
		name      string
		n         int
		maxPoints int
	}{
		{name: "tiny budget", n: 100, maxPoints: 3},
		{name: "uneven buckets", n: 103, maxPoints: 10},
		{name: "even buckets", n: 100, maxPoints: 10},
		{name: "degenerate budget", n: 10, maxPoints: 2},
		{name: "budget below two", n: 10, maxPoints: 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pts := rampPoints(tc.n)
			got := Decimate(pts, tc.maxPoints)
			bound := tc.maxPoints
			if bound < 2 {
				bound = 2
			}
			if len(got) > bound {
				t.Errorf("expected at most %d points, got %d", bound, len(got))
			}
			if got[0] != pts[0] {
				t.Errorf("first point not retained: got %v, want %v", got[0], pts[0])
			}
			if got[len(got)-1] != pts[len(pts)-1] {
				t.Errorf("last point not retained: got %v, want %v", got[len(got)-1], pts[len(pts)-1])
			}
			for i := 1; i < len(got); i++ {
				if got[i].TimestampNS <= got[i-1].TimestampNS {
					t.Errorf("output not chronological at %d: %d after %d", i, got[i].TimestampNS, got[i-1].TimestampNS)
				}
			}
		})
	}
}

func TestDecimateKeepsBucketMaximum(t *testing.T) {
	t0, t1, t2, t3, t4 := int64(0), int64(10), int64(20), int64(30), int64(40)
	pts := []Point{
		{TimestampNS: t0, Value: 1},
		{TimestampNS: t1, Value: 5},
		{TimestampNS: t2, Value: 2},
		{TimestampNS: t3, Value: 9},
		{TimestampNS: t4, Value: 1},
	}
	got := Decimate(pts, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	if got[0] != pts[0] {
		t.Errorf("expected first point %v, got %v", pts[0], got[0])
	}
	if got[2] != pts[4] {
		t.Errorf("expected last point %v, got %v", pts[4], got[2])
	}
	if got[1] != pts[3] {
		t.Errorf("expected interior point to be the bucket maximum %v, got %v", pts[3], got[1])
	}
}

func TestDecimateSpikeSurvival(t *testing.T) {
	// A single extreme value must survive any budget of at least 3.
	pts := rampPoints(1000)
	spikeIdx := 617
	pts[spikeIdx].Value = 1e6
	for _, budget := range []int{3, 10, 100, 500} {
		got := Decimate(pts, budget)
		found := false
		for _, p := range got {
			if p.Value == 1e6 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("spike lost at budget %d", budget)
		}
	}
}

func TestDecimateEmpty(t *testing.T) {
	if got := Decimate(nil, 10); len(got) != 0 {
		t.Errorf("expected empty result for empty input, got %d points", len(got))
	}
}

func TestSpanFilterMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pts := make([]Point, 500)
	ts := int64(0)
	for i := range pts {
		ts += rng.Int63n(1000) + 1
		pts[i] = Point{TimestampNS: ts, Value: rng.Float64()}
	}
	outer := Span{Start: pts[50].TimestampNS, End: pts[400].TimestampNS}
	inner := Span{Start: pts[100].TimestampNS, End: pts[300].TimestampNS}
	outerPts := outer.Filter(pts)
	innerPts := inner.Filter(pts)
	if len(innerPts) > len(outerPts) {
		t.Errorf("narrower span yielded more points: %d > %d", len(innerPts), len(outerPts))
	}
	for _, p := range innerPts {
		if !inner.Contains(p.TimestampNS) {
			t.Errorf("filtered point %d outside span", p.TimestampNS)
		}
	}
	if got := outerPts[0].TimestampNS; got != outer.Start {
		t.Errorf("inclusive start bound dropped: got %d, want %d", got, outer.Start)
	}
	if got := outerPts[len(outerPts)-1].TimestampNS; got != outer.End {
		t.Errorf("inclusive end bound dropped: got %d, want %d", got, outer.End)
	}
}
