package plot

import (
	"math/rand"
	"testing"
)

func testIndex() *Index {
	return BuildIndex([]DecimatedSeries{
		{
			Name: "1 (very negative)",
			Points: []Point{
				{TimestampNS: 100, Value: 1},
				{TimestampNS: 200, Value: 2},
				{TimestampNS: 400, Value: 3},
			},
		},
		{
			Name: "5 (very positive)",
			Points: []Point{
				{TimestampNS: 200, Value: 7},
				{TimestampNS: 300, Value: 8},
			},
		},
	})
}

func TestIndexExactMatch(t *testing.T) {
	ix := testIndex()
	for _, ts := range []int64{100, 200, 300, 400} {
		got, ok := ix.Nearest(ts)
		if !ok {
			t.Fatalf("lookup of existing timestamp %d failed", ts)
		}
		if got != ts {
			t.Errorf("exact timestamp %d resolved to %d", ts, got)
		}
	}
}

func TestIndexTieResolvesLower(t *testing.T) {
	ix := testIndex()
	// 150 is equidistant from 100 and 200.
	got, ok := ix.Nearest(150)
	if !ok {
		t.Fatal("lookup failed")
	}
	if got != 100 {
		t.Errorf("tie should resolve to the earlier timestamp 100, got %d", got)
	}
}

func TestIndexOutOfDomain(t *testing.T) {
	ix := testIndex()
	if got, _ := ix.Nearest(-500); got != 100 {
		t.Errorf("before-domain lookup should clamp to 100, got %d", got)
	}
	if got, _ := ix.Nearest(10_000); got != 400 {
		t.Errorf("after-domain lookup should clamp to 400, got %d", got)
	}
}

func TestIndexValuesAt(t *testing.T) {
	ix := testIndex()
	vals := ix.ValuesAt(200)
	if len(vals) != 2 {
		t.Fatalf("expected both series at timestamp 200, got %d entries", len(vals))
	}
	if vals["1 (very negative)"] != 2 {
		t.Errorf("unexpected value for negative series: %f", vals["1 (very negative)"])
	}
	if vals["5 (very positive)"] != 7 {
		t.Errorf("unexpected value for positive series: %f", vals["5 (very positive)"])
	}
	// 300 only exists in one series; the other must be absent, not zero.
	vals = ix.ValuesAt(300)
	if _, present := vals["1 (very negative)"]; present {
		t.Error("series without a sample at 300 should be absent from the lookup")
	}
}

func TestIndexEmpty(t *testing.T) {
	ix := BuildIndex(nil)
	if !ix.Empty() {
		t.Error("index over no series should be empty")
	}
	if _, ok := ix.Nearest(0); ok {
		t.Error("empty index should refuse lookups")
	}
}

func TestIndexMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 100; trial++ {
		n := rng.Intn(50) + 1
		pts := make([]Point, 0, n)
		seen := map[int64]bool{}
		for len(pts) < n {
			ts := rng.Int63n(100_000)
			if seen[ts] {
				continue
			}
			seen[ts] = true
			pts = append(pts, Point{TimestampNS: ts, Value: rng.Float64()})
		}
		ix := BuildIndex([]DecimatedSeries{{Name: "s", Points: pts}})
		for q := 0; q < 20; q++ {
			target := rng.Int63n(120_000) - 10_000
			got, ok := ix.Nearest(target)
			if !ok {
				t.Fatal("lookup on non-empty index failed")
			}
			best := pts[0].TimestampNS
			bestDist := abs64(best - target)
			for _, p := range pts[1:] {
				if d := abs64(p.TimestampNS - target); d < bestDist {
					best = p.TimestampNS
					bestDist = d
				}
			}
			if abs64(got-target) != bestDist {
				t.Errorf("trial %d: nearest to %d was %d (distance %d), linear scan found distance %d",
					trial, target, got, abs64(got-target), bestDist)
			}
		}
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
