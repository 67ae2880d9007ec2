package backend

import (
	"math"
	"testing"

	"git.sr.ht/~whereswaldon/vibe-viewer/plot"
)

func makeTestSeries(t *testing.T, interval, sampleCount int64) *Series {
	t.Helper()
	s := NewSeries("test")
	// Insert in reverse to prove ingestion sorts.
	for i := sampleCount - 1; i >= 0; i-- {
		ok := s.Insert(i*interval, float64(i))
		if !ok {
			t.Errorf("inserting distinct timestamps should always be okay, but sample %d failed", i)
		}
	}
	return s
}

func TestSeriesSortsUnorderedInput(t *testing.T) {
	interval := int64(1000)
	s := makeTestSeries(t, interval, 10)
	pts := s.Points(plot.Span{Start: 0, End: interval * 10})
	if len(pts) != 10 {
		t.Fatalf("expected 10 points, got %d", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].TimestampNS <= pts[i-1].TimestampNS {
			t.Errorf("points out of order at %d: %d after %d", i, pts[i].TimestampNS, pts[i-1].TimestampNS)
		}
	}
}

func TestSeriesRejectsInvalid(t *testing.T) {
	s := NewSeries("test")
	if s.Insert(100, math.NaN()) {
		t.Error("NaN values should be rejected")
	}
	if s.Insert(100, math.Inf(1)) {
		t.Error("infinite values should be rejected")
	}
	if !s.Insert(100, 1) {
		t.Error("finite value should insert")
	}
	if s.Insert(100, 2) {
		t.Error("duplicate timestamp should be rejected")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 stored point, got %d", s.Len())
	}
}

func TestSeriesPointsInclusiveBounds(t *testing.T) {
	s := makeTestSeries(t, 1000, 10)
	type expectation struct {
		name       string
		span       plot.Span
		count      int
		first, last int64
	}
	for _, e := range []expectation{
		{name: "exact bounds kept", span: plot.Span{Start: 2000, End: 5000}, count: 4, first: 2000, last: 5000},
		{name: "between samples", span: plot.Span{Start: 2500, End: 4500}, count: 2, first: 3000, last: 4000},
		{name: "everything", span: plot.Span{Start: -1, End: 1 << 40}, count: 10, first: 0, last: 9000},
		{name: "empty window", span: plot.Span{Start: 2100, End: 2900}, count: 0},
	} {
		t.Run(e.name, func(t *testing.T) {
			pts := s.Points(e.span)
			if len(pts) != e.count {
				t.Fatalf("expected %d points, got %d", e.count, len(pts))
			}
			if e.count == 0 {
				return
			}
			if pts[0].TimestampNS != e.first {
				t.Errorf("expected first timestamp %d, got %d", e.first, pts[0].TimestampNS)
			}
			if pts[len(pts)-1].TimestampNS != e.last {
				t.Errorf("expected last timestamp %d, got %d", e.last, pts[len(pts)-1].TimestampNS)
			}
		})
	}
}

func TestSeriesStats(t *testing.T) {
	s := makeTestSeries(t, 1000, 10)
	minimum, mean, maximum, count, ok := s.Stats(plot.Span{Start: 1000, End: 3000})
	if !ok {
		t.Fatal("stats over populated span should succeed")
	}
	if count != 3 {
		t.Errorf("expected 3 samples, got %d", count)
	}
	if minimum != 1 || maximum != 3 || mean != 2 {
		t.Errorf("expected min/mean/max 1/2/3, got %f/%f/%f", minimum, mean, maximum)
	}
	if _, _, _, _, ok := s.Stats(plot.Span{Start: 100, End: 900}); ok {
		t.Error("stats over empty span should report not ok")
	}
}

func TestDatasetDomainAndGeneration(t *testing.T) {
	d := &Dataset{}
	if d.Initialized() {
		t.Error("empty dataset should not be initialized")
	}
	d.SetHeadings([]string{"1 (very negative)", "5 (very positive)"}, []int{7, 9})
	if d.Initialized() {
		t.Error("dataset with headings but no samples should not be initialized")
	}
	gen := d.Generation()
	d.Insert(Sample{TimestampNS: 500, Series: 9, Value: 3})
	d.Insert(Sample{TimestampNS: 100, Series: 7, Value: 1})
	d.Insert(Sample{TimestampNS: 900, Series: 7, Value: 2})
	if !d.Initialized() {
		t.Error("dataset with samples should be initialized")
	}
	if d.Generation() == gen {
		t.Error("generation should advance when samples land")
	}
	span, ok := d.Domain()
	if !ok {
		t.Fatal("domain of populated dataset should exist")
	}
	if span.Start != 100 || span.End != 900 {
		t.Errorf("expected domain [100, 900], got [%d, %d]", span.Start, span.End)
	}
	gen = d.Generation()
	// Rejected sample must not advance the generation.
	d.Insert(Sample{TimestampNS: 900, Series: 7, Value: 5})
	if d.Generation() != gen {
		t.Error("rejected duplicate should not advance the generation")
	}
}
