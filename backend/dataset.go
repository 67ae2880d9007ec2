package backend

import (
	"sync/atomic"

	"git.sr.ht/~whereswaldon/vibe-viewer/plot"
)

// Dataset is the full collection of series for one loaded trace. Series
// are registered once via SetHeadings and then only ever appended to;
// loading a new trace builds a fresh Dataset rather than mutating an old
// one.
type Dataset struct {
	Series []*Series
	// seriesMapping maps from series identifiers used by the ingestion
	// layer to the index of a series in this structure.
	seriesMapping map[int]int
	generation    atomic.Uint64
}

// Initialized reports whether any registered series has received at
// least one valid sample. A series that ingested zero valid points
// still participates in the dataset; it just draws nothing.
func (d *Dataset) Initialized() bool {
	if len(d.Series) == 0 {
		return false
	}
	for _, s := range d.Series {
		if s.Initialized() {
			return true
		}
	}
	return false
}

// Generation increases every time a sample lands anywhere in the
// dataset. Render caches key on it to detect new data.
func (d *Dataset) Generation() uint64 {
	return d.generation.Load()
}

// Domain returns the union of every series' time extent.
func (d *Dataset) Domain() (plot.Span, bool) {
	var out plot.Span
	any := false
	for _, s := range d.Series {
		sMin, sMax, ok := s.Domain()
		if !ok {
			continue
		}
		if !any {
			out = plot.Span{Start: sMin, End: sMax}
			any = true
			continue
		}
		out.Start = min(sMin, out.Start)
		out.End = max(sMax, out.End)
	}
	return out, any
}

// SetHeadings registers the named series of a dataset. It must be
// invoked at least once prior to the first call to [Insert]. It may be
// invoked additional times to register new series.
//
// The ids slice provides the ingestion layer's identifier for each
// series, which is likely to differ from the index used to store the
// data in this type.
func (d *Dataset) SetHeadings(headings []string, ids []int) {
	if d.seriesMapping == nil {
		d.seriesMapping = make(map[int]int)
	}
	for i, identifier := range ids {
		d.seriesMapping[identifier] = len(d.Series)
		d.Series = append(d.Series, NewSeries(headings[i]))
	}
	d.generation.Add(1)
}

// Insert the sample. Will panic if the sample's Series does not have a
// heading previously registered via [SetHeadings].
func (d *Dataset) Insert(sample Sample) {
	localIdx := d.seriesMapping[sample.Series]
	if d.Series[localIdx].Insert(sample.TimestampNS, sample.Value) {
		d.generation.Add(1)
	}
}
