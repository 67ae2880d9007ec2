package plot

import "sort"

// DecimatedSeries is the drawable form of one series for a single render
// pass: post-visibility, post-span-filter, post-decimation. It is
// rebuilt every pass and never outlives it.
type DecimatedSeries struct {
	Name   string
	Points []Point
}

// Index resolves pointer timestamps to the nearest drawn sample. It is
// built only from the points that were actually drawn, so hover results
// always correspond to something visible on screen.
type Index struct {
	timestamps []int64
	values     map[int64]map[string]float64
}

// BuildIndex constructs an Index over the given decimated series.
func BuildIndex(series []DecimatedSeries) *Index {
	ix := &Index{
		values: make(map[int64]map[string]float64),
	}
	for _, s := range series {
		for _, p := range s.Points {
			byName, ok := ix.values[p.TimestampNS]
			if !ok {
				byName = make(map[string]float64)
				ix.values[p.TimestampNS] = byName
				ix.timestamps = append(ix.timestamps, p.TimestampNS)
			}
			byName[s.Name] = p.Value
		}
	}
	sort.Slice(ix.timestamps, func(i, j int) bool {
		return ix.timestamps[i] < ix.timestamps[j]
	})
	return ix
}

// Empty reports whether the index contains no timestamps. Nearest must
// not be called on an empty index.
func (ix *Index) Empty() bool {
	return len(ix.timestamps) == 0
}

// Nearest returns the indexed timestamp closest to ts. Ties between two
// equidistant neighbors resolve to the earlier one. Lookup cost is
// logarithmic in the number of drawn timestamps.
func (ix *Index) Nearest(ts int64) (int64, bool) {
	if len(ix.timestamps) == 0 {
		return 0, false
	}
	i := sort.Search(len(ix.timestamps), func(i int) bool {
		return ix.timestamps[i] >= ts
	})
	if i == len(ix.timestamps) {
		return ix.timestamps[len(ix.timestamps)-1], true
	}
	if i == 0 {
		return ix.timestamps[0], true
	}
	lower, upper := ix.timestamps[i-1], ix.timestamps[i]
	if ts-lower <= upper-ts {
		return lower, true
	}
	return upper, true
}

// ValuesAt returns the series values recorded at an indexed timestamp.
// Series without a sample at exactly that timestamp are absent from the
// returned map.
func (ix *Index) ValuesAt(ts int64) map[string]float64 {
	return ix.values[ts]
}
