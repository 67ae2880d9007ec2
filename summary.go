package main

import (
	"fmt"
	"image"
	"time"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget/material"
	"gioui.org/x/component"

	"git.sr.ht/~whereswaldon/vibe-viewer/backend"
	"git.sr.ht/~whereswaldon/vibe-viewer/plot"
)

type summaryRow struct {
	name           string
	min, mean, max float64
	count          int
}

// Summary shows per-series statistics over the span committed by the
// brush, so the rest of the page stays in sync with the selection. Rows
// are recomputed only when the span or the underlying data change.
type Summary struct {
	chart *ChartData
	table component.GridState

	lastGen  uint64
	lastSpan plot.Span
	haveRows bool
	rows     []summaryRow
}

func NewSummary(chart *ChartData) *Summary {
	return &Summary{chart: chart}
}

func (s *Summary) update(data *backend.Dataset, span plot.Span) {
	gen := data.Generation()
	if s.haveRows && gen == s.lastGen && span == s.lastSpan {
		return
	}
	s.rows = s.rows[:0]
	for _, series := range data.Series {
		minimum, mean, maximum, count, ok := series.Stats(span)
		if !ok {
			s.rows = append(s.rows, summaryRow{name: series.Name()})
			continue
		}
		s.rows = append(s.rows, summaryRow{
			name:  series.Name(),
			min:   minimum,
			mean:  mean,
			max:   maximum,
			count: count,
		})
	}
	s.lastGen = gen
	s.lastSpan = span
	s.haveRows = true
}

func (s *Summary) Layout(gtx C, th *material.Theme) D {
	data := s.chart.data
	span, ok := s.chart.ActiveSpan()
	if data == nil || !ok {
		return layout.Center.Layout(gtx, material.Body1(th, "No data yet.").Layout)
	}
	s.update(data, span)
	spanLabel := material.Body1(th, fmt.Sprintf("Selected window: %s — %s",
		time.Unix(0, span.Start).UTC().Format(timestampDisplayLayout),
		time.Unix(0, span.End).UTC().Format(timestampDisplayLayout)))
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return layout.UniformInset(2).Layout(gtx, spanLabel.Layout)
		}),
		layout.Flexed(1, func(gtx C) D {
			return s.layoutTable(gtx, th)
		}),
	)
}

func (s *Summary) layoutTable(gtx C, th *material.Theme) D {
	tbl := component.Table(th, &s.table)
	const (
		nameCol = iota
		samplesCol
		minCol
		meanCol
		maxCol
		numCols
	)
	longest := material.Body1(th, "Samples")
	origConstraints := gtx.Constraints
	gtx.Constraints.Min = image.Point{}
	longestDims, _ := rec(gtx, func(gtx C) D {
		return layout.UniformInset(2).Layout(gtx, longest.Layout)
	})
	gtx.Constraints = origConstraints
	statColWidth := longestDims.Size.X * 2
	return tbl.Layout(gtx, len(s.rows), numCols,
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(longestDims.Size.Y, constraint)
			}
			if index == nameCol {
				return max(constraint-statColWidth*(numCols-1), statColWidth)
			}
			return statColWidth
		},
		func(gtx layout.Context, index int) layout.Dimensions {
			return layout.Background{}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions {
					paint.FillShape(gtx.Ops, th.ContrastBg, clip.Rect{Max: gtx.Constraints.Min}.Op())
					return D{Size: gtx.Constraints.Min}
				},
				func(gtx layout.Context) layout.Dimensions {
					l := material.Body1(th, "")
					l.MaxLines = 1
					l.Color = th.ContrastFg
					switch index {
					case nameCol:
						l.Text = "Sentiment Series"
					case samplesCol:
						l.Text = "Samples"
						l.Alignment = text.End
					case minCol:
						l.Text = "Min"
						l.Alignment = text.End
					case meanCol:
						l.Text = "Mean"
						l.Alignment = text.End
					case maxCol:
						l.Text = "Max"
						l.Alignment = text.End
					}
					return l.Layout(gtx)
				},
			)
		},
		func(gtx layout.Context, row, col int) layout.Dimensions {
			r := s.rows[row]
			return layout.UniformInset(2).Layout(gtx, func(gtx C) D {
				l := material.Body2(th, "")
				switch col {
				case nameCol:
					l.Text = r.name
				case samplesCol:
					l.Text = fmt.Sprintf("%d", r.count)
					l.Alignment = text.End
				case minCol:
					l.Alignment = text.End
					if r.count > 0 {
						l.Text = fmt.Sprintf("%.3f", r.min)
					}
				case meanCol:
					l.Alignment = text.End
					if r.count > 0 {
						l.Text = fmt.Sprintf("%.3f", r.mean)
					}
				case maxCol:
					l.Alignment = text.End
					if r.count > 0 {
						l.Text = fmt.Sprintf("%.3f", r.max)
					}
				}
				return l.Layout(gtx)
			})
		})
}
