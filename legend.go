package main

import (
	"fmt"
	"image"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget/material"
	"gioui.org/x/component"

	"git.sr.ht/~whereswaldon/vibe-viewer/plot"
)

func (c *ChartData) layoutLegend(gtx C, th *material.Theme, span plot.Span) D {
	table := component.Table(th, &c.keyTable)
	table.HScrollbarStyle.Indicator.MinorWidth = 0
	table.HScrollbarStyle.Track.MinorPadding = 0
	table.VScrollbarStyle.Indicator.MinorWidth = 0
	table.VScrollbarStyle.Track.MinorPadding = 0
	colorColWidth := gtx.Dp(50)
	statColWidth := gtx.Dp(100)
	nameColWidth := gtx.Constraints.Max.X - colorColWidth - 2*statColWidth - gtx.Dp(table.VScrollbarStyle.Width())
	rowHeight := gtx.Sp(20)
	const (
		colorCol = iota
		seriesNameCol
		meanCol
		samplesCol
		numCols
	)
	return table.Layout(gtx, len(c.data.Series)+1, numCols,
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(constraint, rowHeight)
			}

			var size int
			switch index {
			case colorCol:
				size = colorColWidth
			case seriesNameCol:
				size = nameColWidth
			case meanCol:
				size = statColWidth
			case samplesCol:
				size = statColWidth
			}
			return min(size, constraint)
		},
		func(gtx layout.Context, index int) layout.Dimensions {
			var l material.LabelStyle
			switch index {
			case colorCol:
				l = material.Body1(th, "Color")
			case seriesNameCol:
				l = material.Body1(th, "Sentiment Series")
				l.Alignment = text.Middle
			case meanCol:
				l = material.Body1(th, "Mean")
				l.Alignment = text.End
			case samplesCol:
				l = material.Body1(th, "Samples")
				l.Alignment = text.End
			default:
				l = material.Body1(th, "???")
			}
			l.Color = th.ContrastFg
			return layout.Background{}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions {
					paint.FillShape(gtx.Ops, th.ContrastBg, clip.Rect{Max: gtx.Constraints.Max}.Op())
					return D{Size: gtx.Constraints.Min}
				}, func(gtx layout.Context) layout.Dimensions {
					return l.Layout(gtx)
				},
			)
		},
		func(gtx layout.Context, row, col int) (dims layout.Dimensions) {
			defer func() {
				dims.Size = gtx.Constraints.Constrain(dims.Size)
			}()
			dims = layout.UniformInset(2).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				if row == len(c.data.Series) {
					switch col {
					case colorCol:
						return layout.Dimensions{Size: gtx.Constraints.Min}
					case seriesNameCol:
						return material.Body2(th, "Total of enabled series").Layout(gtx)
					case meanCol:
						sum := 0.0
						count := 0
						for sumIdx, series := range c.data.Series {
							if !c.Enabled[sumIdx].Value {
								continue
							}
							_, mean, _, n, ok := series.Stats(span)
							if !ok {
								continue
							}
							sum += mean * float64(n)
							count += n
						}
						l := material.Body2(th, "")
						if count > 0 {
							l.Text = fmt.Sprintf("%.3f", sum/float64(count))
						}
						l.Alignment = text.End
						return l.Layout(gtx)
					case samplesCol:
						count := 0
						for sumIdx, series := range c.data.Series {
							if c.Enabled[sumIdx].Value {
								_, _, _, n, _ := series.Stats(span)
								count += n
							}
						}
						l := material.Body2(th, fmt.Sprintf("%d", count))
						l.Alignment = text.End
						return l.Layout(gtx)
					default:
						return material.Body2(th, "???").Layout(gtx)
					}
				}
				c.Enabled[row].Update(gtx)
				enabled := c.Enabled[row].Value
				disabledAlpha := uint8(100)
				_, mean, _, n, statsOK := c.data.Series[row].Stats(span)
				switch col {
				case colorCol:
					return c.Enabled[row].Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
							sideLen := gtx.Dp(10)
							sz := image.Pt(sideLen, sideLen)
							fullColor := colors[row%len(colors)]
							if !enabled {
								fullColor.A = disabledAlpha
							}
							paint.FillShape(gtx.Ops, fullColor, clip.Rect{Max: sz}.Op())
							return D{Size: sz}
						})
					})
				case seriesNameCol:
					l := material.Body2(th, c.data.Series[row].Name())
					if !enabled {
						l.Color.A = disabledAlpha
					}
					return l.Layout(gtx)
				case meanCol:
					l := material.Body2(th, "")
					if statsOK {
						l.Text = fmt.Sprintf("%.3f", mean)
					}
					if !enabled {
						l.Color.A = disabledAlpha
					}
					l.Alignment = text.End
					return l.Layout(gtx)
				case samplesCol:
					l := material.Body2(th, fmt.Sprintf("%d", n))
					if !enabled {
						l.Color.A = disabledAlpha
					}
					l.Alignment = text.End
					return l.Layout(gtx)
				default:
					return D{Size: gtx.Constraints.Max}
				}
			})
			if row&1 != 0 && row < len(c.data.Series) {
				col := colors[row%len(colors)]
				col.A = 50
				paint.FillShape(gtx.Ops, col, clip.Rect{Max: gtx.Constraints.Max}.Op())
			}
			return dims
		})
}
