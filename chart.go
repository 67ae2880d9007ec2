package main

import (
	"cmp"
	"image"
	"image/color"
	"math"
	"slices"
	"strconv"
	"time"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"git.sr.ht/~whereswaldon/vibe-viewer/backend"
	"git.sr.ht/~whereswaldon/vibe-viewer/plot"
)

var resetIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.ActionZoomOut)
	return icon
}()

const (
	// hoverInterval gates how often pointer movement reprocesses the
	// hover lookup.
	hoverInterval = 30 * time.Millisecond
	// overviewBudget is the per-series point budget of the always-small
	// overview rendering.
	overviewBudget = 50
	// timestampDisplayLayout formats axis and tooltip timestamps.
	timestampDisplayLayout = "2006-01-02 15:04:05"
)

// pointBudget derives the decimation budget for a detail rendering from
// the available pixel width.
func pointBudget(widthPx int) int {
	return max(100, widthPx/3)
}

// frameKey captures every input of a render pass. Two passes with equal
// keys produce identical frames, so the previous frame can be reused.
type frameKey struct {
	generation uint64
	span       plot.Span
	width      int
	vis        string
	budget     int
	stacked    bool
}

// frame is the output of one pipeline pass: the decimated drawable
// series, their shared hover index, and the value-domain maximum across
// every retained point. Frames are discarded whenever their key stops
// matching; they never carry state between passes.
type frame struct {
	series   []plot.DecimatedSeries
	index    *plot.Index
	valueMax float64
}

// empty reports whether the pass retained no points at all, which is the
// "no data in range" placeholder condition.
func (f frame) empty() bool {
	for _, s := range f.series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

func comparePoints(a, b plot.Point) int {
	return cmp.Compare(a.TimestampNS, b.TimestampNS)
}

// buildFrame runs the rendering pipeline over the dataset: filter by
// visibility, filter to the span, re-sort defensively, decimate to the
// budget, and track the value maximum. Series whose span filter retains
// nothing still participate with zero points.
func buildFrame(data *backend.Dataset, enabled []bool, span plot.Span, budget int, stacked bool) frame {
	var f frame
	for i, s := range data.Series {
		if i >= len(enabled) || !enabled[i] {
			continue
		}
		pts := s.Points(span)
		if !slices.IsSortedFunc(pts, comparePoints) {
			slices.SortFunc(pts, comparePoints)
		}
		pts = plot.Decimate(pts, budget)
		for _, p := range pts {
			f.valueMax = max(f.valueMax, p.Value)
		}
		f.series = append(f.series, plot.DecimatedSeries{Name: s.Name(), Points: pts})
	}
	if stacked {
		slices.SortStableFunc(f.series, func(a, b plot.DecimatedSeries) int {
			return compareSeriesNames(a.Name, b.Name)
		})
	}
	f.index = plot.BuildIndex(f.series)
	return f
}

// seriesKey extracts the numeric prefix of a series name, e.g. 2 from
// "2 (negative)". Sentiment categories are named by their score, and the
// stacked layout orders sub-frames by it.
func seriesKey(name string) (int, bool) {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(name[:i])
	if err != nil {
		return 0, false
	}
	return v, true
}

// compareSeriesNames orders series by ascending numeric key, keyed
// series before unkeyed ones, falling back to the names themselves.
func compareSeriesNames(a, b string) int {
	ka, aok := seriesKey(a)
	kb, bok := seriesKey(b)
	switch {
	case aok && bok:
		if c := cmp.Compare(ka, kb); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

// ChartData holds the interactive state of one chart instance: series
// visibility, the committed span, hover state, and the cached frames of
// the detail and overview renderings.
type ChartData struct {
	data    *backend.Dataset
	Enabled []*widget.Bool
	Stacked widget.Bool

	brush    Brush
	span     plot.Span
	zoomed   bool
	resetBtn widget.Clickable

	keyTable    component.GridState
	colorByName map[string]int

	// hover gesture state
	pos       f32.Point
	isHovered bool
	lastHover time.Time

	detailKey   frameKey
	detail      frame
	overviewKey frameKey
	overview    frame
}

func NewChart() *ChartData {
	return &ChartData{
		colorByName: make(map[string]int),
	}
}

// SetData replaces the dataset being charted. All view state derived
// from the previous dataset is discarded.
func (c *ChartData) SetData(data *backend.Dataset) {
	if c.data == data {
		return
	}
	c.data = data
	c.Enabled = nil
	c.zoomed = false
	c.span = plot.Span{}
	c.colorByName = make(map[string]int)
	c.detailKey = frameKey{}
	c.overviewKey = frameKey{}
	c.detail = frame{}
	c.overview = frame{}
}

// ActiveSpan returns the currently committed span, defaulting to the
// full extent of the dataset.
func (c *ChartData) ActiveSpan() (plot.Span, bool) {
	if c.data == nil {
		return plot.Span{}, false
	}
	full, ok := c.data.Domain()
	if !ok {
		return plot.Span{}, false
	}
	if c.zoomed {
		return c.span.Clip(full), true
	}
	return full, true
}

func (c *ChartData) visKey() string {
	key := make([]byte, len(c.Enabled))
	for i, e := range c.Enabled {
		if e.Value {
			key[i] = '1'
		} else {
			key[i] = '0'
		}
	}
	return string(key)
}

func (c *ChartData) enabledFlags() []bool {
	flags := make([]bool, len(c.Enabled))
	for i, e := range c.Enabled {
		flags[i] = e.Value
	}
	return flags
}

// detailFrame returns the pipeline output for the detail rendering,
// recomputing only when one of the pass inputs changed since the cached
// pass.
func (c *ChartData) detailFrame(span plot.Span, width int) frame {
	key := frameKey{
		generation: c.data.Generation(),
		span:       span,
		width:      width,
		vis:        c.visKey(),
		budget:     pointBudget(width),
		stacked:    c.Stacked.Value,
	}
	if key != c.detailKey {
		c.detail = buildFrame(c.data, c.enabledFlags(), span, key.budget, key.stacked)
		c.detailKey = key
	}
	return c.detail
}

// overviewFrame is the detail pipeline at the full extent with a small
// fixed budget.
func (c *ChartData) overviewFrame(full plot.Span, width int) frame {
	key := frameKey{
		generation: c.data.Generation(),
		span:       full,
		width:      width,
		vis:        c.visKey(),
		budget:     overviewBudget,
	}
	if key != c.overviewKey {
		c.overview = buildFrame(c.data, c.enabledFlags(), full, overviewBudget, false)
		c.overviewKey = key
	}
	return c.overview
}

func (c *ChartData) seriesColor(name string) color.NRGBA {
	return colors[c.colorByName[name]%len(colors)]
}

func (c *ChartData) Update(gtx C) {
	if c.data == nil {
		return
	}
	for len(c.Enabled) < len(c.data.Series) {
		c.colorByName[c.data.Series[len(c.Enabled)].Name()] = len(c.Enabled)
		c.Enabled = append(c.Enabled, &widget.Bool{Value: true})
	}
	c.Stacked.Update(gtx)
	if c.resetBtn.Clicked(gtx) {
		c.zoomed = false
	}
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: c,
			Kinds:  pointer.Enter | pointer.Leave | pointer.Move,
		})
		if !ok {
			break
		}
		switch ev := ev.(type) {
		case pointer.Event:
			switch ev.Kind {
			case pointer.Enter:
				c.isHovered = true
				c.pos = ev.Position
				c.lastHover = gtx.Now
			case pointer.Leave, pointer.Cancel:
				c.isHovered = false
			case pointer.Move:
				if gtx.Now.Sub(c.lastHover) >= hoverInterval {
					c.pos = ev.Position
					c.lastHover = gtx.Now
				}
			}
		}
	}
}

func rec(gtx C, w layout.Widget) (D, op.CallOp) {
	macro := op.Record(gtx.Ops)
	dims := w(gtx)
	call := macro.Stop()
	return dims, call
}

func ceil[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Ceil(float64(a)))
}

func (c *ChartData) Layout(gtx C, th *material.Theme) D {
	c.Update(gtx)
	if c.data == nil || len(c.data.Series) < 1 {
		return D{Size: gtx.Constraints.Max}
	}
	span, ok := c.ActiveSpan()
	if !ok {
		return D{Size: gtx.Constraints.Max}
	}
	minDomainLabel := material.Body1(th, time.Unix(0, span.Start).UTC().Format(timestampDisplayLayout))
	maxDomainLabel := material.Body1(th, time.Unix(0, span.End).UTC().Format(timestampDisplayLayout))
	xAxisLabel := material.Body2(th, "Time (UTC)")
	xAxisLabel.MaxLines = 1
	xAxisLabel.Alignment = text.Middle
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return c.layoutChartControls(gtx, th, span)
		}),
		layout.Flexed(1, func(gtx C) D {
			return c.layoutPlot(gtx, th, span)
		}),
		layout.Rigid(func(gtx C) D {
			return layout.Flex{
				Axis:      layout.Horizontal,
				Alignment: layout.Baseline,
			}.Layout(gtx,
				layout.Rigid(minDomainLabel.Layout),
				layout.Flexed(1, xAxisLabel.Layout),
				layout.Rigid(maxDomainLabel.Layout),
			)
		}),
		layout.Rigid(func(gtx C) D {
			return c.layoutOverview(gtx, th)
		}),
		layout.Rigid(func(gtx C) D {
			return c.layoutLegend(gtx, th, span)
		}),
	)
}

func (c *ChartData) layoutChartControls(gtx C, th *material.Theme, span plot.Span) D {
	spanSecs := float64(span.Duration()) / 1_000_000_000
	spanLabel := material.Body2(th, "showing "+strconv.FormatFloat(spanSecs, 'f', 1, 64)+"s")
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(material.CheckBox(th, &c.Stacked, "Stacked").Layout),
		layout.Rigid(layout.Spacer{Width: 8}.Layout),
		layout.Rigid(spanLabel.Layout),
		layout.Flexed(1, func(gtx C) D {
			return D{Size: gtx.Constraints.Min}
		}),
		layout.Rigid(func(gtx C) D {
			if !c.zoomed {
				gtx = gtx.Disabled()
			}
			return material.Clickable(gtx, &c.resetBtn, func(gtx C) D {
				size := gtx.Sp(20)
				gtx.Constraints = layout.Exact(image.Pt(size, size))
				return resetIcon.Layout(gtx, th.Fg)
			})
		}),
	)
}

func (c *ChartData) layoutPlot(gtx C, th *material.Theme, span plot.Span) D {
	f := c.detailFrame(span, gtx.Constraints.Max.X)
	defer clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, c)
	if f.empty() {
		return c.layoutPlaceholder(gtx, th)
	}
	xScale := plot.TimeScale(span, float64(gtx.Constraints.Max.X))
	if c.Stacked.Value {
		c.layoutStackedPlot(gtx, th, f, xScale)
	} else {
		c.layoutValueGrid(gtx)
		yScale := plot.ValueScale(f.valueMax, float64(gtx.Constraints.Max.Y))
		c.drawSeries(gtx, f.series, xScale, yScale)
	}
	if c.isHovered && !f.index.Empty() {
		c.layoutHover(gtx, th, f, xScale)
	}
	return D{Size: gtx.Constraints.Max}
}

func (c *ChartData) layoutPlaceholder(gtx C, th *material.Theme) D {
	l := material.Body1(th, "no data in range")
	l.Color.A = 150
	layout.Center.Layout(gtx, l.Layout)
	return D{Size: gtx.Constraints.Max}
}

// layoutValueGrid draws faint horizontal reference lines under the
// overlay plot.
func (c *ChartData) layoutValueGrid(gtx C) {
	maxY := gtx.Constraints.Max.Y
	oneDp := gtx.Dp(1)
	const divisions = 4
	for gridNum := 0; gridNum <= divisions; gridNum++ {
		yT := maxY - gridNum*maxY/divisions
		a := uint8(50)
		if gridNum == 0 {
			a = 100
		}
		paint.FillShape(gtx.Ops, color.NRGBA{A: a}, clip.Rect{
			Min: image.Point{Y: yT - oneDp},
			Max: image.Point{Y: yT, X: gtx.Constraints.Max.X},
		}.Op())
	}
}

// drawSeries strokes one path per series through the scaled points. A
// series with a single in-range point gets a dot instead, since a
// one-point path has no extent to stroke.
func (c *ChartData) drawSeries(gtx C, series []plot.DecimatedSeries, xScale, yScale plot.LinearScale) {
	lineWidth := float32(gtx.Dp(2))
	dot := gtx.Dp(2)
	for _, s := range series {
		col := c.seriesColor(s.Name)
		switch len(s.Points) {
		case 0:
			continue
		case 1:
			pt := s.Points[0]
			center := image.Pt(
				int(xScale.Apply(float64(pt.TimestampNS))),
				int(yScale.Apply(pt.Value)),
			)
			bounds := image.Rectangle{
				Min: center.Sub(image.Pt(dot, dot)),
				Max: center.Add(image.Pt(dot, dot)),
			}
			paint.FillShape(gtx.Ops, col, clip.Ellipse(bounds).Op(gtx.Ops))
			continue
		}
		var p clip.Path
		p.Begin(gtx.Ops)
		for j, pt := range s.Points {
			pos := f32.Pt(
				float32(xScale.Apply(float64(pt.TimestampNS))),
				float32(yScale.Apply(pt.Value)),
			)
			if j == 0 {
				p.MoveTo(pos)
			} else {
				p.LineTo(pos)
			}
		}
		paint.FillShape(gtx.Ops, col, clip.Stroke{
			Path:  p.End(),
			Width: lineWidth,
		}.Op())
	}
}

// layoutStackedPlot lays the series out as small multiples: one
// sub-frame per series, shared time axis, independent value axis. The
// frame's series arrive pre-sorted by their numeric name key.
func (c *ChartData) layoutStackedPlot(gtx C, th *material.Theme, f frame, xScale plot.LinearScale) {
	drawn := 0
	for _, s := range f.series {
		if len(s.Points) > 0 {
			drawn++
		}
	}
	if drawn == 0 {
		return
	}
	subHeight := gtx.Constraints.Max.Y / drawn
	oneDp := gtx.Dp(1)
	offset := 0
	for _, s := range f.series {
		if len(s.Points) == 0 {
			continue
		}
		subMax := 0.0
		for _, p := range s.Points {
			subMax = max(subMax, p.Value)
		}
		yScale := plot.ValueScale(subMax, float64(subHeight))
		stack := op.Offset(image.Point{Y: offset}).Push(gtx.Ops)
		subGtx := gtx
		subGtx.Constraints = layout.Exact(image.Pt(gtx.Constraints.Max.X, subHeight))
		c.drawSeries(subGtx, []plot.DecimatedSeries{s}, xScale, yScale)
		label := material.Body2(th, s.Name)
		label.Color = c.seriesColor(s.Name)
		layout.NW.Layout(subGtx, label.Layout)
		paint.FillShape(gtx.Ops, color.NRGBA{A: 50}, clip.Rect{
			Min: image.Point{Y: subHeight - oneDp},
			Max: image.Point{X: gtx.Constraints.Max.X, Y: subHeight},
		}.Op())
		stack.Pop()
		offset += subHeight
	}
}

// tooltipX flips the tooltip to whichever side of the crosshair has more
// room, clamped to the container.
func tooltipX(xL, xR float32, tipWidth, maxWidth int) int {
	if int(xL) > maxWidth-int(xR) {
		return max(int(xL)-tipWidth, 0)
	}
	return min(int(xR), maxWidth-tipWidth)
}

func (c *ChartData) layoutHover(gtx C, th *material.Theme, f frame, xScale plot.LinearScale) {
	nearest, ok := f.index.Nearest(int64(xScale.Invert(float64(c.pos.X))))
	if !ok {
		return
	}
	xR := ceil(float32(xScale.Apply(float64(nearest))))
	xL := xR - float32(gtx.Dp(1))
	atTimestamp := f.index.ValuesAt(nearest)

	children := []layout.FlexChild{
		layout.Rigid(material.Body2(th, time.Unix(0, nearest).UTC().Format(timestampDisplayLayout)).Layout),
	}
	values := []float64{}
	var missing []layout.FlexChild
	for i := range f.series {
		s := f.series[i]
		row := func(text string) layout.FlexChild {
			return layout.Rigid(func(gtx C) D {
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(material.Body2(th, text).Layout),
					layout.Rigid(layout.Spacer{Width: 8}.Layout),
					layout.Rigid(func(gtx C) D {
						size := image.Pt(gtx.Dp(8), gtx.Dp(8))
						paint.FillShape(gtx.Ops, c.seriesColor(s.Name), clip.Ellipse{Max: size}.Op(gtx.Ops))
						return D{Size: size}
					}),
				)
			})
		}
		value, present := atTimestamp[s.Name]
		if !present {
			missing = append(missing, row("n/a"))
			continue
		}
		insertIdx, _ := slices.BinarySearch(values, value)
		values = slices.Insert(values, insertIdx, value)
		children = slices.Insert(children, len(children)-insertIdx, row(strconv.FormatFloat(value, 'f', 3, 64)))
	}
	children = append(children, missing...)

	origConstraints := gtx.Constraints
	gtx.Constraints.Min = image.Point{}
	hoverInfoMacro := op.Record(gtx.Ops)
	hoverInfoDims := layout.Background{}.Layout(gtx,
		func(gtx C) D {
			paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 150}, clip.Rect{Max: gtx.Constraints.Min}.Op())
			return D{Size: gtx.Constraints.Min}
		},
		func(gtx C) D {
			return layout.UniformInset(10).Layout(gtx, func(gtx C) D {
				return layout.Flex{
					Axis:      layout.Vertical,
					Alignment: layout.End,
				}.Layout(gtx, children...)
			})
		},
	)
	hoverInfoCall := hoverInfoMacro.Stop()
	gtx.Constraints = origConstraints

	paint.FillShape(gtx.Ops, color.NRGBA{A: 255}, clip.Rect{
		Min: image.Point{X: int(xL)},
		Max: image.Point{X: int(xR), Y: gtx.Constraints.Max.Y},
	}.Op())
	pos := image.Point{
		X: tooltipX(xL, xR, hoverInfoDims.Size.X, gtx.Constraints.Max.X),
	}
	if offscreenY := gtx.Constraints.Max.Y - (int(c.pos.Y) + hoverInfoDims.Size.Y); offscreenY < 0 {
		pos.Y = int(c.pos.Y) + offscreenY
	} else {
		pos.Y = int(c.pos.Y)
	}
	transform := op.Offset(pos).Push(gtx.Ops)
	hoverInfoCall.Add(gtx.Ops)
	transform.Pop()
}

// layoutOverview draws the always-full-extent miniature chart and the
// brush over it, committing any completed brush gesture to the active
// span.
func (c *ChartData) layoutOverview(gtx C, th *material.Theme) D {
	full, ok := c.data.Domain()
	if !ok {
		return D{}
	}
	size := image.Pt(gtx.Constraints.Max.X, gtx.Dp(60))
	gtx.Constraints = layout.Exact(size)
	scale := plot.TimeScale(full, float64(size.X))
	if span, committed := c.brush.Update(gtx, scale); committed {
		c.span = span
		c.zoomed = true
	}
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	c.brush.Add(gtx)
	paint.FillShape(gtx.Ops, color.NRGBA{A: 15}, clip.Rect{Max: size}.Op())
	f := c.overviewFrame(full, size.X)
	if !f.empty() {
		yScale := plot.ValueScale(f.valueMax, float64(size.Y))
		c.drawMini(gtx, f.series, scale, yScale)
	}
	active, _ := c.ActiveSpan()
	c.brush.layoutSelection(gtx, scale, active, c.zoomed)
	return D{Size: size}
}

// drawMini is drawSeries at hairline width for the overview.
func (c *ChartData) drawMini(gtx C, series []plot.DecimatedSeries, xScale, yScale plot.LinearScale) {
	hairline := float32(gtx.Dp(1))
	for _, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		var p clip.Path
		p.Begin(gtx.Ops)
		for j, pt := range s.Points {
			pos := f32.Pt(
				float32(xScale.Apply(float64(pt.TimestampNS))),
				float32(yScale.Apply(pt.Value)),
			)
			if j == 0 {
				p.MoveTo(pos)
			} else {
				p.LineTo(pos)
			}
		}
		paint.FillShape(gtx.Ops, c.seriesColor(s.Name), clip.Stroke{
			Path:  p.End(),
			Width: hairline,
		}.Op())
	}
}
