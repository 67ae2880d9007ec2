package main

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"git.sr.ht/~whereswaldon/vibe-viewer/plot"
)

// Brush is the drag state machine over the overview chart. While a drag
// is in progress only the visual selection rectangle moves; nothing is
// published until the pointer is released, at which point the pixel
// selection is inverted through the overview's own time scale into a
// span. Re-rendering the overview never publishes anything, so a span
// change cannot feed back into itself.
type Brush struct {
	dragging bool
	startX   float32
	currentX float32
}

// Update processes pointer events against the given overview time scale
// and reports a committed span, if this frame completed a gesture.
func (b *Brush) Update(gtx C, scale plot.LinearScale) (plot.Span, bool) {
	var (
		committed plot.Span
		ok        bool
	)
	for {
		ev, evOk := gtx.Event(pointer.Filter{
			Target: b,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
		})
		if !evOk {
			break
		}
		pe, isPointer := ev.(pointer.Event)
		if !isPointer {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			b.dragging = true
			b.startX = pe.Position.X
			b.currentX = pe.Position.X
		case pointer.Drag:
			if b.dragging {
				b.currentX = pe.Position.X
			}
		case pointer.Release:
			if b.dragging {
				b.dragging = false
				committed, ok = commitSelection(b.startX, pe.Position.X, scale)
			}
		case pointer.Cancel:
			b.dragging = false
		}
	}
	return committed, ok
}

// commitSelection inverts a pixel selection through the overview scale.
// Selections that collapse to zero width, or that invert to an empty
// span, are rejected and the active span is left alone.
func commitSelection(x0, x1 float32, scale plot.LinearScale) (plot.Span, bool) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x0 == x1 {
		return plot.Span{}, false
	}
	bounds := plot.Span{Start: int64(scale.DomainMin), End: int64(scale.DomainMax)}
	span := plot.Span{
		Start: int64(scale.Invert(float64(x0))),
		End:   int64(scale.Invert(float64(x1))),
	}.Clip(bounds)
	if !span.Valid() {
		return plot.Span{}, false
	}
	return span, true
}

// Add registers the brush as a pointer target over the current clip.
func (b *Brush) Add(gtx C) {
	event.Op(gtx.Ops, b)
}

// layoutSelection draws the selection overlay: the in-progress drag
// rectangle, or the committed span when one is active.
func (b *Brush) layoutSelection(gtx C, scale plot.LinearScale, active plot.Span, zoomed bool) {
	height := gtx.Constraints.Max.Y
	shade := color.NRGBA{A: 60}
	outline := color.NRGBA{A: 150}
	var xL, xR int
	switch {
	case b.dragging:
		xL = int(min(b.startX, b.currentX))
		xR = int(max(b.startX, b.currentX))
	case zoomed:
		xL = int(scale.Apply(float64(active.Start)))
		xR = int(scale.Apply(float64(active.End)))
	default:
		return
	}
	paint.FillShape(gtx.Ops, shade, clip.Rect{
		Min: image.Point{X: xL},
		Max: image.Point{X: xR, Y: height},
	}.Op())
	oneDp := gtx.Dp(1)
	for _, x := range []int{xL, xR} {
		paint.FillShape(gtx.Ops, outline, clip.Rect{
			Min: image.Point{X: x - oneDp/2},
			Max: image.Point{X: x + oneDp, Y: height},
		}.Op())
	}
}
