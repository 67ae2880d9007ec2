package main

import (
	"image"
	"image/color"
	"log"

	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"git.sr.ht/~whereswaldon/vibe-viewer/backend"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

const (
	tabChart   = "chart"
	tabSummary = "summary"
)

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	ws   backend.WindowState
	expl *explorer.Explorer

	chart   *ChartData
	summary *Summary
	tab     widget.Enum

	openBtn  widget.Clickable
	retryBtn widget.Clickable

	th            *material.Theme
	sessionStream *stream.Stream[backend.Session]
	session       backend.Session
}

func NewUI(ws backend.WindowState, expl *explorer.Explorer) *UI {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	ui := &UI{
		ws:            ws,
		th:            th,
		expl:          expl,
		tab:           widget.Enum{Value: tabChart},
		sessionStream: stream.New(ws.Controller, ws.Bundle.Datasource.LatestSessionStream),
	}
	ui.chart = NewChart()
	ui.summary = NewSummary(ui.chart)
	return ui
}

// Update the state of the UI and generate events.
func (ui *UI) Update(gtx C) {
	ui.sessionStream.ReadInto(gtx, &ui.session, backend.Session{})
	if ui.session.Charted() {
		ui.chart.SetData(ui.session.Data)
	}
	ui.tab.Update(gtx)
	if ui.openBtn.Clicked(gtx) || ui.retryBtn.Clicked(gtx) {
		ui.openTrace()
	}
}

func (ui *UI) openTrace() {
	if _, err := ui.ws.Bundle.Datasource.LoadFromFile(ui.expl); err != nil {
		log.Printf("failed loading trace: %v", err)
	}
}

type TabStyle struct {
	state  *widget.Enum
	label  material.LabelStyle
	border widget.Border
	inset  layout.Inset
	value  string
	fill   color.NRGBA
}

func Tab(th *material.Theme, state *widget.Enum, value, display string) TabStyle {
	selected := state.Value == value
	ts := TabStyle{
		state: state,
		label: material.Body1(th, display),
		inset: layout.UniformInset(2),
		border: widget.Border{
			Width: 2,
			Color: th.ContrastBg,
		},
		value: value,
	}
	ts.label.Alignment = text.Middle
	if selected {
		ts.label.Color = th.ContrastFg
		ts.fill = th.ContrastBg
	}
	return ts
}

func (t TabStyle) Layout(gtx C) D {
	return t.inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return t.border.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return t.inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return t.state.Layout(gtx, t.value, func(gtx layout.Context) layout.Dimensions {
					return layout.Background{}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						paint.FillShape(gtx.Ops, t.fill, clip.Rect{Max: gtx.Constraints.Min}.Op())
						return D{Size: gtx.Constraints.Min}
					}, t.label.Layout)
				})
			})
		})
	})
}

func (ui *UI) layoutMainArea(gtx C) D {
	return layout.Flex{
		Axis: layout.Vertical,
	}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{}.Layout(gtx,
				layout.Flexed(1, Tab(ui.th, &ui.tab, tabChart, "Chart").Layout),
				layout.Flexed(1, Tab(ui.th, &ui.tab, tabSummary, "Summary").Layout),
			)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			if ui.tab.Value == tabChart {
				return ui.chart.Layout(gtx, ui.th)
			} else {
				return ui.summary.Layout(gtx, ui.th)
			}
		}),
	)
}

func (ui *UI) layoutStartScreen(gtx C) D {
	l := material.Body1(ui.th, "No data yet.")
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min = image.Point{}
			return l.Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Button(ui.th, &ui.openBtn, "Open Sentiment Trace").Layout(gtx)
		}),
	)
}

func (ui *UI) layoutErrorScreen(gtx C) D {
	l := material.Body1(ui.th, ui.session.Err.Error())
	l.Color = color.NRGBA{R: 150, A: 255}
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return l.Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Button(ui.th, &ui.retryBtn, "Retry").Layout(gtx)
		}),
	)
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	switch {
	case ui.session.Err != nil:
		return ui.layoutErrorScreen(gtx)
	case ui.session.Charted():
		return ui.layoutMainArea(gtx)
	default:
		return ui.layoutStartScreen(gtx)
	}
}
