// Command vibe-viewer renders interactive visualizations of sentiment
// time-series traces. It accepts an optional trace file argument and can
// also load traces interactively.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"git.sr.ht/~whereswaldon/vibe-viewer/backend"
)

func main() {
	flag.Parse()
	go func() {
		w := app.NewWindow(app.Title("Vibe Viewer"))
		if err := loop(w); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func loop(w *app.Window) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mutator := stream.NewMutator(ctx, time.Second)
	bundle, err := backend.NewBundle(ctx, mutator)
	if err != nil {
		return err
	}
	ws := backend.NewWindowState(ctx, bundle, w)
	expl := explorer.NewExplorer(w)
	ui := NewUI(ws, expl)

	if path := flag.Arg(0); path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Printf("failed opening trace %q: %v", path, err)
		} else {
			bundle.Datasource.LoadFromStream(backend.ModeFile, f)
		}
	}

	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
