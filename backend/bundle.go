package backend

import (
	"context"

	"gioui.org/app"
	"git.sr.ht/~gioverse/skel/stream"
)

// WindowState carries the application-wide Bundle plus the stream
// Controller tied to one window's invalidation.
type WindowState struct {
	Bundle
	Controller *stream.Controller
}

func NewWindowState(ctx context.Context, bundle Bundle, win *app.Window) WindowState {
	return WindowState{
		Bundle:     bundle,
		Controller: stream.NewController(ctx, win.Invalidate),
	}
}

// Bundle aggregates the non-UI services of the application.
type Bundle struct {
	Datasource *Datasource
}

func NewBundle(appCtx context.Context, mutator *stream.Mutator) (Bundle, error) {
	ds, err := NewDatasource(appCtx, mutator)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Datasource: ds,
	}, nil
}
