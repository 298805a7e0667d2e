package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/presentation/tui"
	"github.com/aretw0/storefront/pkg/domain"
)

// OpenOptions are the opener inputs accepted on the command line.
type OpenOptions struct {
	Action    string
	Title     string
	ProductID string
	StreamID  string
	RemoteID  string
}

// defaultButtons holds the primary and secondary labels per action.
var defaultButtons = map[domain.ActionID][2]string{
	domain.ActionCreateStream:  {"Create", "Cancel"},
	domain.ActionDeleteStream:  {"Delete", "Cancel"},
	domain.ActionCreateComment: {"Send", "Cancel"},
	domain.ActionDonate:        {"Donate", "Cancel"},
	domain.ActionCallOrder:     {"Order", "Cancel"},
	domain.ActionPayment:       {"Send", "Cancel"},
	domain.ActionContact:       {"", "Close"},
}

// OpenRequest turns command-line inputs into an opener request.
func OpenRequest(opts OpenOptions) (domain.OpenRequest, error) {
	if opts.Action == "" {
		return domain.OpenRequest{}, fmt.Errorf("an action is required")
	}
	id := domain.ActionID(opts.Action)
	req := domain.OpenRequest{
		ActionID: id,
		Title:    opts.Title,
		Context:  map[string]any{},
	}

	labels, ok := defaultButtons[id]
	if !ok {
		labels = [2]string{"OK", "Cancel"}
	}
	if labels[0] != "" {
		req.Buttons.Primary = &domain.Button{Label: labels[0]}
	}
	req.Buttons.Secondary = &domain.Button{Label: labels[1]}

	if opts.ProductID != "" {
		req.Context["product"] = map[string]any{"id": opts.ProductID}
	}
	if opts.StreamID != "" || opts.RemoteID != "" {
		req.Context["stream"] = map[string]any{"id": opts.StreamID, "remote_id": opts.RemoteID}
	}
	return req, nil
}

// SessionOptions controls the interactive modal.
type SessionOptions struct {
	In       io.Reader
	Out      io.Writer
	Headless bool
	// Terminal enables glamour rendering and colored notices.
	Terminal bool
}

// RunSession serves one modal session on the given IO.
func RunSession(ctx context.Context, app *App, req domain.OpenRequest, opts SessionOptions) error {
	if !opts.Headless && opts.Terminal {
		tui.PrintBanner(opts.Out)
	}

	if err := app.Client.Bootstrap(ctx); err != nil {
		app.Logger.Warn("Entity cache bootstrap incomplete", "err", err)
	}

	r := storefront.NewRunner()
	r.Input = opts.In
	r.Output = opts.Out
	r.Headless = opts.Headless

	printer := tui.NewPlainNoticePrinter(opts.Out)
	if opts.Terminal {
		r.Renderer = tui.NewRenderer()
		printer = tui.NewNoticePrinter(opts.Out)
	}
	r.FormatNotice = printer.Format

	return r.Run(ctx, app.Client, req)
}
