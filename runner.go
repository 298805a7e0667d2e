package storefront

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/storefront/internal/presentation/tui"
	"github.com/aretw0/storefront/pkg/domain"
)

// Runner drives one modal session over line-based IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
//
// Commands read from Input:
//
//	<field>=<value>   set a field by name or by its 1-based number
//	submit            press the primary button
//	close             dismiss the modal (also: exit, quit, EOF)
//	show              render the modal again
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// FormatNotice renders a settled notice. Defaults to "[kind] message".
	FormatNotice func(domain.Notice) string
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run opens the modal described by req and serves it until it is submitted or closed.
func (r *Runner) Run(ctx context.Context, client *Client, req domain.OpenRequest) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)

	if _, err := client.Open(ctx, req); err != nil {
		return fmt.Errorf("open %s: %w", req.ActionID, err)
	}
	defer client.Close()

	dirty := true
	for {
		if dirty {
			if err := r.show(client); err != nil {
				return err
			}
			dirty = false
		}

		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		text, err := lines.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && text != "") {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		input := strings.TrimSpace(text)

		switch input {
		case "":
			continue
		case "exit", "quit", "close", "cancel":
			client.Close()
			if !r.Headless {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil
		case "show":
			dirty = true
			continue
		case "submit":
			done, err := r.submit(ctx, client)
			if err != nil || done {
				return err
			}
			dirty = true
			continue
		}

		field, value, ok := strings.Cut(input, "=")
		if !ok {
			fmt.Fprintf(r.Output, "unknown command %q\n", input)
			continue
		}
		if err := r.edit(client, strings.TrimSpace(field), strings.TrimSpace(value)); err != nil {
			fmt.Fprintln(r.Output, err)
			continue
		}
		dirty = true
	}
}

func (r *Runner) show(client *Client) error {
	view, err := client.Render()
	if err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	output := tui.ModalMarkdown(client.State(), view)
	if r.Renderer != nil {
		if rendered, err := r.Renderer(output); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
	return nil
}

// edit resolves numbered fields against the current view.
func (r *Runner) edit(client *Client, field, value string) error {
	if n, err := strconv.Atoi(field); err == nil {
		view, err := client.Render()
		if err != nil {
			return err
		}
		if n < 1 || n > len(view.Fields) {
			return fmt.Errorf("no field number %d", n)
		}
		field = view.Fields[n-1].Name
	}
	return client.Edit(field, value)
}

// submit reports whether the session is over.
func (r *Runner) submit(ctx context.Context, client *Client) (bool, error) {
	ticket, err := client.Submit(ctx)
	switch {
	case errors.Is(err, domain.ErrValidation):
		fmt.Fprintln(r.Output, r.format(domain.Notice{Kind: domain.NoticeError, Message: domain.NoticeOf(err, err.Error())}))
		return !client.State().Open(), nil
	case err != nil:
		return true, err
	case ticket == nil:
		fmt.Fprintln(r.Output, "nothing to submit")
		return false, nil
	}

	if err := ticket.Wait(ctx); err != nil && ctx.Err() != nil {
		return true, err
	}
	if n, ok := client.Notices().Get(ticket.ID()); ok {
		fmt.Fprintln(r.Output, r.format(n))
	}
	return true, nil
}

func (r *Runner) format(n domain.Notice) string {
	if r.FormatNotice != nil {
		return r.FormatNotice(n)
	}
	return fmt.Sprintf("[%s] %s", n.Kind, n.Message)
}
