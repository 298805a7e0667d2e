package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/muesli/termenv"
)

// NoticePrinter writes notices as colored one-liners.
type NoticePrinter struct {
	w       io.Writer
	profile termenv.Profile
}

// NewNoticePrinter creates a printer using the terminal's color profile.
func NewNoticePrinter(w io.Writer) *NoticePrinter {
	return &NoticePrinter{w: w, profile: termenv.ColorProfile()}
}

// NewPlainNoticePrinter creates a printer that never emits escape codes.
func NewPlainNoticePrinter(w io.Writer) *NoticePrinter {
	return &NoticePrinter{w: w, profile: termenv.Ascii}
}

// Format renders one notice.
func (p *NoticePrinter) Format(n domain.Notice) string {
	symbol, color := "•", "#a1a1aa"
	switch n.Kind {
	case domain.NoticePending:
		symbol, color = "…", "#fbbf24"
	case domain.NoticeSuccess:
		symbol, color = "✓", "#34d399"
	case domain.NoticeError:
		symbol, color = "✗", "#f87171"
	}
	return termenv.String(symbol + " " + n.Message).Foreground(p.profile.Color(color)).String()
}

// Print writes one notice followed by a newline.
func (p *NoticePrinter) Print(n domain.Notice) {
	fmt.Fprintln(p.w, p.Format(n))
}

// Follow prints notices from ch until it is closed or ctx is done.
func (p *NoticePrinter) Follow(ctx context.Context, ch <-chan domain.Notice) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			p.Print(n)
		}
	}
}
