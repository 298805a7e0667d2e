package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the storefront banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ___ _                 __             _   ", "#34d399"},
		{" / __| |_ ___ _ _ ___  / _|_ _ ___ _ _| |_ ", "#2dd4bf"},
		{" \\__ \\  _/ _ \\ '_/ -_)|  _| '_/ _ \\ ' \\  _|", "#22d3ee"},
		{" |___/\\__\\___/_| \\___||_| |_| \\___/_||_\\__|", "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
