package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ModalMarkdown lays out a modal session and its view as markdown.
// Fields are numbered so a line-based prompt can address them.
func ModalMarkdown(s domain.Session, v domain.View) string {
	var b strings.Builder

	title := s.Title
	if title == "" {
		title = string(s.ActionID)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if v.Body != "" {
		b.WriteString(v.Body)
		b.WriteString("\n\n")
	}

	for i, f := range v.Fields {
		value := "_empty_"
		if f.Value != nil && fmt.Sprint(f.Value) != "" {
			value = fmt.Sprintf("`%v`", f.Value)
		}
		fmt.Fprintf(&b, "%d. **%s** (%s): %s", i+1, f.Label, f.Name, value)
		if len(f.Options) > 0 {
			fmt.Fprintf(&b, " options: %s", strings.Join(f.Options, ", "))
		} else if f.Placeholder != "" {
			fmt.Fprintf(&b, " e.g. %s", f.Placeholder)
		}
		b.WriteString("\n")
	}

	var buttons []string
	if s.Buttons.Primary != nil {
		buttons = append(buttons, fmt.Sprintf("`submit` %s", s.Buttons.Primary.Label))
	}
	if s.Buttons.Secondary != nil {
		buttons = append(buttons, fmt.Sprintf("`close` %s", s.Buttons.Secondary.Label))
	}
	if len(buttons) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(buttons, " · "))
		b.WriteString("\n")
	}
	return b.String()
}
