// Package render turns classified shell output into terminal text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pinet-os/pinetsh/internal/shell"
)

// Terminal palette, close to the web terminal it replaces
var (
	Emerald = lipgloss.Color("#10B981")
	Sky     = lipgloss.Color("#60A5FA")
	Red     = lipgloss.Color("#F87171")
	Amber   = lipgloss.Color("#FBBF24")
	Slate   = lipgloss.Color("#CBD5E1")
	Violet  = lipgloss.Color("#C4B5FD")
)

// Theme maps every output kind to a style
type Theme struct {
	styles map[shell.OutputKind]lipgloss.Style
	plain  bool
}

// DefaultTheme returns the colored theme
func DefaultTheme() *Theme {
	return &Theme{
		styles: map[shell.OutputKind]lipgloss.Style{
			shell.KindHeader:  lipgloss.NewStyle().Foreground(Sky).Bold(true),
			shell.KindPrompt:  lipgloss.NewStyle().Foreground(Sky),
			shell.KindInfo:    lipgloss.NewStyle().Foreground(Slate),
			shell.KindSuccess: lipgloss.NewStyle().Foreground(Emerald),
			shell.KindError:   lipgloss.NewStyle().Foreground(Red),
			shell.KindWarning: lipgloss.NewStyle().Foreground(Amber),
			shell.KindCode:    lipgloss.NewStyle().Foreground(Violet),
		},
	}
}

// PlainTheme writes text without escape sequences
func PlainTheme() *Theme {
	return &Theme{plain: true}
}

// NewTheme picks DefaultTheme or PlainTheme
func NewTheme(color bool) *Theme {
	if color {
		return DefaultTheme()
	}
	return PlainTheme()
}

// Line renders a single output line
func (t *Theme) Line(l shell.Line) string {
	if t.plain {
		return l.Text
	}
	style, ok := t.styles[l.Kind]
	if !ok {
		return l.Text
	}

	// style each physical line so multi-line blocks keep their color
	parts := strings.Split(l.Text, "\n")
	for i, p := range parts {
		parts[i] = style.Render(p)
	}
	return strings.Join(parts, "\n")
}

// Prompt renders the prompt string
func (t *Theme) Prompt(p string) string {
	return t.Line(shell.Line{Text: p, Kind: shell.KindPrompt})
}

// Write renders every line of res to w
func (t *Theme) Write(w io.Writer, res shell.Result) error {
	for _, l := range res.Lines {
		if _, err := fmt.Fprintln(w, t.Line(l)); err != nil {
			return err
		}
	}
	return nil
}
