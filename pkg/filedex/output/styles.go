package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color constants from the ANSI 256-color palette.
const (
	ColorPrimary = lipgloss.Color("39")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorDanger  = lipgloss.Color("196")
	ColorMuted   = lipgloss.Color("245")
)

// Styles groups the lipgloss styles used by the pretty formatter. They are
// bound to one renderer so colour can be switched off per result.
type Styles struct {
	HeaderBox lipgloss.Style
	FooterBox lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	Warning   lipgloss.Style
	Count     lipgloss.Style
	Match     lipgloss.Style
}

// NewStyles builds styles for w. Without colour the renderer uses the
// ASCII profile, which keeps borders and drops all escape sequences.
func NewStyles(w io.Writer, color bool) *Styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		HeaderBox: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1),
		FooterBox: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1),
		Label:   r.NewStyle().Foreground(ColorMuted),
		Value:   r.NewStyle().Foreground(lipgloss.Color("255")),
		Muted:   r.NewStyle().Foreground(ColorMuted),
		Warning: r.NewStyle().Foreground(ColorWarning).Bold(true),
		Count:   r.NewStyle().Foreground(ColorPrimary).Bold(true),
		Match: r.NewStyle().
			Foreground(ColorDanger).
			Bold(true).
			TabWidth(lipgloss.NoTabConversion),
	}
}
