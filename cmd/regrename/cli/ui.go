package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors, 256-color palette
const (
	colorSuccess = "114"
	colorWarning = "220"
	colorError   = "196"
	colorMuted   = "245"
)

// Styles renders status output for a specific writer. Color is used only
// when the writer is a terminal that supports it.
type Styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles creates styles bound to w
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Success: r.NewStyle().Foreground(lipgloss.Color(colorSuccess)).Bold(true),
		Warning: r.NewStyle().Foreground(lipgloss.Color(colorWarning)),
		Error:   r.NewStyle().Foreground(lipgloss.Color(colorError)).Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color(colorMuted)),
	}
}

// PrintSummary writes a one-line run summary to w
func PrintSummary(w io.Writer, renamed, skipped int, stopErr error) {
	s := NewStyles(w)
	status := s.Success.Render("done")
	if stopErr != nil {
		status = s.Warning.Render("stopped early")
	}
	fmt.Fprintf(w, "%s %s %s\n",
		status,
		fmt.Sprintf("renamed=%d", renamed),
		s.Muted.Render(fmt.Sprintf("skipped=%d", skipped)),
	)
	if stopErr != nil {
		fmt.Fprintf(w, "  %s\n", s.Muted.Render(stopErr.Error()))
	}
}

// PrintFatal writes a startup error to w
func PrintFatal(w io.Writer, err error) {
	s := NewStyles(w)
	fmt.Fprintf(w, "%s %v\n", s.Error.Render("error:"), err)
}
