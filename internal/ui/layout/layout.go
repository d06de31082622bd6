// Package layout composes the framed header and footer printed around CLI
// output.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/pastrypath/pastrypath/internal/ui/theme"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// Hint suggests a follow-up command in the footer.
type Hint struct {
	Command     string
	Description string
}

// RenderHeader renders the application header bar.
func RenderHeader(title string, points, streak int, width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render("🥐 PastryPath")

	center := lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(title)

	right := lipgloss.NewStyle().
		Foreground(theme.Accent).
		Render(fmt.Sprintf("✦ %d pts", points)) +
		"   " +
		lipgloss.NewStyle().
			Foreground(theme.Accent).
			Render(fmt.Sprintf("🔥 %d day", streak))

	leftLen := lipgloss.Width(left)
	centerLen := lipgloss.Width(center)
	rightLen := lipgloss.Width(right)

	innerWidth := max(0, width-4) // border and padding

	leftGap := max(1, (innerWidth-centerLen)/2-leftLen)
	rightGap := max(1, innerWidth-leftLen-leftGap-centerLen-rightLen)

	content := left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right

	return theme.Card.Width(width).Render(content)
}

// RenderFooter renders follow-up command hints.
func RenderFooter(hints []Hint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		part := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Command) +
			"  " +
			theme.Hint.Render(h.Description)
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n")
}
