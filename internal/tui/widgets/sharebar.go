// ABOUTME: Compact bar showing what share of a total one part makes up
// ABOUTME: Used by the dashboard to chart bookings per status

package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// emptyColor fills the unused part of a bar
var emptyColor = lipgloss.Color("#374151")

// ShareBar renders part/total as a width-cell bar colored for level.
// A zero total renders an empty bar.
func ShareBar(part, total, width int, level StatusLevel) string {
	if width <= 0 {
		width = 10
	}
	filled := 0
	if total > 0 {
		filled = min(max(part, 0)*width/total, width)
	}
	if part > 0 && filled == 0 {
		// any non-zero share stays visible
		filled = 1
	}

	bg, _ := colors(level)
	return lipgloss.NewStyle().Foreground(bg).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(emptyColor).Render(strings.Repeat("░", width-filled))
}
