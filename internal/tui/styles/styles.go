// ABOUTME: Shared lipgloss styles for consistent TUI appearance
// ABOUTME: Holds dark and light palettes; Use switches every style at once

package styles

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors a theme is built from
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Danger    lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	Accent    lipgloss.Color
	Surface   lipgloss.Color
	Info      lipgloss.Color
}

// DarkPalette is used on dark terminals
var DarkPalette = Palette{
	Primary:   lipgloss.Color("#7C3AED"), // Purple
	Secondary: lipgloss.Color("#10B981"), // Green
	Warning:   lipgloss.Color("#F59E0B"), // Amber
	Danger:    lipgloss.Color("#EF4444"), // Red
	Muted:     lipgloss.Color("#6B7280"), // Gray
	Text:      lipgloss.Color("#F9FAFB"), // Light
	Accent:    lipgloss.Color("#8B5CF6"),
	Surface:   lipgloss.Color("#374151"),
	Info:      lipgloss.Color("#3B82F6"),
}

// LightPalette keeps contrast on light backgrounds
var LightPalette = Palette{
	Primary:   lipgloss.Color("#5B21B6"),
	Secondary: lipgloss.Color("#047857"),
	Warning:   lipgloss.Color("#B45309"),
	Danger:    lipgloss.Color("#B91C1C"),
	Muted:     lipgloss.Color("#4B5563"),
	Text:      lipgloss.Color("#111827"),
	Accent:    lipgloss.Color("#6D28D9"),
	Surface:   lipgloss.Color("#E5E7EB"),
	Info:      lipgloss.Color("#1D4ED8"),
}

var (
	// Colors of the active palette
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Danger    lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	Accent    lipgloss.Color
	Surface   lipgloss.Color
	Info      lipgloss.Color

	Title          lipgloss.Style
	Subtitle       lipgloss.Style
	StatusOK       lipgloss.Style
	StatusWarning  lipgloss.Style
	StatusCritical lipgloss.Style
	Panel          lipgloss.Style
	ActivePanel    lipgloss.Style
	Help           lipgloss.Style
	KeyStyle       lipgloss.Style
	ValueStyle     lipgloss.Style
	Selected       lipgloss.Style
)

var dark = true

func init() {
	Use(true)
}

// Dark reports whether the dark palette is active
func Dark() bool {
	return dark
}

// Use rebuilds every style from the dark or light palette.
// Call it from the UI goroutine only.
func Use(darkMode bool) {
	dark = darkMode
	p := LightPalette
	if darkMode {
		p = DarkPalette
	}

	Primary, Secondary, Warning, Danger = p.Primary, p.Secondary, p.Warning, p.Danger
	Muted, Text, Accent, Surface, Info = p.Muted, p.Text, p.Accent, p.Surface, p.Info

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
		Foreground(Muted).
		MarginBottom(1)

	StatusOK = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	StatusWarning = lipgloss.NewStyle().
		Foreground(Warning).
		Bold(true)

	StatusCritical = lipgloss.NewStyle().
		Foreground(Danger).
		Bold(true)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ActivePanel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Padding(1, 2)

	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	KeyStyle = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	ValueStyle = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)

	Selected = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
}
