// ABOUTME: Icons for routes and booking states, with Nerd Font and Unicode variants
// ABOUTME: BOOKING_NERD_FONTS forces the choice; otherwise the terminal decides

package icons

import (
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// nerdFontTerminals usually ship with a patched font
var nerdFontTerminals = []string{"iterm.app", "alacritty", "wezterm", "kitty", "ghostty"}

// detect decides from the environment whether Nerd Font glyphs render
func detect(getenv func(string) string) bool {
	if v := getenv("BOOKING_NERD_FONTS"); v != "" {
		on, err := strconv.ParseBool(v)
		return err == nil && on
	}
	program := strings.ToLower(getenv("TERM_PROGRAM"))
	term := strings.ToLower(getenv("TERM"))
	return slices.ContainsFunc(nerdFontTerminals, func(name string) bool {
		return strings.Contains(program, name) || strings.Contains(term, name)
	})
}

// HasNerdFonts reports the detected font support, evaluated once
var HasNerdFonts = sync.OnceValue(func() bool { return detect(os.Getenv) })

// Icon is a glyph with a plain Unicode fallback
type Icon struct {
	NerdFont string
	Fallback string
}

func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	// Menu routes
	Home      = Icon{"󰋜", "⌂"}
	Login     = Icon{"󰍂", "→"}
	Register  = Icon{"󰀔", "+"}
	Dashboard = Icon{"󰕮", "▦"}
	Calendar  = Icon{"󰃭", "▤"}
	Card      = Icon{"󰆛", "▭"}
	User      = Icon{"󰀄", "☺"}
	Shield    = Icon{"󰒃", "⛊"}
	Logout    = Icon{"󰍃", "⇥"}
	Quit      = Icon{"󰗼", "×"}

	// Booking and notice levels
	CheckOK  = Icon{"", "✓"}
	Warning  = Icon{"", "⚠"}
	Critical = Icon{"", "✗"}
	Info     = Icon{"", "ℹ"}

	App = Icon{"󰃰", "◈"}
)
