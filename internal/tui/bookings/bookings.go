// ABOUTME: Bookings table screen shared by the member and admin views
// ABOUTME: Wraps a bubbles table with row selection over client bookings

package bookings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/tui/styles"
)

// Table lists bookings with a movable cursor
type Table struct {
	title    string
	bookings []client.Booking
	model    table.Model
	loaded   bool
	width    int
}

var columns = []table.Column{
	{Title: "ID", Width: 5},
	{Title: "Service", Width: 22},
	{Title: "When", Width: 17},
	{Title: "Min", Width: 5},
	{Title: "Price", Width: 10},
	{Title: "Status", Width: 12},
}

// New creates an empty table; call SetBookings once data arrives
func New(title string, width, height int) *Table {
	t := &Table{
		title: title,
		width: width,
		model: table.New(
			table.WithColumns(columns),
			table.WithFocused(true),
			table.WithHeight(rowsFor(height)),
		),
	}
	t.model.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)
	return s
}

// rowsFor leaves room for the title and help lines
func rowsFor(height int) int {
	return max(height-6, 3)
}

// SetBookings replaces the rows, keeping the cursor in range
func (t *Table) SetBookings(bookings []client.Booking) {
	t.bookings = bookings
	t.loaded = true
	rows := make([]table.Row, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, Row(b))
	}
	t.model.SetRows(rows)
	// an empty table parks the cursor at -1
	if c := t.model.Cursor(); c < 0 || c >= len(rows) {
		t.model.SetCursor(max(len(rows)-1, 0))
	}
}

// Row formats one booking as table cells
func Row(b client.Booking) table.Row {
	when := "-"
	if !b.BookingDateTime.IsZero() {
		when = b.BookingDateTime.Format("2006-01-02 15:04")
	}
	return table.Row{
		strconv.FormatInt(b.ID, 10),
		b.ServiceName,
		when,
		strconv.Itoa(b.DurationMinutes),
		b.Price.StringFixed(2),
		string(b.Status),
	}
}

// Bookings returns the displayed bookings
func (t *Table) Bookings() []client.Booking {
	return t.bookings
}

// Selected returns the booking under the cursor
func (t *Table) Selected() (client.Booking, bool) {
	c := t.model.Cursor()
	if c < 0 || c >= len(t.bookings) {
		return client.Booking{}, false
	}
	return t.bookings[c], true
}

// SetSize resizes the table
func (t *Table) SetSize(width, height int) {
	t.width = width
	t.model.SetHeight(rowsFor(height))
}

// Update moves the cursor
func (t *Table) Update(msg tea.Msg) (*Table, tea.Cmd) {
	var cmd tea.Cmd
	t.model, cmd = t.model.Update(msg)
	return t, cmd
}

// View renders the table with a count line
func (t *Table) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(t.title))
	sb.WriteString("\n")

	switch {
	case !t.loaded:
		sb.WriteString("Loading bookings...")
	case len(t.bookings) == 0:
		sb.WriteString(styles.Subtitle.Render("No bookings found"))
	default:
		sb.WriteString(t.model.View())
		sb.WriteString("\n")
		sb.WriteString(styles.Help.Render(fmt.Sprintf("%d booking(s)", len(t.bookings))))
	}
	return sb.String()
}

// Restyle reapplies table colors after a theme switch
func (t *Table) Restyle() {
	t.model.SetStyles(tableStyles())
}
