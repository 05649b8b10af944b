// ABOUTME: Navigation menu listing the screens the current session may open
// ABOUTME: Built from the route guard's visible entries plus logout and quit actions

package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/onlinebooking/booking-cli/internal/guard"
	"github.com/onlinebooking/booking-cli/internal/tui/icons"
	"github.com/onlinebooking/booking-cli/internal/tui/styles"
)

// Action is what choosing an item does
type Action int

const (
	ActionNavigate Action = iota
	ActionLogout
	ActionQuit
)

// Item is one menu line
type Item struct {
	Label  string
	Icon   icons.Icon
	Action Action
	Route  guard.Route // set for ActionNavigate
}

// SelectedMsg is sent when the user picks an item
type SelectedMsg struct {
	Item Item
}

// Menu is a vertical list with a cursor
type Menu struct {
	items  []Item
	cursor int
}

// New creates a menu over items
func New(items []Item) *Menu {
	return &Menu{items: items}
}

// Items builds menu items from the routes the guard allows. The landing route
// is the menu itself; login and register are hidden once signed in.
func Items(entries []guard.Entry, authenticated bool) []Item {
	var items []Item
	for _, e := range entries {
		switch e.Route {
		case guard.Landing:
			continue
		case guard.Login, guard.Register:
			if authenticated {
				continue
			}
		}
		items = append(items, Item{Label: e.Rule.Title, Icon: iconFor(e.Route), Action: ActionNavigate, Route: e.Route})
	}
	if authenticated {
		items = append(items, Item{Label: "Logout", Icon: icons.Logout, Action: ActionLogout})
	}
	return append(items, Item{Label: "Quit", Icon: icons.Quit, Action: ActionQuit})
}

func iconFor(route guard.Route) icons.Icon {
	switch route {
	case guard.Login:
		return icons.Login
	case guard.Register:
		return icons.Register
	case guard.Dashboard:
		return icons.Dashboard
	case guard.Booking:
		return icons.Calendar
	case guard.Payment:
		return icons.Card
	case guard.Profile:
		return icons.User
	case guard.Admin:
		return icons.Shield
	default:
		return icons.Home
	}
}

// Items returns the current items
func (m *Menu) Items() []Item {
	return m.items
}

// Cursor returns the highlighted index
func (m *Menu) Cursor() int {
	return m.cursor
}

// Update moves the cursor or emits SelectedMsg
func (m *Menu) Update(msg tea.Msg) (*Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.items) == 0 {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.items)) % len(m.items)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(m.items)
	case "enter":
		item := m.items[m.cursor]
		return m, func() tea.Msg { return SelectedMsg{Item: item} }
	}
	return m, nil
}

// View renders the menu
func (m *Menu) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Online Booking"))
	sb.WriteString("\n")
	for i, item := range m.items {
		line := fmt.Sprintf("%s %s", item.Icon.String(), item.Label)
		if i == m.cursor {
			sb.WriteString(styles.Selected.Render("> " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
