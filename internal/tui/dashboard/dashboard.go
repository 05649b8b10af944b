// ABOUTME: Dashboard screen showing the signed-in identity and a booking summary
// ABOUTME: Refreshes the profile and loads bookings concurrently with errgroup

package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/tui/styles"
	"github.com/onlinebooking/booking-cli/internal/tui/widgets"
	"golang.org/x/sync/errgroup"
)

// Source is the slice of the API client the dashboard reads
type Source interface {
	Me(ctx context.Context) (*client.User, error)
	MyBookings(ctx context.Context) ([]client.Booking, error)
	AllBookings(ctx context.Context) ([]client.Booking, error)
}

// Summary is what the dashboard displays
type Summary struct {
	User       *client.User // fresh profile; nil when the refresh failed
	ProfileErr error
	Scope      string
	Total      int
	Counts     map[client.BookingStatus]int
	Next       *client.Booking // earliest upcoming active booking
}

// Load refreshes the profile and fetches bookings in parallel. Admins see the
// platform-wide listing; everyone else sees their own bookings. Only a
// bookings failure fails the load; a profile failure is reported in ProfileErr.
func Load(ctx context.Context, src Source, role client.Role, now time.Time) (*Summary, error) {
	g, ctx := errgroup.WithContext(ctx)

	var user *client.User
	var profileErr error
	g.Go(func() error {
		user, profileErr = src.Me(ctx)
		if profileErr != nil {
			user = nil
		}
		return nil
	})

	var bookings []client.Booking
	scope := "Your bookings"
	if role == client.RoleAdmin {
		scope = "All bookings"
	}
	g.Go(func() error {
		var err error
		if role == client.RoleAdmin {
			bookings, err = src.AllBookings(ctx)
		} else {
			bookings, err = src.MyBookings(ctx)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s := summarize(user, scope, bookings, now)
	s.ProfileErr = profileErr
	return s, nil
}

func summarize(user *client.User, scope string, bookings []client.Booking, now time.Time) *Summary {
	s := &Summary{
		User:   user,
		Scope:  scope,
		Total:  len(bookings),
		Counts: make(map[client.BookingStatus]int),
	}
	for i := range bookings {
		b := &bookings[i]
		s.Counts[b.Status]++
		if b.Status == client.BookingCancelled || b.Status == client.BookingCompleted {
			continue
		}
		if b.BookingDateTime.Before(now) {
			continue
		}
		if s.Next == nil || b.BookingDateTime.Before(s.Next.BookingDateTime.Time) {
			s.Next = b
		}
	}
	return s
}

// Dashboard renders identity and summary
type Dashboard struct {
	identity *client.User
	summary  *Summary
	err      string
	width    int
	height   int
}

// New creates a dashboard for identity; the summary arrives later
func New(identity *client.User, width, height int) *Dashboard {
	return &Dashboard{identity: identity, width: width, height: height}
}

// SetIdentity replaces the displayed identity
func (d *Dashboard) SetIdentity(identity *client.User) {
	d.identity = identity
}

// SetSummary shows a loaded summary and clears any error. A refreshed
// profile replaces the displayed identity.
func (d *Dashboard) SetSummary(s *Summary) {
	d.summary = s
	d.err = ""
	if s != nil && s.User != nil {
		d.identity = s.User
	}
}

// SetError shows why the summary could not be loaded
func (d *Dashboard) SetError(msg string) {
	d.err = msg
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard
func (d *Dashboard) View() string {
	var sb strings.Builder

	u := d.identity
	if u == nil {
		return "Loading profile..."
	}

	sb.WriteString(styles.Title.Render(fmt.Sprintf("Welcome, %s %s", u.FirstName, u.LastName)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s %s\n", u.Username, widgets.RoleBadge(u.Role)))
	if u.ID > 0 {
		sb.WriteString(fmt.Sprintf("Account: #%d\n", u.ID))
	}
	sb.WriteString(fmt.Sprintf("Email: %s\n", u.Email))
	if u.CustomerSupportID != "" {
		sb.WriteString(fmt.Sprintf("Support ID: %s\n", u.CustomerSupportID))
	}
	if d.summary != nil && d.summary.ProfileErr != nil {
		sb.WriteString(widgets.StatusText("Profile could not be refreshed", widgets.StatusWarning))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	switch {
	case d.err != "":
		sb.WriteString(widgets.StatusText(d.err, widgets.StatusCritical))
		sb.WriteString("\n")
	case d.summary == nil:
		sb.WriteString(styles.Subtitle.Render("Loading bookings..."))
		sb.WriteString("\n")
	default:
		sb.WriteString(d.viewSummary())
	}

	return lipgloss.NewStyle().
		Width(d.width).
		Render(sb.String())
}

const shareBarWidth = 12

func (d *Dashboard) viewSummary() string {
	var sb strings.Builder
	s := d.summary

	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s: %d", s.Scope, s.Total)))
	sb.WriteString("\n")
	for _, status := range client.BookingStatuses {
		if n := s.Counts[status]; n > 0 {
			bar := widgets.ShareBar(n, s.Total, shareBarWidth, widgets.BookingLevel(status))
			sb.WriteString(fmt.Sprintf("  %s %3d  %s\n", bar, n, widgets.BookingBadge(status)))
		}
	}

	if s.Next != nil {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Next: %s %s (%s)\n",
			styles.ValueStyle.Render(s.Next.ServiceName),
			s.Next.BookingDateTime.Format("Mon Jan 2 15:04"),
			humanize.Time(s.Next.BookingDateTime.Time)))
	}
	return sb.String()
}
