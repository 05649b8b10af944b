// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Maps routes to screens through the route guard and reacts to session changes

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/credstore"
	"github.com/onlinebooking/booking-cli/internal/guard"
	"github.com/onlinebooking/booking-cli/internal/session"
	"github.com/onlinebooking/booking-cli/internal/tui/bookings"
	"github.com/onlinebooking/booking-cli/internal/tui/dashboard"
	"github.com/onlinebooking/booking-cli/internal/tui/forms"
	"github.com/onlinebooking/booking-cli/internal/tui/icons"
	"github.com/onlinebooking/booking-cli/internal/tui/menu"
	"github.com/onlinebooking/booking-cli/internal/tui/styles"
	"github.com/onlinebooking/booking-cli/internal/tui/widgets"
)

// Layout constants
const (
	minTerminalWidth = 80
	frameLines       = 4 // header, blank, blank, footer
	maxRedirects     = 4
	toastTTL         = 5 * time.Second
)

// Deps are the session components the app drives
type Deps struct {
	Client  *client.Client
	Session *session.Manager
	Guard   *guard.Guard
	Store   credstore.Store
	Log     *slog.Logger
}

// sessionChangedMsg relays a session listener notification into the program
type sessionChangedMsg session.Change

// startedMsg is sent once rehydration has finished
type startedMsg struct{}

type loginDoneMsg session.Result

type registerDoneMsg session.Result

type summaryLoadedMsg struct {
	summary *dashboard.Summary
	err     error
}

type bookingsLoadedMsg struct {
	route    guard.Route
	bookings []client.Booking
	err      error
}

type bookingCreatedMsg struct {
	booking *client.Booking
	err     error
}

type bookingCancelledMsg struct {
	id  int64
	err error
}

type paymentMsg struct {
	intent *client.PaymentIntent
	status *client.PaymentStatus
	err    error
}

type profileSavedMsg struct {
	update client.ProfileUpdate
	err    error
}

type toastExpiredMsg struct {
	seq int
}

// toast is a transient notice shown in the footer
type toast struct {
	text  string
	level widgets.StatusLevel
	seq   int
}

// App is the root model for the TUI
type App struct {
	client  *client.Client
	session *session.Manager
	guard   *guard.Guard
	store   credstore.Store
	log     *slog.Logger

	width   int
	height  int
	history []guard.Route
	state   session.State
	changes *changeQueue

	loading bool   // guard answered Loading for the current route
	busy    string // label while a request for the current screen is in flight
	spinner spinner.Model
	toast   toast

	// Screens; only the ones for the current route are set
	menu    *menu.Menu
	form    *forms.Form
	dash    *dashboard.Dashboard
	table   *bookings.Table
	intent  *client.PaymentIntent
	payment *client.PaymentStatus
}

// New creates the app positioned at start. Protected routes show a spinner
// until the session has been restored.
func New(deps Deps, start guard.Route) *App {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	styles.Use(deps.Store.DarkMode())

	a := &App{
		client:  deps.Client,
		session: deps.Session,
		guard:   deps.Guard,
		store:   deps.Store,
		log:     log,
		history: []guard.Route{start},
		state:   deps.Session.State(),
		changes: newChangeQueue(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	deps.Session.OnChange(a.changes.push)
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.resolve(), a.startSession(), a.waitForChange())
}

// current is the route on top of the history
func (a *App) current() guard.Route {
	return a.history[len(a.history)-1]
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.dash != nil {
			a.dash.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.table != nil {
			a.table.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.form != nil {
			return a, a.updateForm(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.form != nil {
			return a, a.updateForm(msg)
		}
		return a, a.handleKey(msg)

	case sessionChangedMsg:
		return a, tea.Batch(a.handleSessionChange(session.Change(msg)), a.waitForChange())

	case startedMsg:
		if a.loading {
			a.state = a.session.State()
			return a, a.resolve()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loading && a.busy == "" {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case toastExpiredMsg:
		if msg.seq == a.toast.seq {
			a.toast = toast{seq: a.toast.seq}
		}
		return a, nil

	case menu.SelectedMsg:
		return a, a.handleMenu(msg.Item)

	case forms.SubmittedMsg:
		return a, a.handleSubmit(msg)

	case forms.CancelledMsg:
		a.form = nil
		if a.current() == guard.Booking {
			// the booking form sits over the table
			return a, nil
		}
		if a.current() == guard.Payment && a.intent != nil {
			return a, nil
		}
		return a, a.back()

	case loginDoneMsg:
		return a, a.handleLoginDone(session.Result(msg))

	case registerDoneMsg:
		return a, a.handleRegisterDone(session.Result(msg))

	case summaryLoadedMsg:
		if a.dash == nil {
			return a, nil
		}
		if msg.err != nil {
			a.dash.SetError(client.UserMessage(msg.err, "Could not load bookings"))
			return a, nil
		}
		a.dash.SetSummary(msg.summary)
		a.syncIdentity(msg.summary.User)
		return a, nil

	case bookingsLoadedMsg:
		if a.table == nil || msg.route != a.current() {
			return a, nil
		}
		if msg.err != nil {
			a.table.SetBookings(nil)
			return a, a.notifyErr(msg.err, "Could not load bookings")
		}
		a.table.SetBookings(msg.bookings)
		return a, nil

	case bookingCreatedMsg:
		a.busy = ""
		if msg.err != nil {
			return a, a.notifyErr(msg.err, "Booking failed")
		}
		return a, tea.Batch(
			a.notify(fmt.Sprintf("Booking #%d created", msg.booking.ID), widgets.StatusOK),
			a.loadBookings(a.current()),
		)

	case bookingCancelledMsg:
		a.busy = ""
		if msg.err != nil {
			return a, a.notifyErr(msg.err, "Cancel failed")
		}
		return a, tea.Batch(
			a.notify("Booking cancelled successfully", widgets.StatusOK),
			a.loadBookings(a.current()),
		)

	case paymentMsg:
		return a, a.handlePayment(msg)

	case profileSavedMsg:
		return a, a.handleProfileSaved(msg)

	default:
		// huh form internals (cursor blink, field focus) arrive here
		if a.form != nil {
			return a, a.updateForm(msg)
		}
	}

	return a, nil
}

func (a *App) updateForm(msg tea.Msg) tea.Cmd {
	model, cmd := a.form.Update(msg)
	a.form = model.(*forms.Form)
	return cmd
}

// handleKey dispatches keys for screens without an active form
func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "t":
		return a.toggleTheme()
	case "esc", "b":
		return a.back()
	case "m":
		if a.current() != guard.Landing {
			return a.navigate(guard.Landing)
		}
		return nil
	}

	if a.loading || a.busy != "" {
		return nil
	}

	switch a.current() {
	case guard.Landing:
		if a.menu != nil {
			var cmd tea.Cmd
			a.menu, cmd = a.menu.Update(msg)
			return cmd
		}

	case guard.Dashboard:
		if msg.String() == "r" {
			return a.loadSummary()
		}

	case guard.Booking:
		switch msg.String() {
		case "n":
			a.form = forms.Booking()
			return a.form.Init()
		case "x":
			if b, ok := a.table.Selected(); ok {
				return a.cancelBooking(b.ID)
			}
			return nil
		case "r":
			return a.loadBookings(guard.Booking)
		}
		return a.updateTable(msg)

	case guard.Admin:
		if msg.String() == "r" {
			return a.loadBookings(guard.Admin)
		}
		return a.updateTable(msg)

	case guard.Payment:
		if a.intent == nil {
			return nil
		}
		id := a.intent.PaymentIntentID
		switch msg.String() {
		case "c":
			return a.paymentAction("Confirming payment...", func(ctx context.Context) (*client.PaymentStatus, error) {
				return a.client.ConfirmPayment(ctx, id)
			})
		case "x":
			return a.paymentAction("Cancelling payment...", func(ctx context.Context) (*client.PaymentStatus, error) {
				return a.client.CancelPayment(ctx, id)
			})
		case "s":
			return a.paymentAction("Checking payment...", func(ctx context.Context) (*client.PaymentStatus, error) {
				return a.client.PaymentStatus(ctx, id)
			})
		case "n":
			a.intent, a.payment = nil, nil
			a.form = forms.Payment()
			return a.form.Init()
		}
	}
	return nil
}

func (a *App) updateTable(msg tea.Msg) tea.Cmd {
	if a.table == nil {
		return nil
	}
	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return cmd
}

func (a *App) handleMenu(item menu.Item) tea.Cmd {
	switch item.Action {
	case menu.ActionQuit:
		return tea.Quit
	case menu.ActionLogout:
		// the logout change arrives through the listener
		a.session.Logout()
		return nil
	default:
		return a.navigate(item.Route)
	}
}

// handleSessionChange keeps the screen consistent with the session
func (a *App) handleSessionChange(change session.Change) tea.Cmd {
	a.state = change.State
	a.log.Debug("Session changed", "cause", change.Cause, "status", change.State.Status)

	switch change.Cause {
	case session.CauseLogin:
		a.history = []guard.Route{guard.Dashboard}
		return tea.Batch(a.notify(session.MsgLoginSuccess, widgets.StatusOK), a.resolve())

	case session.CauseLogout:
		a.history = []guard.Route{guard.Landing}
		return tea.Batch(a.notify(session.MsgLoggedOut, widgets.StatusInfo), a.resolve())

	case session.CauseUnauthorized:
		a.busy = ""
		return tea.Batch(a.notify(session.MsgSessionExpired, widgets.StatusWarning), a.resolve())

	case session.CauseIdentityUpdated:
		if a.dash != nil {
			a.dash.SetIdentity(change.State.Identity)
		}
		return nil

	default:
		return a.resolve()
	}
}

// navigate pushes route and resolves it
func (a *App) navigate(route guard.Route) tea.Cmd {
	if route == a.current() {
		return nil
	}
	a.history = append(a.history, route)
	return a.resolve()
}

// back pops the history, stopping at the landing menu
func (a *App) back() tea.Cmd {
	if len(a.history) > 1 {
		a.history = a.history[:len(a.history)-1]
	} else if a.current() != guard.Landing {
		a.history[0] = guard.Landing
	} else {
		return nil
	}
	return a.resolve()
}

// resolve asks the guard about the current route and prepares the screen.
// Redirects replace the history entry they were raised for.
func (a *App) resolve() tea.Cmd {
	var cmds []tea.Cmd
	for range maxRedirects {
		route := a.current()
		decision := a.guard.Evaluate(a.state, route)

		switch decision.Kind {
		case guard.Loading:
			a.clearScreens()
			a.loading = true
			return tea.Batch(append(cmds, a.spinner.Tick)...)

		case guard.Redirect:
			if decision.Reason == guard.ReasonInsufficientRole {
				rule, _ := a.guard.Policy().Rule(route)
				cmds = append(cmds, a.notify(fmt.Sprintf("Access denied: %s requires %s", rule.Title, rule.Role), widgets.StatusWarning))
			}
			if decision.Replace {
				a.history[len(a.history)-1] = decision.Target
			} else {
				a.history = append(a.history, decision.Target)
			}
			continue

		default:
			a.loading = false
			return tea.Batch(append(cmds, a.enter(route))...)
		}
	}
	a.log.Error("Redirect loop", "route", a.current())
	a.history = []guard.Route{guard.Landing}
	a.loading = false
	return tea.Batch(append(cmds, a.enter(guard.Landing))...)
}

func (a *App) clearScreens() {
	a.menu = nil
	a.form = nil
	a.dash = nil
	a.table = nil
	a.intent = nil
	a.payment = nil
	a.busy = ""
}

// enter builds the screen for an allowed route
func (a *App) enter(route guard.Route) tea.Cmd {
	a.clearScreens()

	switch route {
	case guard.Login:
		a.form = forms.Login()
		return a.form.Init()
	case guard.Register:
		a.form = forms.Register()
		return a.form.Init()
	case guard.Dashboard:
		a.dash = dashboard.New(a.state.Identity, a.contentWidth(), a.contentHeight())
		return a.loadSummary()
	case guard.Booking:
		a.table = bookings.New("My Bookings", a.contentWidth(), a.contentHeight())
		return a.loadBookings(guard.Booking)
	case guard.Admin:
		a.table = bookings.New("All Bookings", a.contentWidth(), a.contentHeight())
		return a.loadBookings(guard.Admin)
	case guard.Payment:
		a.form = forms.Payment()
		return a.form.Init()
	case guard.Profile:
		a.form = forms.Profile(a.state.Identity)
		return a.form.Init()
	default:
		a.menu = menu.New(menu.Items(a.guard.Visible(a.state), a.state.Status == session.Authenticated))
		return nil
	}
}

func (a *App) handleSubmit(msg forms.SubmittedMsg) tea.Cmd {
	a.form = nil

	switch v := msg.Value.(type) {
	case client.Credentials:
		a.busy = "Signing in..."
		return tea.Batch(a.spinner.Tick, a.login(v))

	case client.Registration:
		a.busy = "Creating account..."
		return tea.Batch(a.spinner.Tick, a.register(v))

	case client.BookingRequest:
		a.busy = "Creating booking..."
		return tea.Batch(a.spinner.Tick, func() tea.Msg {
			b, err := a.client.CreateBooking(context.Background(), v)
			return bookingCreatedMsg{booking: b, err: err}
		})

	case client.PaymentRequest:
		a.busy = "Creating payment..."
		return tea.Batch(a.spinner.Tick, func() tea.Msg {
			intent, err := a.client.CreatePaymentIntent(context.Background(), v)
			return paymentMsg{intent: intent, err: err}
		})

	case client.ProfileUpdate:
		a.busy = "Saving profile..."
		return tea.Batch(a.spinner.Tick, func() tea.Msg {
			err := a.client.UpdateProfile(context.Background(), v)
			return profileSavedMsg{update: v, err: err}
		})
	}
	return nil
}

func (a *App) handleLoginDone(res session.Result) tea.Cmd {
	if res.OK || res.Superseded {
		// success navigates through the session change
		return nil
	}
	a.busy = ""
	if a.current() != guard.Login {
		return nil
	}
	a.form = forms.Login()
	return tea.Batch(a.notify(res.Message, widgets.StatusCritical), a.form.Init())
}

func (a *App) handleRegisterDone(res session.Result) tea.Cmd {
	a.busy = ""
	if a.current() != guard.Register {
		return nil
	}
	if !res.OK {
		a.form = forms.Register()
		return tea.Batch(a.notify(res.Message, widgets.StatusCritical), a.form.Init())
	}
	a.history[len(a.history)-1] = guard.Login
	return tea.Batch(a.notify(res.Message, widgets.StatusOK), a.resolve())
}

func (a *App) handlePayment(msg paymentMsg) tea.Cmd {
	a.busy = ""
	if a.current() != guard.Payment {
		return nil
	}
	if msg.err != nil {
		if a.intent == nil {
			a.form = forms.Payment()
			return tea.Batch(a.notifyErr(msg.err, "Payment failed"), a.form.Init())
		}
		return a.notifyErr(msg.err, "Payment failed")
	}
	if msg.intent != nil {
		a.intent = msg.intent
		a.payment = &client.PaymentStatus{PaymentIntentID: msg.intent.PaymentIntentID, Status: "requires_payment_method"}
		return a.notify("Payment intent created", widgets.StatusInfo)
	}
	a.payment = msg.status
	switch msg.status.Status {
	case "succeeded":
		return a.notify("Payment succeeded", widgets.StatusOK)
	case "canceled":
		return a.notify("Payment cancelled", widgets.StatusWarning)
	}
	return nil
}

func (a *App) handleProfileSaved(msg profileSavedMsg) tea.Cmd {
	a.busy = ""
	if msg.err != nil {
		if a.current() == guard.Profile {
			a.form = forms.Profile(a.state.Identity)
			return tea.Batch(a.notifyErr(msg.err, "Profile update failed"), a.form.Init())
		}
		return a.notifyErr(msg.err, "Profile update failed")
	}
	a.session.UpdateIdentity(session.IdentityPatch{
		FirstName: msg.update.FirstName,
		LastName:  msg.update.LastName,
		Email:     msg.update.Email,
	})
	a.state = a.session.State()
	if a.current() == guard.Profile {
		a.history[len(a.history)-1] = guard.Dashboard
	}
	return tea.Batch(a.notify("Profile updated successfully", widgets.StatusOK), a.resolve())
}

// syncIdentity folds a freshly fetched profile into the session when it differs
func (a *App) syncIdentity(fresh *client.User) {
	current := a.state.Identity
	if fresh == nil || current == nil || fresh.Username != current.Username {
		return
	}
	if fresh.FirstName == current.FirstName && fresh.LastName == current.LastName && fresh.Email == current.Email {
		return
	}
	a.session.UpdateIdentity(session.IdentityPatch{
		FirstName: fresh.FirstName,
		LastName:  fresh.LastName,
		Email:     fresh.Email,
	})
	a.state = a.session.State()
}

// notify shows a footer toast and schedules its removal
func (a *App) notify(text string, level widgets.StatusLevel) tea.Cmd {
	seq := a.toast.seq + 1
	a.toast = toast{text: text, level: level, seq: seq}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

// notifyErr reports err unless it was a 401; the session change already explains those
func (a *App) notifyErr(err error, fallback string) tea.Cmd {
	if client.IsUnauthorized(err) {
		return nil
	}
	a.log.Warn("Request failed", "error", err)
	return a.notify(client.UserMessage(err, fallback), widgets.StatusCritical)
}

func (a *App) toggleTheme() tea.Cmd {
	dark := !styles.Dark()
	styles.Use(dark)
	a.store.SetDarkMode(dark)
	if a.table != nil {
		a.table.Restyle()
	}
	name := "light"
	if dark {
		name = "dark"
	}
	return a.notify("Theme: "+name, widgets.StatusInfo)
}

// waitForChange delivers the next session change as a message
func (a *App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		c, _ := a.changes.next(context.Background())
		return sessionChangedMsg(c)
	}
}

func (a *App) startSession() tea.Cmd {
	return func() tea.Msg {
		a.session.Start(context.Background())
		return startedMsg{}
	}
}

func (a *App) login(creds client.Credentials) tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg(a.session.Login(context.Background(), creds))
	}
}

func (a *App) register(reg client.Registration) tea.Cmd {
	return func() tea.Msg {
		return registerDoneMsg(a.session.Register(context.Background(), reg))
	}
}

func (a *App) loadSummary() tea.Cmd {
	role := a.state.Role()
	return func() tea.Msg {
		s, err := dashboard.Load(context.Background(), a.client, role, time.Now())
		return summaryLoadedMsg{summary: s, err: err}
	}
}

func (a *App) loadBookings(route guard.Route) tea.Cmd {
	return func() tea.Msg {
		var list []client.Booking
		var err error
		if route == guard.Admin {
			list, err = a.client.AllBookings(context.Background())
		} else {
			list, err = a.client.MyBookings(context.Background())
		}
		return bookingsLoadedMsg{route: route, bookings: list, err: err}
	}
}

func (a *App) cancelBooking(id int64) tea.Cmd {
	a.busy = "Cancelling booking..."
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		return bookingCancelledMsg{id: id, err: a.client.CancelBooking(context.Background(), id)}
	})
}

func (a *App) paymentAction(label string, fn func(ctx context.Context) (*client.PaymentStatus, error)) tea.Cmd {
	a.busy = label
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		status, err := fn(context.Background())
		return paymentMsg{status: status, err: err}
	})
}

// View implements tea.Model
func (a *App) View() string {
	return a.wrapWithFrame(a.viewContent())
}

func (a *App) viewContent() string {
	if a.loading {
		return fmt.Sprintf("%s Restoring session...", a.spinner.View())
	}
	if a.busy != "" {
		return fmt.Sprintf("%s %s", a.spinner.View(), a.busy)
	}
	if a.form != nil {
		return styles.ActivePanel.Width(a.contentWidth()).Render(a.form.View())
	}

	switch a.current() {
	case guard.Landing:
		if a.menu != nil {
			return styles.Panel.Width(a.contentWidth()).Render(a.menu.View())
		}
	case guard.Dashboard:
		if a.dash != nil {
			return styles.ActivePanel.Width(a.contentWidth()).Render(a.dash.View())
		}
	case guard.Booking, guard.Admin:
		if a.table != nil {
			return a.table.View()
		}
	case guard.Payment:
		return a.viewPayment()
	}
	return ""
}

func (a *App) viewPayment() string {
	if a.intent == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Card.String() + " Payment"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Intent: %s\n", a.intent.PaymentIntentID))
	if a.payment != nil {
		sb.WriteString(fmt.Sprintf("Status: %s\n", styles.ValueStyle.Render(a.payment.Status)))
	}
	return styles.ActivePanel.Width(a.contentWidth()).Render(sb.String())
}

// frameWidth is the drawn width; one column short of the terminal to avoid wrapping
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

func (a *App) contentWidth() int {
	return a.frameWidth() - 4
}

func (a *App) contentHeight() int {
	return max(a.height-frameLines, 10)
}

// renderHeader draws the top border with branding and the signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	left := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Online Booking"))

	who := "guest"
	if a.state.Status == session.Authenticated && a.state.Identity != nil {
		who = fmt.Sprintf("%s (%s)", a.state.Identity.Username, a.state.Identity.Role)
	}
	if rule, ok := a.guard.Policy().Rule(a.current()); ok {
		who = rule.Title + " | " + who
	}
	right := " " + contextStyle.Render(who) + " "

	fill := max(width-4-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return borderStyle.Render("╭─") + left + borderStyle.Render(strings.Repeat("─", fill)) + right + borderStyle.Render("─╮")
}

// renderFooter draws key hints and the current toast
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	var styled []string
	for _, s := range a.shortcuts() {
		parts := strings.SplitN(s, " ", 2)
		styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
	}
	left := " " + strings.Join(styled, "  ") + " "

	right := ""
	if a.toast.text != "" {
		right = " " + widgets.StatusText(a.toast.text, a.toast.level) + " "
	}

	fill := max(width-4-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return borderStyle.Render("╰─") + left + borderStyle.Render(strings.Repeat("─", fill)) + right + borderStyle.Render("─╯")
}

// shortcuts lists the key hints for the current screen
func (a *App) shortcuts() []string {
	if a.form != nil {
		return []string{"Tab Next", "Enter Submit", "Esc Cancel"}
	}
	common := []string{"t Theme", "b Back", "q Quit"}
	switch a.current() {
	case guard.Landing:
		return append([]string{"↑↓ Navigate", "Enter Select"}, "t Theme", "q Quit")
	case guard.Dashboard:
		return append([]string{"r Refresh", "m Menu"}, common...)
	case guard.Booking:
		return append([]string{"n New", "x Cancel", "r Refresh"}, common...)
	case guard.Admin:
		return append([]string{"↑↓ Navigate", "r Refresh"}, common...)
	case guard.Payment:
		return append([]string{"c Confirm", "x Cancel", "s Status", "n New"}, common...)
	}
	return common
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder
	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())
	return sb.String()
}

// Run starts the TUI at the dashboard; the guard sends anonymous users to login
func Run(deps Deps) error {
	p := tea.NewProgram(
		New(deps, guard.Dashboard),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
