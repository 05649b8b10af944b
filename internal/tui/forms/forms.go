// ABOUTME: huh forms for login, registration, booking, payment, and profile screens
// ABOUTME: Wraps each form as a bubbletea model that emits typed values on submit

package forms

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/tui/styles"
	"github.com/shopspring/decimal"
)

// Kind identifies which form produced a message
type Kind int

const (
	KindLogin Kind = iota
	KindRegister
	KindBooking
	KindPayment
	KindProfile
)

// SubmittedMsg carries the parsed value of a completed form:
// client.Credentials, client.Registration, client.BookingRequest,
// client.PaymentRequest, or client.ProfileUpdate depending on Kind.
type SubmittedMsg struct {
	Kind  Kind
	Value any
}

// CancelledMsg is sent when the user leaves a form with esc
type CancelledMsg struct {
	Kind Kind
}

// Form is a huh form run inside the app's program
type Form struct {
	kind    Kind
	build   func() *huh.Form
	collect func() (any, error)
	form    *huh.Form
	err     string
	width   int
}

func newForm(kind Kind, build func() *huh.Form, collect func() (any, error)) *Form {
	return &Form{kind: kind, build: build, collect: collect, form: build()}
}

// Kind returns which form this is
func (f *Form) Kind() Kind {
	return f.kind
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			kind := f.kind
			return f, func() tea.Msg { return CancelledMsg{Kind: kind} }
		}
	}

	model, cmd := f.form.Update(msg)
	if hf, ok := model.(*huh.Form); ok {
		f.form = hf
	}

	switch f.form.State {
	case huh.StateCompleted:
		value, err := f.collect()
		if err != nil {
			// Fields stay bound, so a rebuilt form keeps what was typed
			f.err = err.Error()
			f.form = f.build()
			return f, f.form.Init()
		}
		kind := f.kind
		return f, func() tea.Msg { return SubmittedMsg{Kind: kind, Value: value} }
	case huh.StateAborted:
		kind := f.kind
		return f, func() tea.Msg { return CancelledMsg{Kind: kind} }
	}
	return f, cmd
}

// View implements tea.Model
func (f *Form) View() string {
	view := f.form.View()
	if f.err != "" {
		view = styles.StatusCritical.Render(f.err) + "\n\n" + view
	}
	return view
}

// theme derives a huh theme from the active palette
func theme() *huh.Theme {
	t := huh.ThemeBase()

	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(styles.Muted).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(styles.Muted)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(styles.Danger).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(styles.Danger)

	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(styles.Primary).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(styles.Text)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(styles.Muted)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(styles.Text)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Info).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(styles.Muted).
		Background(styles.Surface).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(styles.Muted)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(styles.Muted).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(styles.Muted)

	return t
}

// Login asks for username and password
func Login() *Form {
	var creds client.Credentials
	build := func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Username").Value(&creds.Username).Validate(required("username")),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&creds.Password).Validate(required("password")),
			).Title("Sign in"),
		).WithTheme(theme())
	}
	return newForm(KindLogin, build, func() (any, error) {
		return client.Credentials{Username: strings.TrimSpace(creds.Username), Password: creds.Password}, nil
	})
}

// Register collects a new account; the role defaults to CUSTOMER
func Register() *Form {
	reg := client.Registration{Role: client.RoleCustomer}
	build := func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("First name").Value(&reg.FirstName).Validate(required("first name")),
				huh.NewInput().Title("Last name").Value(&reg.LastName).Validate(required("last name")),
				huh.NewInput().Title("Username").Description("3 to 20 characters").Value(&reg.Username).Validate(required("username")),
				huh.NewInput().Title("Email").Value(&reg.Email).Validate(required("email")),
				huh.NewInput().Title("Password").Description("At least 6 characters").EchoMode(huh.EchoModePassword).Value(&reg.Password).Validate(required("password")),
				huh.NewSelect[client.Role]().
					Title("Account type").
					Options(
						huh.NewOption("Customer", client.RoleCustomer),
						huh.NewOption("Business", client.RoleBusiness),
					).
					Value(&reg.Role),
			).Title("Create an account"),
		).WithTheme(theme())
	}
	return newForm(KindRegister, build, func() (any, error) {
		out := reg
		out.Username = strings.TrimSpace(out.Username)
		out.Email = strings.TrimSpace(out.Email)
		return out, nil
	})
}

// bookingFields holds the raw text of the booking form
type bookingFields struct {
	service     string
	description string
	at          string
	duration    string
	price       string
	notes       string
}

// Booking collects a new booking request
func Booking() *Form {
	v := bookingFields{duration: "60"}
	build := func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Service").Value(&v.service).Validate(required("service")),
				huh.NewInput().Title("Description").Value(&v.description),
				huh.NewInput().Title("When").Placeholder("2026-11-02T14:30").Value(&v.at).Validate(validateDateTime),
				huh.NewInput().Title("Duration (minutes)").CharLimit(4).Value(&v.duration).Validate(validatePositiveInt),
				huh.NewInput().Title("Price").Placeholder("35.00").Value(&v.price).Validate(validateAmount),
				huh.NewInput().Title("Notes").Value(&v.notes),
			).Title("New booking"),
		).WithTheme(theme())
	}
	return newForm(KindBooking, build, func() (any, error) {
		return v.request()
	})
}

func (v bookingFields) request() (client.BookingRequest, error) {
	when, err := client.ParseLocalDateTime(strings.TrimSpace(v.at))
	if err != nil {
		return client.BookingRequest{}, err
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(v.duration))
	if err != nil {
		return client.BookingRequest{}, fmt.Errorf("invalid duration %q", v.duration)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(v.price))
	if err != nil {
		return client.BookingRequest{}, fmt.Errorf("invalid price %q", v.price)
	}
	return client.BookingRequest{
		BookingDateTime:    when,
		DurationMinutes:    minutes,
		ServiceName:        strings.TrimSpace(v.service),
		ServiceDescription: v.description,
		Price:              price,
		Notes:              v.notes,
	}, nil
}

// Payment collects an amount to charge
func Payment() *Form {
	var amount, description string
	currency := "usd"
	build := func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Amount").Placeholder("35.00").Value(&amount).Validate(validateAmount),
				huh.NewSelect[string]().
					Title("Currency").
					Options(
						huh.NewOption("USD", "usd"),
						huh.NewOption("EUR", "eur"),
						huh.NewOption("GBP", "gbp"),
					).
					Value(&currency),
				huh.NewInput().Title("Description").CharLimit(200).Value(&description),
			).Title("Make a payment"),
		).WithTheme(theme())
	}
	return newForm(KindPayment, build, func() (any, error) {
		value, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q", amount)
		}
		return client.PaymentRequest{Amount: value, Currency: currency, Description: description}, nil
	})
}

// Profile edits name and email, starting from the current identity
func Profile(current *client.User) *Form {
	var update client.ProfileUpdate
	if current != nil {
		update = client.ProfileUpdate{FirstName: current.FirstName, LastName: current.LastName, Email: current.Email}
	}
	build := func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("First name").CharLimit(50).Value(&update.FirstName),
				huh.NewInput().Title("Last name").CharLimit(50).Value(&update.LastName),
				huh.NewInput().Title("Email").CharLimit(50).Value(&update.Email).Validate(required("email")),
			).Title("Edit profile"),
		).WithTheme(theme())
	}
	return newForm(KindProfile, build, func() (any, error) {
		out := update
		out.Email = strings.TrimSpace(out.Email)
		return out, nil
	})
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func validateAmount(s string) error {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !v.IsPositive() {
		return fmt.Errorf("must be an amount greater than 0")
	}
	return nil
}

func validateDateTime(s string) error {
	_, err := client.ParseLocalDateTime(strings.TrimSpace(s))
	return err
}
