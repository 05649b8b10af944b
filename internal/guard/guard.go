// ABOUTME: Route guard deciding whether a screen renders, waits, or redirects
// ABOUTME: Applies a static role policy to the current session state

package guard

import (
	"fmt"
	"log/slog"

	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/session"
)

// Route identifies a screen (TUI) or command group (CLI)
type Route string

const (
	Landing   Route = "/"
	Login     Route = "/login"
	Register  Route = "/register"
	Dashboard Route = "/dashboard"
	Booking   Route = "/booking"
	Payment   Route = "/payment"
	Profile   Route = "/profile"
	Admin     Route = "/admin"
)

// Rule describes who may open a route. Role is only meaningful when Protected.
type Rule struct {
	Title     string
	Protected bool
	Role      client.Role // "" means any authenticated role
}

// Entry pairs a route with its rule
type Entry struct {
	Route Route
	Rule  Rule
}

// Policy is the static route table. It is not mutated after construction.
type Policy struct {
	entries []Entry
	rules   map[Route]Rule
}

// NewPolicy builds a policy from entries, keeping their order for menus.
// Panics on an unknown role so misconfiguration fails at startup.
func NewPolicy(entries []Entry) *Policy {
	p := &Policy{rules: make(map[Route]Rule, len(entries))}
	for _, e := range entries {
		if e.Rule.Role != "" && !e.Rule.Role.Valid() {
			panic(fmt.Sprintf("guard.NewPolicy: unknown role %q for route %s", e.Rule.Role, e.Route))
		}
		p.entries = append(p.entries, e)
		p.rules[e.Route] = e.Rule
	}
	return p
}

// DefaultPolicy is the booking app's route table
func DefaultPolicy() *Policy {
	return NewPolicy([]Entry{
		{Landing, Rule{Title: "Home"}},
		{Login, Rule{Title: "Login"}},
		{Register, Rule{Title: "Register"}},
		{Dashboard, Rule{Title: "Dashboard", Protected: true}},
		{Booking, Rule{Title: "Bookings", Protected: true}},
		{Payment, Rule{Title: "Payment", Protected: true}},
		{Profile, Rule{Title: "Profile", Protected: true}},
		{Admin, Rule{Title: "Admin", Protected: true, Role: client.RoleAdmin}},
	})
}

// Rule returns the rule for route
func (p *Policy) Rule(route Route) (Rule, bool) {
	r, ok := p.rules[route]
	return r, ok
}

// Entries returns the routes in declaration order
func (p *Policy) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Kind is the outcome of a guard decision
type Kind int

const (
	Loading Kind = iota
	Render
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "loading"
	}
}

// Reasons attached to redirects
const (
	ReasonNotLoggedIn      = "not logged in"
	ReasonInsufficientRole = "insufficient role"
	ReasonUnknownRoute     = "unknown route"
)

// Decision tells the caller what to show. Replace means the redirect replaces
// the current history entry instead of pushing a new one.
type Decision struct {
	Kind    Kind
	Target  Route
	Replace bool
	Reason  string
}

// Guard evaluates routes against a policy
type Guard struct {
	policy *Policy
	log    *slog.Logger
}

// New creates a guard; a nil log uses slog.Default
func New(policy *Policy, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	return &Guard{policy: policy, log: log}
}

// Policy returns the guard's route table
func (g *Guard) Policy() *Policy {
	return g.policy
}

// Evaluate decides what to do when state tries to open route
func (g *Guard) Evaluate(state session.State, route Route) Decision {
	rule, ok := g.policy.Rule(route)
	if !ok {
		g.log.Debug("Unknown route, redirecting to landing", "route", route)
		return Decision{Kind: Redirect, Target: Landing, Replace: true, Reason: ReasonUnknownRoute}
	}
	if !rule.Protected {
		return Decision{Kind: Render}
	}

	switch state.Status {
	case session.Authenticated:
		if !Satisfies(state.Role(), rule.Role) {
			g.log.Warn("Route access denied",
				"route", route,
				"required_role", rule.Role,
				"user_role", state.Role(),
				"username", state.Identity.Username,
			)
			return Decision{Kind: Redirect, Target: Dashboard, Replace: true, Reason: ReasonInsufficientRole}
		}
		return Decision{Kind: Render}
	case session.Anonymous:
		g.log.Warn("Route requires login", "route", route)
		return Decision{Kind: Redirect, Target: Login, Replace: true, Reason: ReasonNotLoggedIn}
	default:
		return Decision{Kind: Loading}
	}
}

// Visible lists the entries state may open right now, in policy order
func (g *Guard) Visible(state session.State) []Entry {
	var out []Entry
	for _, e := range g.policy.entries {
		if !e.Rule.Protected {
			out = append(out, e)
			continue
		}
		if state.Status == session.Authenticated && Satisfies(state.Role(), e.Rule.Role) {
			out = append(out, e)
		}
	}
	return out
}

// Satisfies reports whether an authenticated role may open a route requiring
// required. ADMIN satisfies every requirement.
func Satisfies(role, required client.Role) bool {
	if required == "" {
		return true
	}
	return role == required || role == client.RoleAdmin
}
