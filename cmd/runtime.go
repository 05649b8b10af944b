// ABOUTME: Wires configuration, credential store, API client, session, and route guard
// ABOUTME: Maps guard decisions and API errors to CLI messages and exit codes

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/config"
	"github.com/onlinebooking/booking-cli/internal/credstore"
	"github.com/onlinebooking/booking-cli/internal/guard"
	"github.com/onlinebooking/booking-cli/internal/logger"
	"github.com/onlinebooking/booking-cli/internal/session"
)

// Exit codes shared by all commands
const (
	exitOK     = 0
	exitDenied = 1 // not logged in, insufficient role, or rejected input
	exitError  = 2 // backend unreachable, backend failure, or bad configuration
)

// runtime is the session stack for one command invocation
type runtime struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *credstore.FileStore
	client  *client.Client
	session *session.Manager
	guard   *guard.Guard
}

// newRuntime loads configuration and wires the stack, logging to logOutput
func newRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return wireRuntime(cfg, logger.New(logOutput, cfg.LogLevel, cfg.LogFormat)), nil
}

// wireRuntime connects the components; the dispatcher's 401 event feeds the session
func wireRuntime(cfg *config.Config, log *slog.Logger) *runtime {
	store := credstore.Open(cfg.ConfigDir, log)
	c := client.New(cfg.APIURL, store, client.WithTimeout(cfg.HTTPTimeout), client.WithLogger(log))
	sess := session.New(c, store, log)
	c.OnUnauthorized(sess.HandleUnauthorized)

	return &runtime{
		cfg:     cfg,
		log:     log,
		store:   store,
		client:  c,
		session: sess,
		guard:   guard.New(guard.DefaultPolicy(), log),
	}
}

// setupRuntime builds the runtime or reports why it could not, returning a non-zero exit code
func setupRuntime(w io.Writer) (*runtime, int) {
	rt, err := newRuntime()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, exitError
	}
	return rt, exitOK
}

// authorize rehydrates the session and asks the guard whether route may run
func (rt *runtime) authorize(ctx context.Context, w io.Writer, route guard.Route) int {
	rt.session.Start(ctx)
	state := rt.session.State()

	decision := rt.guard.Evaluate(state, route)
	switch decision.Kind {
	case guard.Render:
		return exitOK
	case guard.Redirect:
		switch decision.Target {
		case guard.Login:
			fmt.Fprintln(w, "Error: not logged in (run 'booking login')")
		case guard.Dashboard:
			rule, _ := rt.guard.Policy().Rule(route)
			fmt.Fprintf(w, "Error: insufficient role: %s requires %s, you are %s\n", route, rule.Role, state.Role())
		default:
			fmt.Fprintf(w, "Error: %s\n", decision.Reason)
		}
		return exitDenied
	default:
		fmt.Fprintln(w, "Error: session could not be resolved")
		return exitError
	}
}

// reportError prints err for the user and returns its exit code
func reportError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %s\n", client.UserMessage(err, err.Error()))
	return exitCodeFor(err)
}

// exitCodeFor maps the client error taxonomy to exit codes
func exitCodeFor(err error) int {
	var transportErr *client.TransportError
	var unexpectedErr *client.UnexpectedError
	if errors.As(err, &transportErr) || errors.As(err, &unexpectedErr) {
		return exitError
	}
	return exitDenied
}
