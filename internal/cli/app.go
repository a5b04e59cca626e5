// Package cli provides the estate command-line interface.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/estate-client/admin"
	"github.com/jrsteele09/estate-client/auth"
	"github.com/jrsteele09/estate-client/authstate"
	"github.com/jrsteele09/estate-client/chat"
	"github.com/jrsteele09/estate-client/internal/api"
	"github.com/jrsteele09/estate-client/internal/config"
	"github.com/jrsteele09/estate-client/properties"
	"github.com/jrsteele09/estate-client/session"
	"github.com/jrsteele09/estate-client/token/store"
	"github.com/rs/zerolog"
)

// App holds everything the commands share. It is built once in main.
type App struct {
	cfg        config.Config
	log        zerolog.Logger
	store      *store.Store
	auth       *auth.Client
	session    *session.Manager
	chat       *chat.Client
	properties *properties.Client
	admin      *admin.Client

	in  *bufio.Reader
	out io.Writer
}

// NewApp wires the store, transport, clients and session manager.
func NewApp(cfg config.Config, log zerolog.Logger, in io.Reader, out io.Writer) (*App, error) {
	var kv store.KV
	kv, err := store.NewFileKV(cfg.GetStorePath())
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	if secret := cfg.GetStoreKey(); secret != "" {
		if kv, err = store.NewSealedKV(kv, secret); err != nil {
			return nil, fmt.Errorf("open credential store: %w", err)
		}
	}
	st := store.New(kv, store.WithLogger(log))

	transport := api.New(cfg.GetBaseURL(), cfg.GetHTTPTimeout(), st,
		api.WithCSRF(st),
		api.WithLogger(log),
	)
	return newApp(cfg, log, st, transport, in, out)
}

func newApp(cfg config.Config, log zerolog.Logger, st *store.Store, transport *api.Client, in io.Reader, out io.Writer) (*App, error) {
	authClient, err := auth.NewClient(transport, auth.WithLogger(log))
	if err != nil {
		return nil, err
	}
	mgr, err := session.NewManager(st, authClient,
		session.WithRefreshMargin(cfg.GetRefreshMargin()),
		session.WithRefreshTimeout(cfg.GetHTTPTimeout()),
		session.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	mgr.Subscribe(func(from, to authstate.State, ev authstate.Event) {
		log.Debug().Stringer("from", from).Stringer("to", to).Stringer("event", ev).Msg("session state")
	})

	return &App{
		cfg:        cfg,
		log:        log,
		store:      st,
		auth:       authClient,
		session:    mgr,
		chat:       chat.NewClient(transport, cfg),
		properties: properties.NewClient(transport),
		admin:      admin.NewClient(transport),
		in:         bufio.NewReader(in),
		out:        out,
	}, nil
}

// Close stops background work. Stored credentials are kept for the next run.
func (a *App) Close() {
	a.session.Close()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// prompt reads one line; io.EOF is returned only when nothing was typed.
func (a *App) prompt(label string) (string, error) {
	a.printf("%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
