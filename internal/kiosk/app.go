package kiosk

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// App wires the kiosk components and owns their listeners.
type App struct {
	cfg        *Config
	state      *AppState
	decision   LaunchDecision
	window     WindowOptions
	gatewayURL string
	gateway    http.Handler
	ipc        *IPCServer
	shortcuts  *ShortcutRegistry
	log        zerolog.Logger

	quitOnce sync.Once
	done     chan struct{}
}

// NewApp decides the launch mode from args and builds every component.
func NewApp(cfg *Config, args []string, log zerolog.Logger) *App {
	log = log.With().Str("component", "kiosk").Logger()

	a := &App{
		cfg:        cfg,
		state:      NewAppState(cfg),
		decision:   DecideLaunch(args, cfg.IsDevelopment(), log),
		gatewayURL: "http://" + cfg.GatewayAddr,
		shortcuts:  NewShortcutRegistry(),
		log:        log,
		done:       make(chan struct{}),
	}
	if a.decision.Locked() {
		a.state.LockTo(a.decision.ExamID)
	}
	a.window = NewWindowOptions(a.decision, a.gatewayURL)
	a.gateway = NewGateway(cfg.WebURL, cfg.APIURL, &LockedModeTransport{State: a.state}, log)

	RegisterShortcuts(a.shortcuts, a.decision.Mode, a.state, a.Quit, log)

	dispatcher := NewDispatcher(Deps{
		Config:     cfg,
		State:      a.state,
		Tokens:     NewFileTokenStore(cfg.TokenFile),
		Navigation: NewNavigationPolicy(a.state, cfg.WebURL, cfg.APIURL),
		Shortcuts:  a.shortcuts,
		Window:     a.window,
		GatewayURL: a.gatewayURL,
		Quit:       a.Quit,
	}, log)
	a.ipc = NewIPCServer(dispatcher, log)

	return a
}

// Decision returns the launch decision made at startup.
func (a *App) Decision() LaunchDecision { return a.decision }

// Window returns the construction-time window options.
func (a *App) Window() WindowOptions { return a.window }

// State exposes the shared kiosk state.
func (a *App) State() *AppState { return a.state }

// Quit asks Run to stop. Safe to call more than once.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.done) })
}

// Done is closed once Quit has been called.
func (a *App) Done() <-chan struct{} { return a.done }

// Run serves the gateway and IPC listeners until ctx ends or Quit is called.
func (a *App) Run(ctx context.Context) error {
	servers := []struct {
		name    string
		addr    string
		handler http.Handler
	}{
		{"gateway", a.cfg.GatewayAddr, a.gateway},
		{"ipc", a.cfg.IPCAddr, a.ipc.Handler()},
	}

	errCh := make(chan error, len(servers))
	running := make([]*http.Server, 0, len(servers))

	for _, s := range servers {
		ln, err := net.Listen("tcp", s.addr)
		if err != nil {
			for _, srv := range running {
				_ = srv.Close()
			}
			return fmt.Errorf("listen %s on %s: %w", s.name, s.addr, err)
		}
		srv := &http.Server{
			Handler:           s.handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		running = append(running, srv)

		a.log.Info().Str("listener", s.name).Str("addr", ln.Addr().String()).Msg("Kiosk listener started")
		go func(name string) {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("%s server: %w", name, err)
			}
		}(s.name)
	}

	a.log.Info().
		Str("mode", string(a.decision.Mode)).
		Str("exam_id", a.decision.ExamID).
		Str("start_url", a.window.StartURL).
		Msg("Kiosk ready")

	var runErr error
	select {
	case <-ctx.Done():
	case <-a.done:
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range running {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Warn().Err(err).Msg("Kiosk listener shutdown failed")
		}
	}
	return runErr
}
