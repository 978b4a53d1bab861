package kiosk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	ws "github.com/stemsi/exstem-seb/internal/websocket"
)

// ErrDevelopmentOnly is returned for actions disabled in production.
var ErrDevelopmentOnly = errors.New("action is only available in development")

// HandlerFunc serves one IPC action.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (interface{}, error)

// PublicConfig is the secret-free view returned by config:get.
type PublicConfig struct {
	Env          string `json:"env"`
	Mode         Mode   `json:"mode"`
	WebURL       string `json:"web_url"`
	APIURL       string `json:"api_url"`
	GatewayURL   string `json:"gateway_url"`
	SEBEnabled   bool   `json:"seb_enabled"`
	LockedExamID string `json:"locked_exam_id,omitempty"`
	HasQuitPass  bool   `json:"has_quit_password"`
}

// Deps is everything the IPC actions read or change.
type Deps struct {
	Config     *Config
	State      *AppState
	Tokens     *FileTokenStore
	Navigation *NavigationPolicy
	Shortcuts  *ShortcutRegistry
	Window     WindowOptions
	GatewayURL string
	// Quit ends the process with a normal exit.
	Quit func()
}

// Dispatcher routes IPC requests to one handler per action.
type Dispatcher struct {
	deps     Deps
	handlers map[ws.Action]HandlerFunc
	log      zerolog.Logger
}

func NewDispatcher(deps Deps, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		deps: deps,
		log:  log.With().Str("component", "kiosk_ipc").Logger(),
	}
	d.handlers = map[ws.Action]HandlerFunc{
		ws.ActionTokenGet:        d.tokenGet,
		ws.ActionTokenSet:        d.tokenSet,
		ws.ActionTokenClear:      d.tokenClear,
		ws.ActionTokenInject:     d.tokenInject,
		ws.ActionConfigGet:       d.configGet,
		ws.ActionExamLockedID:    d.examLockedID,
		ws.ActionExamIsLocked:    d.examIsLocked,
		ws.ActionSEBEnable:       d.sebEnable,
		ws.ActionQuitWithPass:    d.quitWithPassword,
		ws.ActionForceQuit:       d.forceQuit,
		ws.ActionWindowOptions:   d.windowOptions,
		ws.ActionWindowClose:     d.windowClose,
		ws.ActionWindowOpen:      d.windowOpen,
		ws.ActionNavCheck:        d.navCheck,
		ws.ActionShortcutsList:   d.shortcutsList,
		ws.ActionShortcutTrigger: d.shortcutTrigger,
		ws.ActionPing:            d.ping,
	}
	return d
}

// Dispatch runs req and builds its single reply.
func (d *Dispatcher) Dispatch(ctx context.Context, req ws.Request) ws.Reply {
	h, ok := d.handlers[req.Action]
	if !ok {
		return ws.Reply{ID: req.ID, Event: ws.EventError, Error: fmt.Sprintf("unknown action %q", req.Action)}
	}

	data, err := h(ctx, req.Payload)
	if err != nil {
		d.log.Debug().Err(err).Str("action", string(req.Action)).Msg("IPC action failed")
		return ws.Reply{ID: req.ID, Event: ws.EventError, Error: err.Error()}
	}
	return ws.Reply{ID: req.ID, Event: ws.EventSuccess, Data: data}
}

func decodePayload(payload json.RawMessage, dst interface{}) error {
	if len(payload) == 0 {
		return errors.New("payload required")
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// ─── 1. Token ───────────────────────────────────────────────────────

func (d *Dispatcher) tokenGet(context.Context, json.RawMessage) (interface{}, error) {
	token, err := d.deps.Tokens.Get()
	if err != nil {
		return nil, err
	}
	return ws.TokenPayload{Token: token}, nil
}

func (d *Dispatcher) tokenSet(_ context.Context, payload json.RawMessage) (interface{}, error) {
	var p ws.TokenPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	if err := d.deps.Tokens.Set(p.Token); err != nil {
		return nil, err
	}
	return ws.OKResponse{OK: true}, nil
}

func (d *Dispatcher) tokenClear(context.Context, json.RawMessage) (interface{}, error) {
	if err := d.deps.Tokens.Clear(); err != nil {
		return nil, err
	}
	return ws.OKResponse{OK: true}, nil
}

// tokenInject hands the stored token to the page only outside a locked exam.
func (d *Dispatcher) tokenInject(context.Context, json.RawMessage) (interface{}, error) {
	if d.deps.State.IsLocked() {
		return ws.TokenPayload{}, nil
	}
	token, err := d.deps.Tokens.Get()
	if err != nil {
		d.log.Warn().Err(err).Msg("Token file unreadable, skipping injection")
		return ws.TokenPayload{}, nil
	}
	return ws.TokenPayload{Token: token}, nil
}

// ─── 2. Config & exam lock ──────────────────────────────────────────

func (d *Dispatcher) configGet(context.Context, json.RawMessage) (interface{}, error) {
	cfg := d.deps.Config
	return PublicConfig{
		Env:          cfg.Env,
		Mode:         d.deps.State.Mode(),
		WebURL:       cfg.WebURL.String(),
		APIURL:       cfg.APIURL.String(),
		GatewayURL:   d.deps.GatewayURL,
		SEBEnabled:   d.deps.State.SEBEnabled(),
		LockedExamID: d.deps.State.LockedExamID(),
		HasQuitPass:  d.deps.State.HasQuitPassword(),
	}, nil
}

func (d *Dispatcher) examLockedID(context.Context, json.RawMessage) (interface{}, error) {
	return map[string]string{"exam_id": d.deps.State.LockedExamID()}, nil
}

func (d *Dispatcher) examIsLocked(context.Context, json.RawMessage) (interface{}, error) {
	return map[string]bool{"locked": d.deps.State.IsLocked()}, nil
}

func (d *Dispatcher) sebEnable(_ context.Context, payload json.RawMessage) (interface{}, error) {
	var p ws.SEBEnablePayload
	if len(payload) > 0 {
		if err := decodePayload(payload, &p); err != nil {
			return nil, err
		}
	}
	if err := d.deps.State.EnableSEB(p.QuitPassword, p.BrowserKey); err != nil {
		return nil, err
	}
	d.log.Info().Bool("quit_password", p.QuitPassword != "").Bool("browser_key", p.BrowserKey != "").Msg("SEB mode enabled")
	return ws.OKResponse{OK: true}, nil
}

// ─── 3. Quit ────────────────────────────────────────────────────────

func (d *Dispatcher) quitWithPassword(_ context.Context, payload json.RawMessage) (interface{}, error) {
	var p ws.PasswordPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	if !d.deps.State.CheckQuitPassword(p.Password) {
		d.log.Warn().Msg("Quit password rejected")
		return ws.OKResponse{OK: false}, nil
	}
	d.log.Info().Msg("Quit password accepted")
	d.quit()
	return ws.OKResponse{OK: true}, nil
}

func (d *Dispatcher) forceQuit(context.Context, json.RawMessage) (interface{}, error) {
	if !d.deps.State.Development() {
		return nil, ErrDevelopmentOnly
	}
	d.deps.State.DisableSEB()
	d.quit()
	return ws.OKResponse{OK: true}, nil
}

func (d *Dispatcher) quit() {
	if d.deps.Quit != nil {
		d.deps.Quit()
	}
}

// ─── 4. Window & navigation ─────────────────────────────────────────

func (d *Dispatcher) windowOptions(context.Context, json.RawMessage) (interface{}, error) {
	return d.deps.Window, nil
}

// windowClose is the host's close request; it is denied while a quit
// password guards the window.
func (d *Dispatcher) windowClose(context.Context, json.RawMessage) (interface{}, error) {
	if !d.deps.State.CloseAllowed() {
		return ws.AllowedResponse{Allowed: false}, nil
	}
	d.quit()
	return ws.AllowedResponse{Allowed: true}, nil
}

func (d *Dispatcher) windowOpen(_ context.Context, payload json.RawMessage) (interface{}, error) {
	var p ws.URLPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	return ws.AllowedResponse{Allowed: d.deps.Navigation.AllowPopup(p.URL)}, nil
}

func (d *Dispatcher) navCheck(_ context.Context, payload json.RawMessage) (interface{}, error) {
	var p ws.URLPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	allowed := d.deps.Navigation.Allow(p.URL)
	if !allowed {
		d.log.Info().Str("url", p.URL).Msg("Navigation blocked")
	}
	return ws.AllowedResponse{Allowed: allowed}, nil
}

// ─── 5. Shortcuts ───────────────────────────────────────────────────

func (d *Dispatcher) shortcutsList(context.Context, json.RawMessage) (interface{}, error) {
	return d.deps.Shortcuts.List(), nil
}

func (d *Dispatcher) shortcutTrigger(_ context.Context, payload json.RawMessage) (interface{}, error) {
	var p ws.AcceleratorPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	if err := d.deps.Shortcuts.Trigger(p.Accelerator); err != nil {
		return nil, err
	}
	return ws.OKResponse{OK: true}, nil
}

func (d *Dispatcher) ping(context.Context, json.RawMessage) (interface{}, error) {
	return "pong", nil
}
