package kiosk

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// EmergencyQuitAccelerator always exits the kiosk, even when locked.
const EmergencyQuitAccelerator = "CommandOrControl+Alt+Shift+Q"

// BlockedAccelerators are swallowed in production-locked mode.
var BlockedAccelerators = []string{
	"Alt+Tab",
	"CommandOrControl+Tab",
	"Alt+F4",
	"CommandOrControl+W",
	"CommandOrControl+Q",
	"CommandOrControl+Shift+I",
	"F12",
	"F11",
	"CommandOrControl+Shift+F",
	"PrintScreen",
	"Super",
	"Meta",
}

var (
	ErrShortcutEmpty      = errors.New("empty accelerator")
	ErrShortcutRegistered = errors.New("accelerator already registered")
	ErrShortcutUnknown    = errors.New("accelerator not registered")
)

// ShortcutRegistry maps accelerators to callbacks. The host forwards key
// presses through Trigger; callbacks run in their own goroutine.
type ShortcutRegistry struct {
	mu       sync.RWMutex
	handlers map[string]func()
}

func NewShortcutRegistry() *ShortcutRegistry {
	return &ShortcutRegistry{handlers: make(map[string]func())}
}

func normalizeAccelerator(accel string) string {
	return strings.ToLower(strings.TrimSpace(accel))
}

// Register binds accel to fn.
func (r *ShortcutRegistry) Register(accel string, fn func()) error {
	key := normalizeAccelerator(accel)
	if key == "" {
		return ErrShortcutEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[key]; ok {
		return ErrShortcutRegistered
	}
	r.handlers[key] = fn
	return nil
}

// Trigger fires the callback for accel without waiting for it.
func (r *ShortcutRegistry) Trigger(accel string) error {
	r.mu.RLock()
	fn, ok := r.handlers[normalizeAccelerator(accel)]
	r.mu.RUnlock()
	if !ok {
		return ErrShortcutUnknown
	}
	if fn != nil {
		go fn()
	}
	return nil
}

// List returns the registered accelerators in sorted, normalized form.
func (r *ShortcutRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RegisterShortcuts installs the emergency quit and, in production-locked
// mode, no-op interceptors. Failures are logged and skipped.
func RegisterShortcuts(reg *ShortcutRegistry, mode Mode, state *AppState, quit func(), log zerolog.Logger) {
	emergency := func() {
		log.Warn().Msg("Emergency quit triggered")
		state.DisableSEB()
		quit()
	}
	if err := reg.Register(EmergencyQuitAccelerator, emergency); err != nil {
		log.Warn().Err(err).Str("accelerator", EmergencyQuitAccelerator).Msg("Shortcut registration failed")
	}

	if mode != ModeLockedProd {
		return
	}
	for _, accel := range BlockedAccelerators {
		if err := reg.Register(accel, func() {}); err != nil {
			log.Warn().Err(err).Str("accelerator", accel).Msg("Shortcut registration failed")
		}
	}
}
