package websocket

import "encoding/json"

// ─── Actions (Host → Kiosk) ─────────────────────────────────────────

type Action string

const (
	ActionTokenGet        Action = "token:get"
	ActionTokenSet        Action = "token:set"
	ActionTokenClear      Action = "token:clear"
	ActionTokenInject     Action = "token:inject"
	ActionConfigGet       Action = "config:get"
	ActionExamLockedID    Action = "exam:locked-id"
	ActionExamIsLocked    Action = "exam:is-locked"
	ActionSEBEnable       Action = "seb:enable"
	ActionQuitWithPass    Action = "app:quit-with-password"
	ActionForceQuit       Action = "app:force-quit"
	ActionWindowOptions   Action = "window:options"
	ActionWindowClose     Action = "window:close"
	ActionWindowOpen      Action = "window:open"
	ActionNavCheck        Action = "nav:check"
	ActionShortcutsList   Action = "shortcuts:list"
	ActionShortcutTrigger Action = "shortcuts:trigger"
	ActionPing            Action = "ping"
)

// Request is one IPC call. ID is echoed back on the reply.
type Request struct {
	ID      string          `json:"id"`
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ─── Events (Kiosk → Host) ──────────────────────────────────────────

type Event string

const (
	EventSuccess Event = "success"
	EventError   Event = "error"
)

// Reply answers exactly one Request.
type Reply struct {
	ID    string      `json:"id"`
	Event Event       `json:"event"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// ─── Payloads ───────────────────────────────────────────────────────

type TokenPayload struct {
	Token string `json:"token"`
}

type SEBEnablePayload struct {
	QuitPassword string `json:"quit_password,omitempty"`
	BrowserKey   string `json:"browser_key,omitempty"`
}

type PasswordPayload struct {
	Password string `json:"password"`
}

type URLPayload struct {
	URL string `json:"url"`
}

type AcceleratorPayload struct {
	Accelerator string `json:"accelerator"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type AllowedResponse struct {
	Allowed bool `json:"allowed"`
}
