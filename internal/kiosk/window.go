package kiosk

// WindowOptions describes how the host constructs the browser window.
// They are fixed at construction and never changed afterwards.
type WindowOptions struct {
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Frame       bool   `json:"frame"`
	Fullscreen  bool   `json:"fullscreen"`
	Kiosk       bool   `json:"kiosk"`
	AlwaysOnTop bool   `json:"always_on_top"`
	Closable    bool   `json:"closable"`
	Resizable   bool   `json:"resizable"`
	StartURL    string `json:"start_url"`
}

// NewWindowOptions returns locked or normal window options. gatewayURL is the
// loopback origin every page is loaded through.
func NewWindowOptions(d LaunchDecision, gatewayURL string) WindowOptions {
	if d.Locked() {
		return WindowOptions{
			Frame:       false,
			Fullscreen:  true,
			Kiosk:       true,
			AlwaysOnTop: true,
			Closable:    false,
			Resizable:   false,
			StartURL:    gatewayURL + lockedPathPrefix + d.ExamID,
		}
	}
	return WindowOptions{
		Width:     1280,
		Height:    800,
		Frame:     true,
		Closable:  true,
		Resizable: true,
		StartURL:  gatewayURL + "/",
	}
}
