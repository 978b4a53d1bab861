package kiosk

import (
	"net/http"
	"strings"

	"github.com/stemsi/exstem-seb/internal/seb"
)

const (
	// UserAgentSuffix marks requests from a locked kiosk window.
	UserAgentSuffix = " SEB/3.1 ExamKiosk/1.0"

	BrowserKeyHeader  = "X-SEB-Browser-Key"
	KioskClientHeader = "X-Exam-Kiosk-Client"
)

// LockedModeTransport decorates outgoing requests with the exam browser
// signals while SEB mode is on and an exam is locked. Other requests pass
// through untouched.
type LockedModeTransport struct {
	Base  http.RoundTripper
	State *AppState
}

func (t *LockedModeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if !t.State.SEBEnabled() || !t.State.IsLocked() {
		return base.RoundTrip(req)
	}

	out := req.Clone(req.Context())
	ua := out.Header.Get("User-Agent")
	if !strings.Contains(strings.ToLower(ua), "seb") {
		out.Header.Set("User-Agent", strings.TrimSpace(ua+UserAgentSuffix))
	}
	if key := t.State.BrowserKey(); key != "" {
		out.Header.Set(BrowserKeyHeader, key)
		out.Header.Set(seb.CanonicalHashHeader, key)
	}
	out.Header.Set(KioskClientHeader, "1")

	return base.RoundTrip(out)
}
