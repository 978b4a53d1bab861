package kiosk

import (
	"net/url"
	"strings"
)

// NavigationPolicy decides which URLs the window may load.
type NavigationPolicy struct {
	state *AppState
	hosts map[string]struct{}
}

// NewNavigationPolicy allows loopback hosts plus the hostnames of origins.
func NewNavigationPolicy(state *AppState, origins ...*url.URL) *NavigationPolicy {
	hosts := map[string]struct{}{
		"localhost": {},
		"127.0.0.1": {},
		"::1":       {},
	}
	for _, o := range origins {
		if o != nil && o.Hostname() != "" {
			hosts[strings.ToLower(o.Hostname())] = struct{}{}
		}
	}
	return &NavigationPolicy{state: state, hosts: hosts}
}

// Allow reports whether rawURL may be navigated to. While locked to an exam
// only that exam's page and API calls are reachable.
func (p *NavigationPolicy) Allow(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if _, ok := p.hosts[strings.ToLower(u.Hostname())]; !ok {
		return false
	}

	examID := p.state.LockedExamID()
	if examID == "" {
		return true
	}

	examPath := lockedPathPrefix + examID
	path := u.EscapedPath()
	return path == examPath ||
		strings.HasPrefix(path, examPath+"/") ||
		strings.HasPrefix(path, "/api/")
}

// AllowPopup reports whether a new window may open for rawURL. Popups are
// blocked outright in SEB mode.
func (p *NavigationPolicy) AllowPopup(rawURL string) bool {
	if p.state.SEBEnabled() {
		return false
	}
	return p.Allow(rawURL)
}
