package kiosk

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Mode is the launch mode, fixed before the window is built.
type Mode string

const (
	ModeNormal     Mode = "normal"
	ModeLockedDev  Mode = "seb_locked_dev"
	ModeLockedProd Mode = "seb_locked_prod"
)

// AppState is the kiosk's shared mutable state. IPC handlers and gateway
// requests read it from separate goroutines.
type AppState struct {
	mu           sync.RWMutex
	development  bool
	sebMode      bool
	lockedExamID string
	browserKey   string
	quitHash     []byte
	closeAllowed bool
}

// NewAppState seeds the state from configuration.
func NewAppState(cfg *Config) *AppState {
	return &AppState{
		development: cfg.IsDevelopment(),
		browserKey:  cfg.BrowserKey,
		quitHash:    cfg.QuitPasswordHash,
	}
}

// Development reports whether dev-only actions are available.
func (s *AppState) Development() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.development
}

// SEBEnabled reports whether locked-browser mode is on.
func (s *AppState) SEBEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sebMode
}

// LockedExamID returns the exam the kiosk is locked to, or "".
func (s *AppState) LockedExamID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lockedExamID
}

// IsLocked reports whether the kiosk is locked to an exam.
func (s *AppState) IsLocked() bool {
	return s.LockedExamID() != ""
}

// BrowserKey returns the attestation key sent upstream, possibly "".
func (s *AppState) BrowserKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.browserKey
}

// Mode derives the current launch mode.
func (s *AppState) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case !s.sebMode || s.lockedExamID == "":
		return ModeNormal
	case s.development:
		return ModeLockedDev
	default:
		return ModeLockedProd
	}
}

// LockTo turns SEB mode on and locks navigation to examID.
func (s *AppState) LockTo(examID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sebMode = true
	s.lockedExamID = examID
}

// EnableSEB turns SEB mode on. A non-empty password replaces the quit hash
// and a non-empty key replaces the browser key.
func (s *AppState) EnableSEB(quitPassword, browserKey string) error {
	var hash []byte
	if quitPassword != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(quitPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sebMode = true
	if hash != nil {
		s.quitHash = hash
	}
	if browserKey != "" {
		s.browserKey = browserKey
	}
	return nil
}

// DisableSEB turns SEB mode off and lets the window close.
func (s *AppState) DisableSEB() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sebMode = false
	s.closeAllowed = true
}

// HasQuitPassword reports whether closing the window needs a password.
func (s *AppState) HasQuitPassword() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quitHash) > 0
}

// CheckQuitPassword compares pw against the quit hash. A match also releases
// the close interception.
func (s *AppState) CheckQuitPassword(pw string) bool {
	s.mu.RLock()
	hash := s.quitHash
	s.mu.RUnlock()

	if len(hash) == 0 || bcrypt.CompareHashAndPassword(hash, []byte(pw)) != nil {
		return false
	}

	s.mu.Lock()
	s.closeAllowed = true
	s.mu.Unlock()
	return true
}

// CloseAllowed reports whether a window close request may proceed.
func (s *AppState) CloseAllowed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quitHash) == 0 || s.closeAllowed
}
