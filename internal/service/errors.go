package service

import (
	"errors"
	"time"
)

// Domain errors. Handlers map these to HTTP codes with errors.Is.
var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAttemptForbidden = errors.New("attempt belongs to another user")
	ErrAttemptExists    = errors.New("attempt already finished")
	ErrExamNotStarted   = errors.New("exam has not started")
	ErrExamEnded        = errors.New("exam has ended")
	ErrSEBRequired      = errors.New("exam browser attestation failed")
)

// WindowError reports a request outside the exam's access window.
// It unwraps to ErrExamNotStarted or ErrExamEnded.
type WindowError struct {
	Err     error
	StartAt *time.Time
	EndAt   *time.Time
}

func (e *WindowError) Error() string { return e.Err.Error() }

func (e *WindowError) Unwrap() error { return e.Err }

// AttestationError carries the validator's failure code. It unwraps to
// ErrSEBRequired.
type AttestationError struct {
	Code string
}

func (e *AttestationError) Error() string { return ErrSEBRequired.Error() + ": " + e.Code }

func (e *AttestationError) Unwrap() error { return ErrSEBRequired }

// CheckAccessWindow enforces the exam's optional start and end bounds.
// Both bounds are inclusive.
func CheckAccessWindow(startAt, endAt *time.Time, now time.Time) error {
	if startAt != nil && now.Before(*startAt) {
		return &WindowError{Err: ErrExamNotStarted, StartAt: startAt, EndAt: endAt}
	}
	if endAt != nil && now.After(*endAt) {
		return &WindowError{Err: ErrExamEnded, StartAt: startAt, EndAt: endAt}
	}
	return nil
}
