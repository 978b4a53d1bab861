package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
	// AttemptStatusOMRImported is set by the paper-sheet import path only.
	AttemptStatusOMRImported AttemptStatus = "omr_imported"
)

// IsTerminal reports whether no further writes are expected for the attempt.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptStatusSubmitted || s == AttemptStatusOMRImported
}

// Attempt is one user's sitting of one exam.
type Attempt struct {
	ID            uuid.UUID     `json:"id"`
	ExamID        uuid.UUID     `json:"exam_id"`
	UserID        int           `json:"user_id"`
	Status        AttemptStatus `json:"status"`
	StartedAt     time.Time     `json:"started_at"`
	SubmittedAt   *time.Time    `json:"submitted_at,omitempty"`
	QuestionOrder []uuid.UUID   `json:"-"`
}

// Answer is an append-only answer record; later rows supersede earlier ones
// for the same question.
type Answer struct {
	ID         uuid.UUID       `json:"id"`
	AttemptID  uuid.UUID       `json:"attempt_id"`
	QuestionID uuid.UUID       `json:"question_id"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SubmitAnswerRequest is the payload for recording an answer.
type SubmitAnswerRequest struct {
	QuestionID string          `json:"question_id" binding:"required,uuid"`
	Answer     json.RawMessage `json:"answer" binding:"json_value"`
}

// SEBConfigQuery is the query string accepted by the config download.
type SEBConfigQuery struct {
	Platform string `form:"platform" binding:"omitempty,oneof=mac win ios"`
}

// RotateKeyQuery is the query string accepted by browser key generation.
type RotateKeyQuery struct {
	Rotate bool `form:"rotate"`
}
