package model

import (
	"time"

	"github.com/google/uuid"
)

// AttestationAudit records one rejected attestation check.
type AttestationAudit struct {
	ExamID      uuid.UUID `json:"exam_id"`
	UserID      int       `json:"user_id"`
	Code        string    `json:"code"`
	UserAgent   string    `json:"user_agent"`
	RequestHash string    `json:"request_hash"`
	RecordedAt  time.Time `json:"recorded_at"`
}
