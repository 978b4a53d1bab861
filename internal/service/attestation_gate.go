package service

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/model"
	"github.com/stemsi/exstem-seb/internal/seb"
)

// AttestationRequest is the part of an HTTP request attestation inspects.
type AttestationRequest struct {
	Headers   http.Header
	UserAgent string
	Query     url.Values
}

// AttestationGate runs the exam browser check for exams that require it,
// logging and auditing every rejection.
type AttestationGate struct {
	audits      AuditSink
	development bool
	now         func() time.Time
	log         zerolog.Logger
}

// NewAttestationGate creates a new AttestationGate. audits may be nil.
func NewAttestationGate(audits AuditSink, development bool, log zerolog.Logger) *AttestationGate {
	return &AttestationGate{
		audits:      audits,
		development: development,
		now:         time.Now,
		log:         log.With().Str("component", "attestation_gate").Logger(),
	}
}

// Check returns an *AttestationError when the request may not enter exam.
func (g *AttestationGate) Check(ctx context.Context, exam *model.Exam, userID int, req AttestationRequest) error {
	if !exam.SEBEnabled {
		return nil
	}

	key := ""
	if exam.SEBBrowserKey != nil {
		key = *exam.SEBBrowserKey
	}

	res := seb.Validate(seb.Input{
		Headers:     req.Headers,
		UserAgent:   req.UserAgent,
		Query:       req.Query,
		Exam:        seb.ExamConfig{SEBEnabled: true, BrowserKey: key},
		Development: g.development,
	})

	if res.OK {
		if res.DevBypass || res.DevWarning || res.HashMissing {
			g.log.Warn().
				Str("exam_id", exam.ID.String()).
				Int("user_id", userID).
				Str("reason", res.Reason).
				Msg("Exam browser check passed permissively")
		}
		return nil
	}

	hash := res.RequestHash
	if hash == "" {
		hash = "none"
	}

	g.log.Warn().
		Str("exam_id", exam.ID.String()).
		Int("user_id", userID).
		Str("code", res.Code).
		Str("user_agent", req.UserAgent).
		Str("request_hash", hash).
		Msg("Exam browser attestation failed")

	g.audit(ctx, exam.ID, userID, res.Code, req.UserAgent, hash)

	return &AttestationError{Code: res.Code}
}

func (g *AttestationGate) audit(ctx context.Context, examID uuid.UUID, userID int, code, ua, hash string) {
	if g.audits == nil {
		return
	}
	err := g.audits.Enqueue(ctx, model.AttestationAudit{
		ExamID:      examID,
		UserID:      userID,
		Code:        code,
		UserAgent:   ua,
		RequestHash: hash,
		RecordedAt:  g.now().UTC(),
	})
	if err != nil {
		g.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Failed to enqueue attestation audit")
	}
}
