package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-seb/internal/model"
)

// The interfaces below are satisfied by the pgx repositories and the Redis
// caches in package repository. A missing row is reported as pgx.ErrNoRows.

// ExamStore reads exams and writes their browser key.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	SetBrowserKey(ctx context.Context, id uuid.UUID, key string, rotate bool) error
}

// QuestionStore lists the question banks linked to an exam.
type QuestionStore interface {
	ListBanksForExam(ctx context.Context, examID uuid.UUID) ([]model.QuestionBank, error)
}

// AttemptStore persists attempts.
type AttemptStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	GetByExamAndUser(ctx context.Context, examID uuid.UUID, userID int) (*model.Attempt, error)
	Create(ctx context.Context, a *model.Attempt) error
	Submit(ctx context.Context, id uuid.UUID, at time.Time) (*model.Attempt, error)
}

// AnswerStore appends answers.
type AnswerStore interface {
	Create(ctx context.Context, a *model.Answer) error
}

// QuestionOrderStore caches pinned question draws.
type QuestionOrderStore interface {
	Get(ctx context.Context, attemptID uuid.UUID) ([]uuid.UUID, error)
	Set(ctx context.Context, attemptID uuid.UUID, ids []uuid.UUID) error
	// Pin keeps the first order stored for an attempt and returns it.
	Pin(ctx context.Context, attemptID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
}

// AuditSink receives rejected attestation checks.
type AuditSink interface {
	Enqueue(ctx context.Context, a model.AttestationAudit) error
}
