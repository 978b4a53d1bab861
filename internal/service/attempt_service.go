package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/model"
)

// AttemptService governs starting, answering and submitting exam attempts.
type AttemptService struct {
	exams    ExamStore
	attempts AttemptStore
	answers  AnswerStore
	draw     *QuestionDraw
	gate     *AttestationGate
	now      func() time.Time
	log      zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	exams ExamStore,
	attempts AttemptStore,
	answers AnswerStore,
	draw *QuestionDraw,
	gate *AttestationGate,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		exams:    exams,
		attempts: attempts,
		answers:  answers,
		draw:     draw,
		gate:     gate,
		now:      time.Now,
		log:      log.With().Str("component", "attempt_service").Logger(),
	}
}

// StartResult is the outcome of Start. Created distinguishes a new attempt
// from a resumed one.
type StartResult struct {
	Attempt *model.Attempt
	Created bool
}

// Start creates or resumes the caller's attempt for examID. Checks run in
// order: exam exists, access window, exam browser attestation, then the
// single-attempt rule.
func (s *AttemptService) Start(ctx context.Context, examID uuid.UUID, userID int, req AttestationRequest) (*StartResult, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	now := s.now()
	if err := CheckAccessWindow(exam.StartAt, exam.EndAt, now); err != nil {
		return nil, err
	}

	if err := s.gate.Check(ctx, exam, userID, req); err != nil {
		return nil, err
	}

	existing, err := s.attempts.GetByExamAndUser(ctx, examID, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing attempt: %w", err)
	}
	if existing != nil {
		return resume(existing)
	}

	attempt := &model.Attempt{
		ExamID:    examID,
		UserID:    userID,
		Status:    model.AttemptStatusInProgress,
		StartedAt: now,
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the insert race; the winner's row is authoritative.
			winner, fetchErr := s.attempts.GetByExamAndUser(ctx, examID, userID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent start detected, but fetch failed: %w", fetchErr)
			}
			return resume(winner)
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	if err := s.draw.Pin(ctx, exam, attempt); err != nil {
		// The first question load pins lazily instead.
		s.log.Warn().Err(err).Str("attempt_id", attempt.ID.String()).Msg("Failed to pin question draw")
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("user_id", userID).
		Str("attempt_id", attempt.ID.String()).
		Msg("Attempt started")

	return &StartResult{Attempt: attempt, Created: true}, nil
}

func resume(a *model.Attempt) (*StartResult, error) {
	if a.Status.IsTerminal() {
		return nil, ErrAttemptExists
	}
	return &StartResult{Attempt: a}, nil
}

// RecordAnswer appends an answer to the caller's attempt. The question ID is
// not checked against the exam and repeated answers are all kept.
func (s *AttemptService) RecordAnswer(ctx context.Context, attemptID uuid.UUID, userID int, questionID uuid.UUID, payload []byte) (*model.Answer, error) {
	if _, err := s.ownedAttempt(ctx, attemptID, userID); err != nil {
		return nil, err
	}

	answer := &model.Answer{
		AttemptID:  attemptID,
		QuestionID: questionID,
		Payload:    payload,
	}
	if err := s.answers.Create(ctx, answer); err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	return answer, nil
}

// Submit marks the caller's attempt submitted. Submitting again rewrites the
// status and timestamp rather than failing. OMR-imported attempts are final.
func (s *AttemptService) Submit(ctx context.Context, attemptID uuid.UUID, userID int) (*model.Attempt, error) {
	current, err := s.ownedAttempt(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}
	if current.Status == model.AttemptStatusOMRImported {
		return nil, ErrAttemptExists
	}

	attempt, err := s.attempts.Submit(ctx, attemptID, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Imported between the read and the update.
			return nil, ErrAttemptExists
		}
		return nil, fmt.Errorf("submit attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attemptID.String()).
		Int("user_id", userID).
		Msg("Attempt submitted")

	return attempt, nil
}

func (s *AttemptService) ownedAttempt(ctx context.Context, attemptID uuid.UUID, userID int) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, ErrAttemptForbidden
	}
	return attempt, nil
}
