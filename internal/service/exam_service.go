package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/model"
	"github.com/stemsi/exstem-seb/internal/pool"
	"github.com/stemsi/exstem-seb/internal/seb"
)

// ExamService serves exam-level reads for the exam-taking flow: the question
// set and the locked browser configuration.
type ExamService struct {
	exams      ExamStore
	attempts   AttemptStore
	draw       *QuestionDraw
	gate       *AttestationGate
	webBaseURL string
	log        zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	exams ExamStore,
	attempts AttemptStore,
	draw *QuestionDraw,
	gate *AttestationGate,
	webBaseURL string,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		exams:      exams,
		attempts:   attempts,
		draw:       draw,
		gate:       gate,
		webBaseURL: webBaseURL,
		log:        log.With().Str("component", "exam_service").Logger(),
	}
}

func (s *ExamService) getExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

// GetQuestions returns the student-safe question set. With pinning enabled a
// caller who has an attempt always sees the same subset in the same order.
func (s *ExamService) GetQuestions(ctx context.Context, examID uuid.UUID, userID int, req AttestationRequest) ([]model.QuestionForStudent, error) {
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Check(ctx, exam, userID, req); err != nil {
		return nil, err
	}

	var qs []model.Question
	if s.draw.Pinning() {
		attempt, err := s.attempts.GetByExamAndUser(ctx, examID, userID)
		switch {
		case err == nil:
			qs, err = s.draw.ForAttempt(ctx, exam, attempt)
			if err != nil {
				return nil, err
			}
			return pool.Project(qs), nil
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("get attempt: %w", err)
		}
	}

	qs, err = s.draw.Fresh(ctx, exam)
	if err != nil {
		return nil, err
	}
	return pool.Project(qs), nil
}

// SEBConfig renders the locked browser configuration for examID.
func (s *ExamService) SEBConfig(ctx context.Context, examID uuid.UUID, platform string) ([]byte, error) {
	if _, err := s.getExam(ctx, examID); err != nil {
		return nil, err
	}
	return seb.BuildLockedBrowserConfig(seb.ConfigOptions{
		StartURL: seb.ExamStartURL(s.webBaseURL, examID.String()),
		Platform: platform,
	}), nil
}

// SEBConfigInfo previews the configuration without the document itself.
func (s *ExamService) SEBConfigInfo(ctx context.Context, examID uuid.UUID) (*model.SEBConfigInfo, error) {
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	return &model.SEBConfigInfo{
		ExamID:        exam.ID,
		SEBEnabled:    exam.SEBEnabled,
		StartURL:      seb.ExamStartURL(s.webBaseURL, exam.ID.String()),
		ConfigVersion: seb.ConfigVersion,
		HasBrowserKey: exam.HasBrowserKey(),
	}, nil
}

// EnsureBrowserKey generates and stores a browser key for examID. An existing
// key is returned unchanged unless rotate is set.
func (s *ExamService) EnsureBrowserKey(ctx context.Context, examID uuid.UUID, rotate bool) (*model.BrowserKeyResponse, error) {
	key := seb.GenerateBrowserKey(examID.String())

	err := s.exams.SetBrowserKey(ctx, examID, key, rotate)
	if err == nil {
		s.log.Info().Str("exam_id", examID.String()).Bool("rotate", rotate).Msg("Browser key stored")
		return &model.BrowserKeyResponse{ExamID: examID, SEBBrowserKey: key, Rotated: rotate}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("set browser key: %w", err)
	}

	// Either the exam is missing or it already has a key.
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !exam.HasBrowserKey() {
		return nil, fmt.Errorf("browser key not stored for exam %s", examID)
	}
	return &model.BrowserKeyResponse{ExamID: examID, SEBBrowserKey: *exam.SEBBrowserKey}, nil
}
