package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/model"
)

var nopLog = zerolog.New(io.Discard)

type fakeExamStore struct {
	mu    sync.Mutex
	exams map[uuid.UUID]*model.Exam
}

func newFakeExamStore(exams ...*model.Exam) *fakeExamStore {
	s := &fakeExamStore{exams: map[uuid.UUID]*model.Exam{}}
	for _, e := range exams {
		s.exams[e.ID] = e
	}
	return s
}

func (s *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (s *fakeExamStore) SetBrowserKey(_ context.Context, id uuid.UUID, key string, rotate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exams[id]
	if !ok || (!rotate && e.HasBrowserKey()) {
		return pgx.ErrNoRows
	}
	e.SEBBrowserKey = &key
	return nil
}

type fakeQuestionStore struct {
	banks map[uuid.UUID][]model.QuestionBank
}

func (s *fakeQuestionStore) ListBanksForExam(_ context.Context, examID uuid.UUID) ([]model.QuestionBank, error) {
	return s.banks[examID], nil
}

type fakeAttemptStore struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*model.Attempt
	creates  int
	conflict int
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{byID: map[uuid.UUID]*model.Attempt{}}
}

func (s *fakeAttemptStore) put(a *model.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[a.ID] = a
}

func (s *fakeAttemptStore) GetByID(_ context.Context, id uuid.UUID) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (s *fakeAttemptStore) GetByExamAndUser(_ context.Context, examID uuid.UUID, userID int) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byID {
		if a.ExamID == examID && a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeAttemptStore) Create(_ context.Context, a *model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.ExamID == a.ExamID && existing.UserID == a.UserID {
			s.conflict++
			return pgx.ErrNoRows
		}
	}
	s.creates++
	a.ID = uuid.New()
	cp := *a
	s.byID[a.ID] = &cp
	return nil
}

func (s *fakeAttemptStore) Submit(_ context.Context, id uuid.UUID, at time.Time) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok || a.Status == model.AttemptStatusOMRImported {
		return nil, pgx.ErrNoRows
	}
	a.Status = model.AttemptStatusSubmitted
	a.SubmittedAt = &at
	cp := *a
	return &cp, nil
}

type fakeAnswerStore struct {
	mu      sync.Mutex
	answers []model.Answer
}

func (s *fakeAnswerStore) Create(_ context.Context, a *model.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	s.answers = append(s.answers, *a)
	return nil
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[uuid.UUID][]uuid.UUID
	pins   int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[uuid.UUID][]uuid.UUID{}}
}

func (s *fakeOrderStore) Get(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id], nil
}

func (s *fakeOrderStore) Set(_ context.Context, id uuid.UUID, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[id] = ids
	return nil
}

func (s *fakeOrderStore) Pin(_ context.Context, id uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.orders[id]; len(existing) > 0 {
		return existing, nil
	}
	s.pins++
	s.orders[id] = ids
	return ids, nil
}

// failingOrderStore behaves like an unreachable Redis.
type failingOrderStore struct{ err error }

func (s failingOrderStore) Get(context.Context, uuid.UUID) ([]uuid.UUID, error) { return nil, s.err }

func (s failingOrderStore) Set(context.Context, uuid.UUID, []uuid.UUID) error { return s.err }

func (s failingOrderStore) Pin(context.Context, uuid.UUID, []uuid.UUID) ([]uuid.UUID, error) {
	return nil, s.err
}

type fakeAuditSink struct {
	mu     sync.Mutex
	audits []model.AttestationAudit
}

func (s *fakeAuditSink) Enqueue(_ context.Context, a model.AttestationAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, a)
	return nil
}

func makeBanks(sizes ...int) []model.QuestionBank {
	banks := make([]model.QuestionBank, len(sizes))
	for i, n := range sizes {
		banks[i].ID = uuid.New()
		for j := 0; j < n; j++ {
			banks[i].Questions = append(banks[i].Questions, model.Question{
				ID:            uuid.New(),
				QBankID:       banks[i].ID,
				Prompt:        "prompt",
				Type:          model.QuestionTypeMultipleChoice,
				Options:       []byte(`["A","B","C"]`),
				CorrectAnswer: []byte(`"A"`),
				OrderNum:      j,
			})
		}
	}
	return banks
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
