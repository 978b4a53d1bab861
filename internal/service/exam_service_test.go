package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-seb/internal/model"
	"github.com/stemsi/exstem-seb/internal/pool"
	"github.com/stemsi/exstem-seb/internal/seb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type examFixture struct {
	exams     *fakeExamStore
	attempts  *fakeAttemptStore
	orders    *fakeOrderStore
	questions *fakeQuestionStore
	svc       *ExamService
}

func newExamFixture(t *testing.T, pin bool, exams ...*model.Exam) *examFixture {
	t.Helper()
	f := &examFixture{
		exams:     newFakeExamStore(exams...),
		attempts:  newFakeAttemptStore(),
		orders:    newFakeOrderStore(),
		questions: &fakeQuestionStore{banks: map[uuid.UUID][]model.QuestionBank{}},
	}
	for _, e := range exams {
		f.questions.banks[e.ID] = makeBanks(4, 4)
	}
	draw := NewQuestionDraw(f.questions, f.orders, pin, nopLog)
	gate := NewAttestationGate(nil, false, nopLog)
	f.svc = NewExamService(f.exams, f.attempts, draw, gate, "https://web.example.com/", nopLog)
	return f
}

func questionIDs(qs []model.QuestionForStudent) []uuid.UUID {
	ids := make([]uuid.UUID, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}

func TestExamService_GetQuestionsFullPool(t *testing.T) {
	exam := plainExam()
	f := newExamFixture(t, true, exam)

	qs, err := f.svc.GetQuestions(context.Background(), exam.ID, 1, AttestationRequest{})
	require.NoError(t, err)

	assert.Equal(t, pool.IDs(pool.Flatten(f.questions.banks[exam.ID])), questionIDs(qs))

	raw, err := json.Marshal(qs)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correct_answer")
}

func TestExamService_GetQuestionsPinnedForAttempt(t *testing.T) {
	exam := plainExam()
	exam.RandomQuestionCount = intPtr(3)
	f := newExamFixture(t, true, exam)
	attempt := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, UserID: 8, Status: model.AttemptStatusInProgress}
	f.attempts.put(attempt)
	ctx := context.Background()

	first, err := f.svc.GetQuestions(ctx, exam.ID, 8, AttestationRequest{})
	require.NoError(t, err)
	require.Len(t, first, 3)

	for i := 0; i < 5; i++ {
		again, err := f.svc.GetQuestions(ctx, exam.ID, 8, AttestationRequest{})
		require.NoError(t, err)
		assert.Equal(t, questionIDs(first), questionIDs(again))
	}
	assert.Equal(t, 1, f.orders.pins)
}

func TestExamService_GetQuestionsHealsFromStoredOrder(t *testing.T) {
	exam := plainExam()
	exam.RandomQuestionCount = intPtr(2)
	f := newExamFixture(t, true, exam)
	flat := pool.Flatten(f.questions.banks[exam.ID])
	stored := []uuid.UUID{flat[5].ID, flat[1].ID}
	attempt := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, UserID: 8, QuestionOrder: stored}
	f.attempts.put(attempt)

	qs, err := f.svc.GetQuestions(context.Background(), exam.ID, 8, AttestationRequest{})
	require.NoError(t, err)

	assert.Equal(t, stored, questionIDs(qs))
	assert.Equal(t, stored, f.orders.orders[attempt.ID])
	assert.Zero(t, f.orders.pins)
}

func TestExamService_GetQuestionsCacheOutage(t *testing.T) {
	exam := plainExam()
	exam.RandomQuestionCount = intPtr(3)
	f := newExamFixture(t, true, exam)
	f.attempts.put(&model.Attempt{ID: uuid.New(), ExamID: exam.ID, UserID: 8, Status: model.AttemptStatusInProgress})

	draw := NewQuestionDraw(f.questions, failingOrderStore{err: errors.New("redis down")}, true, nopLog)
	svc := NewExamService(f.exams, f.attempts, draw, NewAttestationGate(nil, false, nopLog), "https://web.example.com/", nopLog)

	qs, err := svc.GetQuestions(context.Background(), exam.ID, 8, AttestationRequest{})
	require.NoError(t, err)
	assert.Len(t, qs, 3)
}

// lateOrderStore misses on read but loses the pin to an order written meanwhile.
type lateOrderStore struct {
	*fakeOrderStore
	winner []uuid.UUID
}

func (s *lateOrderStore) Get(context.Context, uuid.UUID) ([]uuid.UUID, error) { return nil, nil }

func (s *lateOrderStore) Pin(ctx context.Context, id uuid.UUID, _ []uuid.UUID) ([]uuid.UUID, error) {
	return s.fakeOrderStore.Pin(ctx, id, s.winner)
}

func TestExamService_GetQuestionsConcurrentPinKeepsFirst(t *testing.T) {
	exam := plainExam()
	exam.RandomQuestionCount = intPtr(2)
	f := newExamFixture(t, true, exam)
	attempt := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, UserID: 8, Status: model.AttemptStatusInProgress}
	f.attempts.put(attempt)

	flat := pool.Flatten(f.questions.banks[exam.ID])
	winner := []uuid.UUID{flat[7].ID, flat[2].ID}
	orders := &lateOrderStore{fakeOrderStore: newFakeOrderStore(), winner: winner}
	draw := NewQuestionDraw(f.questions, orders, true, nopLog)
	svc := NewExamService(f.exams, f.attempts, draw, NewAttestationGate(nil, false, nopLog), "https://web.example.com/", nopLog)

	for i := 0; i < 3; i++ {
		qs, err := svc.GetQuestions(context.Background(), exam.ID, 8, AttestationRequest{})
		require.NoError(t, err)
		assert.Equal(t, winner, questionIDs(qs))
	}
	assert.Equal(t, 1, orders.pins)
}

func TestExamService_GetQuestionsUnpinnedRedraws(t *testing.T) {
	exam := plainExam()
	exam.RandomQuestionCount = intPtr(3)
	f := newExamFixture(t, false, exam)
	f.attempts.put(&model.Attempt{ID: uuid.New(), ExamID: exam.ID, UserID: 8})

	qs, err := f.svc.GetQuestions(context.Background(), exam.ID, 8, AttestationRequest{})
	require.NoError(t, err)
	assert.Len(t, qs, 3)
	assert.Zero(t, f.orders.pins)
}

func TestExamService_GetQuestionsAttestation(t *testing.T) {
	exam := plainExam()
	exam.SEBEnabled = true
	f := newExamFixture(t, true, exam)

	_, err := f.svc.GetQuestions(context.Background(), exam.ID, 1, AttestationRequest{UserAgent: "Firefox"})
	assert.ErrorIs(t, err, ErrSEBRequired)

	_, err = f.svc.GetQuestions(context.Background(), uuid.New(), 1, AttestationRequest{})
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestExamService_SEBConfig(t *testing.T) {
	exam := plainExam()
	f := newExamFixture(t, true, exam)

	doc, err := f.svc.SEBConfig(context.Background(), exam.ID, "win")
	require.NoError(t, err)
	assert.Contains(t, string(doc), "<string>https://web.example.com/seb-exam/"+exam.ID.String()+"</string>")

	_, err = f.svc.SEBConfig(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestExamService_SEBConfigInfo(t *testing.T) {
	exam := plainExam()
	exam.SEBEnabled = true
	f := newExamFixture(t, true, exam)

	info, err := f.svc.SEBConfigInfo(context.Background(), exam.ID)
	require.NoError(t, err)
	assert.Equal(t, &model.SEBConfigInfo{
		ExamID:        exam.ID,
		SEBEnabled:    true,
		StartURL:      "https://web.example.com/seb-exam/" + exam.ID.String(),
		ConfigVersion: seb.ConfigVersion,
	}, info)
}

func TestExamService_EnsureBrowserKey(t *testing.T) {
	exam := plainExam()
	f := newExamFixture(t, true, exam)
	ctx := context.Background()

	first, err := f.svc.EnsureBrowserKey(ctx, exam.ID, false)
	require.NoError(t, err)
	assert.Len(t, first.SEBBrowserKey, 32)

	again, err := f.svc.EnsureBrowserKey(ctx, exam.ID, false)
	require.NoError(t, err)
	assert.Equal(t, first.SEBBrowserKey, again.SEBBrowserKey)
	assert.False(t, again.Rotated)

	time.Sleep(time.Microsecond)
	rotated, err := f.svc.EnsureBrowserKey(ctx, exam.ID, true)
	require.NoError(t, err)
	assert.True(t, rotated.Rotated)
	assert.NotEqual(t, first.SEBBrowserKey, rotated.SEBBrowserKey)

	_, err = f.svc.EnsureBrowserKey(ctx, uuid.New(), false)
	assert.ErrorIs(t, err, ErrExamNotFound)
}
