package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/model"
	"github.com/stemsi/exstem-seb/internal/pool"
)

// QuestionDraw produces the question set for an exam and, when pinning is
// enabled, freezes it per attempt.
type QuestionDraw struct {
	questions QuestionStore
	orders    QuestionOrderStore
	pin       bool
	newRand   func() *rand.Rand
	log       zerolog.Logger
}

// NewQuestionDraw creates a new QuestionDraw. orders may be nil when pin is false.
func NewQuestionDraw(questions QuestionStore, orders QuestionOrderStore, pin bool, log zerolog.Logger) *QuestionDraw {
	return &QuestionDraw{
		questions: questions,
		orders:    orders,
		pin:       pin && orders != nil,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		log: log.With().Str("component", "question_draw").Logger(),
	}
}

// Pinning reports whether draws are frozen per attempt.
func (d *QuestionDraw) Pinning() bool { return d.pin }

// Fresh draws a new question set for exam.
func (d *QuestionDraw) Fresh(ctx context.Context, exam *model.Exam) ([]model.Question, error) {
	banks, err := d.questions.ListBanksForExam(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("list question banks: %w", err)
	}
	return pool.Draw(banks, exam.RandomQuestionCount, d.newRand()), nil
}

// Pin draws a question set for a new attempt and stores its order.
func (d *QuestionDraw) Pin(ctx context.Context, exam *model.Exam, attempt *model.Attempt) error {
	if !d.pin {
		return nil
	}
	qs, err := d.Fresh(ctx, exam)
	if err != nil {
		return err
	}
	ids, err := d.orders.Pin(ctx, attempt.ID, pool.IDs(qs))
	if err != nil {
		return err
	}
	attempt.QuestionOrder = ids
	return nil
}

// ForAttempt returns the attempt's pinned question set, pinning one now if
// the attempt predates pinning or the earlier pin failed.
func (d *QuestionDraw) ForAttempt(ctx context.Context, exam *model.Exam, attempt *model.Attempt) ([]model.Question, error) {
	if !d.pin {
		return d.Fresh(ctx, exam)
	}

	banks, err := d.questions.ListBanksForExam(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("list question banks: %w", err)
	}

	ids, err := d.orders.Get(ctx, attempt.ID)
	if err != nil {
		d.log.Warn().Err(err).Str("attempt_id", attempt.ID.String()).Msg("Question order cache read failed")
	}

	if len(ids) == 0 && len(attempt.QuestionOrder) > 0 {
		ids = attempt.QuestionOrder
		if err := d.orders.Set(ctx, attempt.ID, ids); err != nil {
			d.log.Warn().Err(err).Str("attempt_id", attempt.ID.String()).Msg("Question order cache heal failed")
		}
	}

	if len(ids) == 0 {
		qs := pool.Draw(banks, exam.RandomQuestionCount, d.newRand())
		pinned, err := d.orders.Pin(ctx, attempt.ID, pool.IDs(qs))
		if err != nil {
			// Serve this draw unpinned; the next load tries again.
			d.log.Warn().Err(err).Str("attempt_id", attempt.ID.String()).Msg("Failed to pin question draw")
			return qs, nil
		}
		return pool.Select(banks, pinned), nil
	}

	return pool.Select(banks, ids), nil
}
