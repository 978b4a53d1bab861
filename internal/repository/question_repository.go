package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-seb/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListBanksForExam returns the exam's linked banks in link order, each with
// its questions ordered by order_num. Banks without questions are omitted.
func (r *QuestionRepository) ListBanksForExam(ctx context.Context, examID uuid.UUID) ([]model.QuestionBank, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT qb.id, qb.name,
		        q.id, q.qbank_id, q.prompt, q.type, q.options, q.correct_answer, q.order_num
		 FROM exam_question_banks eqb
		 JOIN question_banks qb ON qb.id = eqb.qbank_id
		 JOIN questions q ON q.qbank_id = qb.id
		 WHERE eqb.exam_id = $1
		 ORDER BY eqb.position, qb.id, q.order_num, q.id`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banks []model.QuestionBank
	for rows.Next() {
		var (
			bankID   uuid.UUID
			bankName string
			q        model.Question
		)
		if err := rows.Scan(&bankID, &bankName,
			&q.ID, &q.QBankID, &q.Prompt, &q.Type, &q.Options, &q.CorrectAnswer, &q.OrderNum); err != nil {
			return nil, err
		}

		if n := len(banks); n == 0 || banks[n-1].ID != bankID {
			banks = append(banks, model.QuestionBank{ID: bankID, Name: bankName})
		}
		last := &banks[len(banks)-1]
		last.Questions = append(last.Questions, q)
	}
	return banks, rows.Err()
}
