package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-seb/internal/model"
)

// AnswerRepository handles answer data access. Answers are insert-only.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Create appends an answer row.
func (r *AnswerRepository) Create(ctx context.Context, a *model.Answer) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO answers (attempt_id, question_id, payload)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		a.AttemptID, a.QuestionID, []byte(a.Payload),
	).Scan(&a.ID, &a.CreatedAt)
}
