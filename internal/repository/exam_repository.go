package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-seb/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by its UUID. Returns pgx.ErrNoRows if absent.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	var sebConfig, answerKey []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, seb_enabled, seb_browser_key, seb_config,
		        start_at, end_at, random_question_count, answer_key,
		        created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.SEBEnabled, &e.SEBBrowserKey, &sebConfig,
		&e.StartAt, &e.EndAt, &e.RandomQuestionCount, &answerKey,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if e.SEBConfig, err = model.ScanSEBConfig(sebConfig); err != nil {
		return nil, fmt.Errorf("decode seb_config: %w", err)
	}
	if len(answerKey) > 0 {
		if err := json.Unmarshal(answerKey, &e.AnswerKey); err != nil {
			return nil, fmt.Errorf("decode answer_key: %w", err)
		}
	}
	return e, nil
}

// SetBrowserKey stores key on the exam. Unless rotate is true, an existing
// non-empty key is left alone and pgx.ErrNoRows is returned.
func (r *ExamRepository) SetBrowserKey(ctx context.Context, id uuid.UUID, key string, rotate bool) error {
	var stored string
	return r.pool.QueryRow(ctx,
		`UPDATE exams
		 SET seb_browser_key = $2, updated_at = NOW()
		 WHERE id = $1
		   AND ($3 OR seb_browser_key IS NULL OR seb_browser_key = '')
		 RETURNING seb_browser_key`,
		id, key, rotate,
	).Scan(&stored)
}
