package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-seb/internal/model"
)

const attemptColumns = `id, exam_id, user_id, status, started_at, submitted_at, question_order`

// AttemptRepository handles attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// GetByID retrieves an attempt by its UUID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, id))
}

// GetByExamAndUser retrieves the attempt for a specific exam-user combination.
func (r *AttemptRepository) GetByExamAndUser(ctx context.Context, examID uuid.UUID, userID int) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE exam_id = $1 AND user_id = $2`,
		examID, userID))
}

// Create inserts a new in-progress attempt. If a concurrent request already
// created one for the same exam and user, pgx.ErrNoRows is returned.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (exam_id, user_id, status, started_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, user_id) DO NOTHING
		 RETURNING id, started_at`,
		a.ExamID, a.UserID, model.AttemptStatusInProgress, a.StartedAt,
	).Scan(&a.ID, &a.StartedAt)
}

// Submit marks an attempt submitted and returns the updated row.
func (r *AttemptRepository) Submit(ctx context.Context, id uuid.UUID, at time.Time) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`UPDATE attempts
		 SET status = $2, submitted_at = $3
		 WHERE id = $1 AND status <> $4
		 RETURNING `+attemptColumns,
		id, model.AttemptStatusSubmitted, at, model.AttemptStatusOMRImported))
}

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	a := &model.Attempt{}
	var order []byte
	if err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Status, &a.StartedAt, &a.SubmittedAt, &order); err != nil {
		return nil, err
	}
	if len(order) > 0 {
		if err := json.Unmarshal(order, &a.QuestionOrder); err != nil {
			return nil, fmt.Errorf("decode question_order: %w", err)
		}
	}
	return a, nil
}
