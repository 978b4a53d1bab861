package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/config"
	"github.com/stemsi/exstem-seb/internal/repository"
)

const (
	QuestionOrderBatchSize    = 50
	QuestionOrderBatchTimeout = 2 * time.Second
	QuestionOrderPollTimeout  = 1 * time.Second
)

// QuestionOrderWorker drains pinned question draws from Redis into
// attempts.question_order.
type QuestionOrderWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewQuestionOrderWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *QuestionOrderWorker {
	return &QuestionOrderWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "question_order_worker").Logger(),
	}
}

func (w *QuestionOrderWorker) Start(ctx context.Context) {
	w.log.Info().Msg("QuestionOrderWorker started")

	batch := make([]*repository.QuestionOrderPayload, 0, QuestionOrderBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= QuestionOrderBatchSize || time.Since(lastFlush) >= QuestionOrderBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			w.flushSafe(shutdownCtx, batch)
			cancel()
			return

		default:
			item, err := w.rdb.BLPop(ctx, QuestionOrderPollTimeout, config.WorkerKey.PersistQuestionOrderQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
					time.Sleep(time.Second)
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p repository.QuestionOrderPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Str("data", item[1]).Msg("Discarding malformed payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *QuestionOrderWorker) flushSafe(ctx context.Context, batch []*repository.QuestionOrderPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpdate(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk question order update failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				if errors.Is(err, errInvalidAttemptID) {
					w.log.Error().Str("attempt_id", p.AttemptID).Msg("Dropping question order with invalid attempt id")
					continue
				}
				w.log.Error().Err(err).Str("attempt_id", p.AttemptID).Msg("persistSingle failed, requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistQuestionOrderQueue, raw)
			}
		}
	}
}

var errInvalidAttemptID = errors.New("invalid attempt id")

// orderColumns splits a batch into the parallel arrays fed to UNNEST.
func orderColumns(batch []*repository.QuestionOrderPayload) ([]uuid.UUID, [][]byte, error) {
	ids := make([]uuid.UUID, 0, len(batch))
	orders := make([][]byte, 0, len(batch))

	for _, p := range batch {
		id, err := uuid.Parse(p.AttemptID)
		if err != nil {
			return nil, nil, errInvalidAttemptID
		}
		ob, err := json.Marshal(p.Order)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		orders = append(orders, ob)
	}
	return ids, orders, nil
}

func (w *QuestionOrderWorker) bulkUpdate(ctx context.Context, batch []*repository.QuestionOrderPayload) error {
	ids, orders, err := orderColumns(batch)
	if err != nil {
		return err
	}

	query := `
		UPDATE attempts AS a
		SET question_order = t.qo
		FROM (
			SELECT u.id, u.qo
			FROM UNNEST($1::uuid[], $2::jsonb[]) AS u (id, qo)
		) AS t
		WHERE a.id = t.id
	`

	_, err = w.pool.Exec(ctx, query, ids, orders)
	return err
}

func (w *QuestionOrderWorker) persistSingle(ctx context.Context, p *repository.QuestionOrderPayload) error {
	ids, orders, err := orderColumns([]*repository.QuestionOrderPayload{p})
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
		`UPDATE attempts SET question_order = $1 WHERE id = $2`,
		orders[0], ids[0],
	)
	return err
}
