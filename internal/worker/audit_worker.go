package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/config"
	"github.com/stemsi/exstem-seb/internal/model"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

var auditColumns = []string{"exam_id", "user_id", "code", "user_agent", "request_hash", "recorded_at"}

// AuditWorker batches rejected attestation checks from Redis into
// attestation_audits.
type AuditWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewAuditWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "audit_worker").Logger(),
	}
}

func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	buffer := make([]*model.AttestationAudit, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// 1. Flush on size or age.
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlushTime = time.Now()
			}
		}

		// 2. Graceful shutdown.
		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		// 3. Fetch from Redis. Returns immediately if data exists.
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistAttestationAuditQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		// 4. Decode.
		if len(result) < 2 {
			continue
		}

		var audit model.AttestationAudit
		if err := json.Unmarshal([]byte(result[1]), &audit); err != nil {
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed audit")
			continue
		}

		buffer = append(buffer, &audit)
	}
}

// auditRows converts audits into CopyFrom rows in auditColumns order.
func auditRows(batch []*model.AttestationAudit) [][]interface{} {
	rows := make([][]interface{}, 0, len(batch))
	for _, a := range batch {
		rows = append(rows, []interface{}{
			a.ExamID, a.UserID, a.Code, a.UserAgent, a.RequestHash, a.RecordedAt,
		})
	}
	return rows
}

// flushSafe attempts a bulk copy, then row-by-row insert, then requeue.
func (w *AuditWorker) flushSafe(ctx context.Context, batch []*model.AttestationAudit) {
	if len(batch) == 0 {
		return
	}

	_, err := w.pool.CopyFrom(ctx, pgx.Identifier{"attestation_audits"}, auditColumns, pgx.CopyFromRows(auditRows(batch)))
	if err == nil {
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk copy failed, attempting row-by-row recovery")

	requeue := make([]*model.AttestationAudit, 0)
	for _, a := range batch {
		_, err := w.pool.Exec(ctx,
			`INSERT INTO attestation_audits (exam_id, user_id, code, user_agent, request_hash, recorded_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ExamID, a.UserID, a.Code, a.UserAgent, a.RequestHash, a.RecordedAt,
		)
		if err != nil {
			w.log.Error().Err(err).Int("user_id", a.UserID).Msg("Insert failed, requeueing")
			requeue = append(requeue, a)
		}
	}

	if len(requeue) > 0 {
		w.requeue(ctx, requeue)
	}
}

func (w *AuditWorker) requeue(ctx context.Context, items []*model.AttestationAudit) {
	pipe := w.rdb.Pipeline()
	for _, a := range items {
		data, _ := json.Marshal(a)
		pipe.RPush(ctx, config.WorkerKey.PersistAttestationAuditQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(items)).Msg("CRITICAL: Failed to requeue audits to Redis. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed audits back to Redis")
	// Back off while the database is unavailable.
	time.Sleep(2 * time.Second)
}

func (w *AuditWorker) shutdown(buffer []*model.AttestationAudit) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	w.flushSafe(shutdownCtx, buffer)
}
