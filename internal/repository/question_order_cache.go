package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-seb/internal/config"
)

// QuestionOrderTTL bounds how long a pinned draw stays cached. The database
// column remains the source of truth after expiry.
const QuestionOrderTTL = 24 * time.Hour

// QuestionOrderPayload is the message consumed by the question order worker.
type QuestionOrderPayload struct {
	AttemptID string   `json:"attempt_id"`
	Order     []string `json:"order"`
}

// QuestionOrderCache keeps pinned question draws in Redis and queues them for
// persistence to attempts.question_order.
type QuestionOrderCache struct {
	rdb *redis.Client
}

// NewQuestionOrderCache creates a new QuestionOrderCache.
func NewQuestionOrderCache(rdb *redis.Client) *QuestionOrderCache {
	return &QuestionOrderCache{rdb: rdb}
}

// Get returns the cached order, or nil with no error on a cache miss.
func (c *QuestionOrderCache) Get(ctx context.Context, attemptID uuid.UUID) ([]uuid.UUID, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.AttemptQuestionOrderKey(attemptID.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get question order: %w", err)
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode question order: %w", err)
	}
	return ids, nil
}

// Set caches an order without queueing persistence, used to self-heal a miss.
func (c *QuestionOrderCache) Set(ctx context.Context, attemptID uuid.UUID, ids []uuid.UUID) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, config.CacheKey.AttemptQuestionOrderKey(attemptID.String()), raw, QuestionOrderTTL).Err()
}

// Pin stores ids as the attempt's order unless one is already cached, then
// queues it for persistence. The order that holds the key is returned, so
// concurrent pins converge on the first writer.
func (c *QuestionOrderCache) Pin(ctx context.Context, attemptID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	cached, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}

	key := config.CacheKey.AttemptQuestionOrderKey(attemptID.String())
	won, err := c.rdb.SetNX(ctx, key, cached, QuestionOrderTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("pin question order: %w", err)
	}
	if !won {
		existing, err := c.Get(ctx, attemptID)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return existing, nil
		}
		// Expired between SETNX and GET; keep ours.
		if err := c.Set(ctx, attemptID, ids); err != nil {
			return nil, fmt.Errorf("pin question order: %w", err)
		}
	}

	order := make([]string, len(ids))
	for i, id := range ids {
		order[i] = id.String()
	}
	queued, err := json.Marshal(QuestionOrderPayload{AttemptID: attemptID.String(), Order: order})
	if err != nil {
		return nil, err
	}
	if err := c.rdb.RPush(ctx, config.WorkerKey.PersistQuestionOrderQueue, queued).Err(); err != nil {
		return nil, fmt.Errorf("queue question order: %w", err)
	}
	return ids, nil
}
