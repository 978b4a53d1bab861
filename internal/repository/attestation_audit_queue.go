package repository

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-seb/internal/config"
	"github.com/stemsi/exstem-seb/internal/model"
)

// AttestationAuditQueue pushes rejected attestation checks onto the Redis
// list drained by the audit worker.
type AttestationAuditQueue struct {
	rdb *redis.Client
}

// NewAttestationAuditQueue creates a new AttestationAuditQueue.
func NewAttestationAuditQueue(rdb *redis.Client) *AttestationAuditQueue {
	return &AttestationAuditQueue{rdb: rdb}
}

// Enqueue appends one audit record to the queue.
func (q *AttestationAuditQueue) Enqueue(ctx context.Context, a model.AttestationAudit) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistAttestationAuditQueue, raw).Err()
}
