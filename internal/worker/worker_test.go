package worker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-seb/internal/model"
	"github.com/stemsi/exstem-seb/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderColumns(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	q1, q2 := uuid.NewString(), uuid.NewString()

	ids, orders, err := orderColumns([]*repository.QuestionOrderPayload{
		{AttemptID: a.String(), Order: []string{q1, q2}},
		{AttemptID: b.String(), Order: []string{}},
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
	require.Len(t, orders, 2)

	var decoded []string
	require.NoError(t, json.Unmarshal(orders[0], &decoded))
	assert.Equal(t, []string{q1, q2}, decoded)
	assert.JSONEq(t, `[]`, string(orders[1]))
}

func TestOrderColumns_InvalidAttemptID(t *testing.T) {
	_, _, err := orderColumns([]*repository.QuestionOrderPayload{{AttemptID: "x"}})
	assert.ErrorIs(t, err, errInvalidAttemptID)
}

func TestAuditRows(t *testing.T) {
	at := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	audit := &model.AttestationAudit{
		ExamID: uuid.New(), UserID: 4, Code: "HASH_MISMATCH",
		UserAgent: "Mozilla SEB/3.1", RequestHash: "abc", RecordedAt: at,
	}

	rows := auditRows([]*model.AttestationAudit{audit})
	require.Len(t, rows, 1)
	require.Len(t, rows[0], len(auditColumns))
	assert.Equal(t, []interface{}{audit.ExamID, 4, "HASH_MISMATCH", "Mozilla SEB/3.1", "abc", at}, rows[0])
}
